// Package logging builds the slog loggers used by sheetdb.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// New returns a logger writing to w at level.
//
// format "json" selects slog's JSON handler; anything else selects a tint text
// handler, colored only when w is a terminal. Empty attributes are dropped from
// text output.
func New(w io.Writer, level, format string) *slog.Logger {
	ll := ParseLevel(level)
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ll}))
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		if !noColor {
			w = colorable.NewColorable(f)
		}
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:       ll,
		TimeFormat:  "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:     noColor,
		ReplaceAttr: dropEmpty,
	}))
}

// ParseLevel converts a level name to a slog.Level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func dropEmpty(_ []string, a slog.Attr) slog.Attr {
	skip := false
	switch t := a.Value.Any().(type) {
	case string:
		skip = t == ""
	case time.Duration:
		skip = t == 0
	case nil:
		skip = true
	}
	if skip {
		return slog.Attr{}
	}
	return a
}
