// Package sheetdb opens a record table over a configured sheet.
//
// The table itself lives in package table and the backing stores in package
// sheet. Open wires them together from a config.Config.
package sheetdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maruel/sheetdb/config"
	"github.com/maruel/sheetdb/internal/logging"
	"github.com/maruel/sheetdb/sheet"
	"github.com/maruel/sheetdb/table"
)

// DB is an opened table with the resources backing it.
type DB struct {
	Table  *table.Table
	Sheet  sheet.Sheet
	Logger *slog.Logger

	closers []func()
}

// Open builds the logger, opens the configured sheet and loads the table.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	db := &DB{Logger: logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)}
	s, err := db.openSheet(ctx, &cfg.Source)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.Sheet = sheet.Throttle(s, cfg.Limiter())

	opts, err := cfg.TableOptions()
	if err != nil {
		db.Close()
		return nil, err
	}
	opts.Logger = db.Logger.With("source", cfg.Source.Kind)
	if db.Table, err = table.New(ctx, db.Sheet, opts); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	db.Logger.InfoContext(ctx, "Table opened", "source", cfg.Source.Kind, "path", cfg.Source.Path,
		"fields", len(db.Table.Fields()), "records", db.Table.Len())
	return db, nil
}

func (db *DB) openSheet(ctx context.Context, src *config.Source) (sheet.Sheet, error) {
	switch src.Kind {
	case config.KindJSONL:
		return sheet.NewJSONL(src.Path)
	case config.KindCSV:
		return sheet.NewCSV(src.Path)
	case config.KindMemory:
		return sheet.NewMemory(nil), nil
	case config.KindPostgres:
		pool, err := pgxpool.New(ctx, src.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		db.closers = append(db.closers, pool.Close)
		p, err := sheet.NewPostgres(pool, src.Table)
		if err != nil {
			return nil, err
		}
		if err := p.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// Close releases the resources held by the sheet.
func (db *DB) Close() {
	for i := len(db.closers) - 1; i >= 0; i-- {
		db.closers[i]()
	}
	db.closers = nil
}
