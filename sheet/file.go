// Shared read-modify-write logic for file backed sheets.

package sheet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// codec converts between a file's bytes and a grid of cells.
type codec interface {
	decode(r io.Reader) ([][]any, error)
	encodeRow(w io.Writer, row []any) error
}

// file is a Sheet stored in a single file. Every call goes back to disk.
type file struct {
	path  string
	codec codec
	mu    sync.Mutex
}

func newFile(path string, c codec) (*file, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return &file{path: path, codec: c}, nil
}

// Path returns the file path backing the sheet.
func (f *file) Path() string {
	return f.path
}

// ReadAll implements Sheet.
func (f *file) ReadAll(ctx context.Context) ([][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// WriteRow implements Sheet.
func (f *file) WriteRow(ctx context.Context, row int, values []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rows, err := f.load()
	if err != nil {
		return err
	}
	if err := checkWrite(row, len(rows)); err != nil {
		return err
	}
	if row == len(rows)+1 {
		return f.append(values)
	}
	rows, err = putRow(rows, row, values)
	if err != nil {
		return err
	}
	return f.replace(rows)
}

// DeleteRow implements Sheet.
func (f *file) DeleteRow(ctx context.Context, row int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rows, err := f.load()
	if err != nil {
		return false, err
	}
	rows, ok := removeRow(rows, row)
	if !ok {
		return false, nil
	}
	if err := f.replace(rows); err != nil {
		return false, err
	}
	return true, nil
}

func (f *file) load() ([][]any, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return [][]any{}, nil
		}
		return nil, fmt.Errorf("failed to open sheet file %s: %w", f.path, err)
	}
	defer func() {
		_ = fh.Close()
	}()
	rows, err := f.codec.decode(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet file %s: %w", f.path, err)
	}
	return rows, nil
}

// append adds one encoded row at the end of the file.
func (f *file) append(values []any) error {
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open sheet file for append: %w", err)
	}
	// Hand-edited files may lack the final newline.
	if st, err := fh.Stat(); err == nil && st.Size() > 0 {
		last := make([]byte, 1)
		if _, err := fh.ReadAt(last, st.Size()-1); err == nil && last[0] != '\n' {
			if _, err := fh.Write([]byte{'\n'}); err != nil {
				_ = fh.Close()
				return fmt.Errorf("failed to write newline: %w", err)
			}
		}
	}
	if err := f.codec.encodeRow(fh, values); err != nil {
		_ = fh.Close()
		return fmt.Errorf("failed to write row: %w", err)
	}
	return fh.Close()
}

// replace rewrites the whole file through a temporary file and a rename so a
// failed write never leaves a truncated sheet behind.
func (f *file) replace(rows [][]any) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary sheet file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	writer := bufio.NewWriter(tmp)
	for _, row := range rows {
		if err := f.codec.encodeRow(writer, row); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary sheet file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace sheet file: %w", err)
	}
	return nil
}
