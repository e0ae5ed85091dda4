// Package sheet defines the backing-store contract for a table and its
// implementations.
//
// A sheet is a grid of scalar cells addressed by 1-based row numbers. Row 1
// holds the header; data rows follow. Implementations never cache rows: every
// call reads or writes the underlying medium so the sheet stays the source of
// positional truth.
//
// # Implementations
//
//   - [Memory]: in-process grid.
//   - [JSONL]: file with one JSON array per line.
//   - [CSV]: comma separated file.
//   - [Postgres]: rows stored in a PostgreSQL table through a pgx pool.
//   - [Throttle]: wraps another sheet with a rate limiter.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrRowOutOfRange is returned when a row number is neither an existing row
// nor the row immediately after the last one.
var ErrRowOutOfRange = errors.New("row out of range")

// Sheet is the minimal tabular store a table needs.
type Sheet interface {
	// ReadAll returns every row, header first. Rows may be shorter than the
	// header; the caller pads them.
	ReadAll(ctx context.Context) ([][]any, error)
	// WriteRow overwrites the 1-based row with values. Writing at count+1
	// appends a row.
	WriteRow(ctx context.Context, row int, values []any) error
	// DeleteRow removes the 1-based row, shifting later rows up. It returns
	// false when there was no row to delete.
	DeleteRow(ctx context.Context, row int) (bool, error)
}

// HeaderRows is the number of rows above the first data row.
const HeaderRows = 1

// DataRow returns the 1-based sheet row holding the 0-based data row i.
//
// It is the only place mapping data positions to sheet rows.
func DataRow(i int) int {
	return i + HeaderRows + 1
}

// Append writes values as a new row after dataRows data rows.
func Append(ctx context.Context, s Sheet, dataRows int, values []any) error {
	return s.WriteRow(ctx, DataRow(dataRows), values)
}

// checkWrite validates a 1-based write position against the row count.
func checkWrite(row, count int) error {
	if row < 1 || row > count+1 {
		return fmt.Errorf("%w: row %d with %d rows", ErrRowOutOfRange, row, count)
	}
	return nil
}

// putRow stores values at the 1-based row of grid, appending when row is one
// past the end.
func putRow(grid [][]any, row int, values []any) ([][]any, error) {
	if err := checkWrite(row, len(grid)); err != nil {
		return grid, err
	}
	values = slices.Clone(values)
	if row == len(grid)+1 {
		return append(grid, values), nil
	}
	grid[row-1] = values
	return grid, nil
}

// removeRow deletes the 1-based row of grid. It reports false when the row
// does not exist.
func removeRow(grid [][]any, row int) ([][]any, bool) {
	if row < 1 || row > len(grid) {
		return grid, false
	}
	return slices.Delete(grid, row-1, row), true
}

func cloneGrid(grid [][]any) [][]any {
	out := make([][]any, len(grid))
	for i, row := range grid {
		out[i] = slices.Clone(row)
	}
	return out
}
