package table

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/maruel/sheetdb/sheet"
)

// Options configures New. The zero value keeps values opaque, lets the first
// of duplicate header names win and logs to slog.Default().
type Options struct {
	Duplicates DuplicatePolicy
	Normalize  Normalization
	Logger     *slog.Logger
}

// Table is the in-memory view of a sheet. It is safe for concurrent use;
// mutations hold the write lock for the whole sheet round-trip.
type Table struct {
	sheet sheet.Sheet
	norm  Normalization
	log   *slog.Logger

	mu      sync.RWMutex
	header  []string       // one name per sheet column, duplicates included
	fields  []string       // unique names in column order
	column  map[string]int // first column of each field
	records []Record
}

// New loads every cell of s and returns the table built from it.
func New(ctx context.Context, s sheet.Sheet, opts *Options) (*Table, error) {
	if s == nil {
		return nil, ErrNoSheet
	}
	if opts == nil {
		opts = &Options{}
	}
	t := &Table{
		sheet:  s,
		norm:   opts.Normalize,
		log:    opts.Logger,
		column: map[string]int{},
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	if err := t.load(ctx, opts.Duplicates); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) load(ctx context.Context, dup DuplicatePolicy) error {
	grid, err := t.sheet.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(grid) == 0 {
		t.records = []Record{}
		t.log.DebugContext(ctx, "Table loaded empty sheet")
		return nil
	}

	t.header = make([]string, len(grid[0]))
	for i, cell := range grid[0] {
		name := headerName(cell)
		t.header[i] = name
		if _, ok := t.column[name]; ok {
			if dup == DuplicateReject {
				return fmt.Errorf("%w: %q in column %d", ErrDuplicateField, name, i+1)
			}
			t.log.WarnContext(ctx, "Duplicate field name, first column wins", "field", name, "column", i+1)
			continue
		}
		t.column[name] = i
		t.fields = append(t.fields, name)
	}

	t.records = make([]Record, 0, len(grid)-1)
	for _, row := range grid[1:] {
		r := make(Record, len(t.fields))
		for _, f := range t.fields {
			var v any
			if c := t.column[f]; c < len(row) {
				v = row[c]
			}
			r[f] = t.norm.apply(v)
		}
		t.records = append(t.records, r)
	}
	t.log.DebugContext(ctx, "Table loaded", "fields", len(t.fields), "records", len(t.records))
	return nil
}

// headerName returns the field name for a header cell.
func headerName(cell any) string {
	if s, ok := cell.(string); ok {
		return s
	}
	if cell == nil {
		return ""
	}
	return toText(cell)
}

// Fields returns the field names in column order.
func (t *Table) Fields() []string {
	return slices.Clone(t.fields)
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// All returns an iterator over clones of all records in sheet order.
func (t *Table) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		for _, r := range t.records {
			if !yield(r.Clone()) {
				return
			}
		}
	}
}

// hasField reports whether name is in the field list.
func (t *Table) hasField(name string) bool {
	_, ok := t.column[name]
	return ok
}

// find returns the cache index of the first record whose field equals value.
// The caller holds the lock.
func (t *Table) find(field string, value any) (int, error) {
	if !t.hasField(field) {
		return -1, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	value = t.norm.apply(value)
	i := slices.IndexFunc(t.records, func(r Record) bool {
		return valuesEqual(r[field], value)
	})
	if i < 0 {
		return -1, ErrNotFound
	}
	return i, nil
}

// row lays r out as a full-width sheet row in header order.
func (t *Table) row(r Record) []any {
	out := make([]any, len(t.header))
	for i, name := range t.header {
		out[i] = r[name]
	}
	return out
}
