// Mutations. Each one performs a single sheet round-trip and only touches the
// cache once the sheet confirmed the change.

package table

import (
	"context"
	"fmt"
	"slices"

	"github.com/maruel/sheetdb/sheet"
)

// AddRecord appends r to the sheet and then to the cache. Fields missing from
// r are stored as Empty; keys that are not fields are ignored. r itself is not
// modified.
//
// It returns ErrInvalidInput for a nil record and ErrNoChange when r has no
// recognized field, in which case nothing is written.
func (t *Table) AddRecord(ctx context.Context, r Record) error {
	if r == nil {
		return ErrInvalidInput
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	added := make(Record, len(t.fields))
	present := false
	for _, f := range t.fields {
		if v, ok := r[f]; ok {
			added[f] = t.norm.apply(v)
			present = true
		} else {
			added[f] = Empty
		}
	}
	if !present {
		return ErrNoChange
	}

	n := len(t.records)
	if err := sheet.Append(ctx, t.sheet, n, t.row(added)); err != nil {
		t.log.WarnContext(ctx, "Failed to append row", "row", sheet.DataRow(n), "err", err)
		return fmt.Errorf("failed to append row %d: %w", sheet.DataRow(n), err)
	}
	t.records = append(t.records, added)
	t.log.DebugContext(ctx, "Record added", "row", sheet.DataRow(n))
	return nil
}

// UpdateRecord applies changes to the first record whose keyField equals
// keyValue. The whole row is rewritten in the sheet first; the cached record
// is updated only once the write succeeded.
//
// It returns ErrInvalidInput for empty arguments, ErrFieldNotFound for an
// unknown key field, ErrNotFound when nothing matches and ErrNoChange when
// changes holds no recognized field.
func (t *Table) UpdateRecord(ctx context.Context, keyField string, keyValue any, changes Record) error {
	if keyField == "" || isEmptyValue(keyValue) || changes == nil {
		return ErrInvalidInput
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	i, err := t.find(keyField, keyValue)
	if err != nil {
		return err
	}
	updated := t.records[i].Clone()
	changed := false
	for _, f := range t.fields {
		if v, ok := changes[f]; ok {
			updated[f] = t.norm.apply(v)
			changed = true
		}
	}
	if !changed {
		return ErrNoChange
	}

	row := sheet.DataRow(i)
	if err := t.sheet.WriteRow(ctx, row, t.row(updated)); err != nil {
		t.log.WarnContext(ctx, "Failed to write row", "row", row, "err", err)
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	t.records[i] = updated
	t.log.DebugContext(ctx, "Record updated", "row", row)
	return nil
}

// DeleteRecord deletes the first record whose field equals value from the
// sheet, then from the cache. Later records move up by one.
//
// It returns ErrInvalidInput for empty arguments, ErrFieldNotFound for an
// unknown field, ErrNotFound when nothing matches and ErrStoreDeclined when
// the sheet reports that no row was deleted.
func (t *Table) DeleteRecord(ctx context.Context, field string, value any) error {
	if field == "" || isEmptyValue(value) {
		return ErrInvalidInput
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	i, err := t.find(field, value)
	if err != nil {
		return err
	}
	row := sheet.DataRow(i)
	deleted, err := t.sheet.DeleteRow(ctx, row)
	if err != nil {
		t.log.WarnContext(ctx, "Failed to delete row", "row", row, "err", err)
		return fmt.Errorf("failed to delete row %d: %w", row, err)
	}
	if !deleted {
		t.log.WarnContext(ctx, "Sheet declined row deletion", "row", row)
		return fmt.Errorf("%w: delete row %d", ErrStoreDeclined, row)
	}
	t.records = slices.Delete(t.records, i, i+1)
	t.log.DebugContext(ctx, "Record deleted", "row", row)
	return nil
}
