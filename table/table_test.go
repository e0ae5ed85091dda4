package table

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/maruel/sheetdb/sheet"
)

// fakeSheet is a Memory sheet that records calls and can be told to fail.
type fakeSheet struct {
	*sheet.Memory
	readErr       error
	writeErr      error
	deleteErr     error
	declineDelete bool

	writes  []int
	deletes []int
}

func newFakeSheet(rows [][]any) *fakeSheet {
	return &fakeSheet{Memory: sheet.NewMemory(rows)}
}

func (f *fakeSheet) ReadAll(ctx context.Context) ([][]any, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Memory.ReadAll(ctx)
}

func (f *fakeSheet) WriteRow(ctx context.Context, row int, values []any) error {
	f.writes = append(f.writes, row)
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Memory.WriteRow(ctx, row, values)
}

func (f *fakeSheet) DeleteRow(ctx context.Context, row int) (bool, error) {
	f.deletes = append(f.deletes, row)
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if f.declineDelete {
		return false, nil
	}
	return f.Memory.DeleteRow(ctx, row)
}

func peopleRows() [][]any {
	return [][]any{
		{"id", "name"},
		{"1", "Ann"},
		{"2", "Bob"},
	}
}

// setupTable loads a table over a fake sheet holding rows.
func setupTable(t *testing.T, rows [][]any, opts *Options) (*Table, *fakeSheet) {
	t.Helper()
	fs := newFakeSheet(rows)
	tbl, err := New(t.Context(), fs, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tbl, fs
}

// checkAligned verifies that every cached record sits in the sheet row the
// position translator assigns to it.
func checkAligned(t *testing.T, tbl *Table, fs *fakeSheet) {
	t.Helper()
	rows := fs.Rows()
	if got, want := len(rows), sheet.DataRow(len(tbl.records))-1; got != want {
		t.Fatalf("sheet has %d rows, want %d for %d records", got, want, len(tbl.records))
	}
	for i, r := range tbl.records {
		if got, want := rows[sheet.DataRow(i)-1], tbl.row(r); !reflect.DeepEqual(got, want) {
			t.Errorf("sheet row %d = %#v, cache has %#v", sheet.DataRow(i), got, want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("nil sheet", func(t *testing.T) {
		if _, err := New(t.Context(), nil, nil); !errors.Is(err, ErrNoSheet) {
			t.Errorf("New(nil) error = %v, want ErrNoSheet", err)
		}
	})
	t.Run("read error", func(t *testing.T) {
		fs := newFakeSheet(nil)
		fs.readErr = errors.New("boom")
		if _, err := New(t.Context(), fs, nil); !errors.Is(err, fs.readErr) {
			t.Errorf("New error = %v, want wrapped boom", err)
		}
	})
	t.Run("empty sheet", func(t *testing.T) {
		tbl, fs := setupTable(t, nil, nil)
		if tbl.Len() != 0 || len(tbl.Fields()) != 0 {
			t.Errorf("Len() = %d, Fields() = %v", tbl.Len(), tbl.Fields())
		}
		if got := tbl.GetRecords(nil); got == nil || len(got) != 0 {
			t.Errorf("GetRecords(nil) = %#v, want empty slice", got)
		}
		if err := tbl.AddRecord(t.Context(), Record{"id": "1"}); !errors.Is(err, ErrNoChange) {
			t.Errorf("AddRecord on empty sheet = %v, want ErrNoChange", err)
		}
		if len(fs.writes) != 0 {
			t.Errorf("sheet writes = %v, want none", fs.writes)
		}
	})
	t.Run("header only", func(t *testing.T) {
		tbl, _ := setupTable(t, [][]any{{"id", "name"}}, nil)
		if tbl.Len() != 0 {
			t.Errorf("Len() = %d, want 0", tbl.Len())
		}
		if got := tbl.Fields(); !slices.Equal(got, []string{"id", "name"}) {
			t.Errorf("Fields() = %v", got)
		}
	})
	t.Run("rows", func(t *testing.T) {
		tbl, _ := setupTable(t, [][]any{
			{"id", "name", "age"},
			{"1", "Ann", 30.0},
			{"2"},
			{"3", nil, true, "extra"},
		}, nil)
		want := []Record{
			{"id": "1", "name": "Ann", "age": 30.0},
			{"id": "2", "name": "", "age": ""},
			{"id": "3", "name": "", "age": true},
		}
		if got := tbl.GetRecords(nil); !reflect.DeepEqual(got, want) {
			t.Errorf("GetRecords(nil) = %#v, want %#v", got, want)
		}
	})
	t.Run("non-string header", func(t *testing.T) {
		tbl, _ := setupTable(t, [][]any{{"id", 2024.0, true, nil}}, nil)
		if got := tbl.Fields(); !slices.Equal(got, []string{"id", "2024", "TRUE", ""}) {
			t.Errorf("Fields() = %q", got)
		}
	})
	t.Run("duplicate first wins", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		tbl, fs := setupTable(t, [][]any{
			{"id", "name", "name"},
			{"1", "Ann", "Other"},
		}, &Options{Logger: logger})
		if got := tbl.Fields(); !slices.Equal(got, []string{"id", "name"}) {
			t.Errorf("Fields() = %v", got)
		}
		r, err := tbl.GetRecord("id", "1")
		if err != nil || r["name"] != "Ann" {
			t.Errorf("GetRecord = %v, %v, want name Ann", r, err)
		}
		if !strings.Contains(buf.String(), "Duplicate field name") {
			t.Errorf("no duplicate warning logged: %q", buf.String())
		}
		if err := tbl.UpdateRecord(t.Context(), "id", "1", Record{"name": "Anna"}); err != nil {
			t.Fatal(err)
		}
		// Both columns named "name" receive the value.
		if got := fs.Rows()[1]; !reflect.DeepEqual(got, []any{"1", "Anna", "Anna"}) {
			t.Errorf("sheet row = %#v", got)
		}
	})
	t.Run("duplicate reject", func(t *testing.T) {
		fs := newFakeSheet([][]any{{"id", "name", "id"}})
		_, err := New(t.Context(), fs, &Options{Duplicates: DuplicateReject})
		if !errors.Is(err, ErrDuplicateField) {
			t.Errorf("New error = %v, want ErrDuplicateField", err)
		}
	})
	t.Run("does not write", func(t *testing.T) {
		_, fs := setupTable(t, peopleRows(), nil)
		if len(fs.writes)+len(fs.deletes) != 0 {
			t.Errorf("New touched the sheet: writes %v deletes %v", fs.writes, fs.deletes)
		}
	})
}

func TestTable(t *testing.T) {
	t.Run("Fields returns copy", func(t *testing.T) {
		tbl, _ := setupTable(t, peopleRows(), nil)
		f := tbl.Fields()
		f[0] = "changed"
		if tbl.Fields()[0] != "id" {
			t.Error("Fields() returned the internal slice")
		}
	})
	t.Run("All", func(t *testing.T) {
		tbl, _ := setupTable(t, peopleRows(), nil)
		var names []any
		for r := range tbl.All() {
			names = append(names, r["name"])
			r["name"] = "changed"
		}
		if !reflect.DeepEqual(names, []any{"Ann", "Bob"}) {
			t.Errorf("All() names = %v", names)
		}
		for r := range tbl.All() {
			if r["name"] == "changed" {
				t.Error("All() yielded a reference instead of a clone")
			}
			break
		}
	})
	t.Run("scenario", func(t *testing.T) {
		ctx := t.Context()
		tbl, fs := setupTable(t, peopleRows(), nil)

		r, err := tbl.GetRecord("id", "2")
		if err != nil || !reflect.DeepEqual(r, Record{"id": "2", "name": "Bob"}) {
			t.Fatalf("GetRecord(id, 2) = %v, %v", r, err)
		}
		if err := tbl.AddRecord(ctx, Record{"id": "3", "name": "Cal"}); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
		if got := len(tbl.GetRecords(nil)); got != 3 {
			t.Fatalf("GetRecords() has %d records, want 3", got)
		}
		if err := tbl.UpdateRecord(ctx, "id", "1", Record{"name": "Anna"}); err != nil {
			t.Fatalf("UpdateRecord failed: %v", err)
		}
		if r, _ := tbl.GetRecord("id", "1"); r["name"] != "Anna" {
			t.Fatalf("name = %v, want Anna", r["name"])
		}
		if err := tbl.DeleteRecord(ctx, "id", "2"); err != nil {
			t.Fatalf("DeleteRecord failed: %v", err)
		}
		if _, err := tbl.GetRecord("id", "2"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetRecord after delete = %v, want ErrNotFound", err)
		}
		want := [][]any{{"id", "name"}, {"1", "Anna"}, {"3", "Cal"}}
		if got := fs.Rows(); !reflect.DeepEqual(got, want) {
			t.Errorf("sheet = %#v, want %#v", got, want)
		}
		checkAligned(t, tbl, fs)
	})
}
