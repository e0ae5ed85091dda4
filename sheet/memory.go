package sheet

import (
	"context"
	"sync"
)

// Memory is a Sheet kept in process memory.
type Memory struct {
	mu   sync.Mutex
	rows [][]any
}

// NewMemory returns a Memory sheet holding a copy of rows.
func NewMemory(rows [][]any) *Memory {
	return &Memory{rows: cloneGrid(rows)}
}

// Rows returns a copy of the current grid.
func (m *Memory) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneGrid(m.rows)
}

// ReadAll implements Sheet.
func (m *Memory) ReadAll(ctx context.Context) ([][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.Rows(), nil
}

// WriteRow implements Sheet.
func (m *Memory) WriteRow(ctx context.Context, row int, values []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, err := putRow(m.rows, row, values)
	if err != nil {
		return err
	}
	m.rows = rows
	return nil
}

// DeleteRow implements Sheet.
func (m *Memory) DeleteRow(ctx context.Context, row int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := removeRow(m.rows, row)
	m.rows = rows
	return ok, nil
}
