package sheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxConn is the subset of *pgxpool.Pool used by Postgres.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres is a Sheet stored in a PostgreSQL table with one row per sheet
// row: a 1-based position and the cells as a JSON array.
type Postgres struct {
	conn  PgxConn
	name  string
	table string // sanitized identifier
}

// NewPostgres returns a sheet stored in the named table. Call EnsureSchema
// before first use on a fresh database.
func NewPostgres(conn PgxConn, table string) (*Postgres, error) {
	if table == "" {
		return nil, errors.New("table name is required")
	}
	return &Postgres{conn: conn, name: table, table: pgx.Identifier{table}.Sanitize()}, nil
}

// EnsureSchema creates the backing table and its position index.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	pos   integer NOT NULL,
	cells jsonb   NOT NULL
)`, p.table)
	if _, err := p.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create sheet table: %w", err)
	}
	// pos is shifted in bulk on delete, so the index is not unique.
	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (pos)`,
		pgx.Identifier{p.name + "_pos_idx"}.Sanitize(), p.table)
	if _, err := p.conn.Exec(ctx, idx); err != nil {
		return fmt.Errorf("failed to create sheet index: %w", err)
	}
	return nil
}

// ReadAll implements Sheet.
func (p *Postgres) ReadAll(ctx context.Context) ([][]any, error) {
	rows, err := p.conn.Query(ctx, fmt.Sprintf(`SELECT cells FROM %s ORDER BY pos`, p.table))
	if err != nil {
		return nil, fmt.Errorf("failed to query sheet: %w", err)
	}
	grid, err := pgx.CollectRows(rows, pgx.RowTo[[]any])
	if err != nil {
		return nil, fmt.Errorf("failed to scan sheet: %w", err)
	}
	return grid, nil
}

// WriteRow implements Sheet.
func (p *Postgres) WriteRow(ctx context.Context, row int, values []any) error {
	if values == nil {
		values = []any{}
	}
	return pgx.BeginFunc(ctx, p.conn, func(tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, p.table)).Scan(&count); err != nil {
			return fmt.Errorf("failed to count sheet rows: %w", err)
		}
		if err := checkWrite(row, count); err != nil {
			return err
		}
		if row == count+1 {
			_, err := tx.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (pos, cells) VALUES ($1, $2)`, p.table), row, values)
			if err != nil {
				return fmt.Errorf("failed to insert row %d: %w", row, err)
			}
			return nil
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET cells = $2 WHERE pos = $1`, p.table), row, values); err != nil {
			return fmt.Errorf("failed to update row %d: %w", row, err)
		}
		return nil
	})
}

// DeleteRow implements Sheet.
func (p *Postgres) DeleteRow(ctx context.Context, row int) (bool, error) {
	deleted := false
	err := pgx.BeginFunc(ctx, p.conn, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE pos = $1`, p.table), row)
		if err != nil {
			return fmt.Errorf("failed to delete row %d: %w", row, err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET pos = pos - 1 WHERE pos > $1`, p.table), row); err != nil {
			return fmt.Errorf("failed to shift rows after %d: %w", row, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
