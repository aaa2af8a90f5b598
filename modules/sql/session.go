package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/CadentTech/bigrays/internal/table"
)

// Session is the handle of the sql-session resource: one dedicated
// connection, so session state such as temporary tables survives across
// consecutive tasks.
type Session struct {
	db     *sql.DB
	conn   *sql.Conn
	flavor flavor
	name   string
}

// Flavor returns the database family the session talks to.
func (s *Session) Flavor() string { return s.name }

// Query runs q and returns every row.
func (s *Session) Query(ctx context.Context, q string) (*table.Table, error) {
	rows, err := s.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := table.New(cols...)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, vals)
	}
	return t, rows.Err()
}

// Exec runs stmt inside a transaction and commits it.
func (s *Session) Exec(ctx context.Context, stmt string) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		return 0, errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Not every driver reports affected rows for DDL.
		return 0, nil
	}
	return n, nil
}

// Insert appends every row of t to tablename inside one transaction and
// returns the number of rows written.
func (s *Session) Insert(ctx context.Context, tablename string, t *table.Table) (int64, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("cannot insert a table without columns into %s", tablename)
	}
	marks := make([]string, len(t.Columns))
	for i := range marks {
		marks[i] = s.flavor.placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tablename, strings.Join(t.Columns, ", "), strings.Join(marks, ", "))

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return 0, errors.Join(err, tx.Rollback())
	}
	defer prepared.Close()

	var n int64
	for _, row := range t.Rows {
		if _, err := prepared.ExecContext(ctx, row...); err != nil {
			return 0, errors.Join(fmt.Errorf("row %d: %w", n, err), tx.Rollback())
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the connection and the pool behind it.
func (s *Session) Close() error {
	return errors.Join(s.conn.Close(), s.db.Close())
}
