package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsdeck/opsdeck/internal/table"
	_ "modernc.org/sqlite"
)

// SQLiteSource reads every row of one database table, taking the column
// names as raw field names. It deliberately does no schema validation:
// best-effort field lookup happens downstream in the resolver.
type SQLiteSource struct {
	kind table.Kind
	db   *sql.DB
	name string
}

// NewSQLiteSource wraps an open database handle. The caller owns the
// handle's lifecycle; several sources may share one.
func NewSQLiteSource(kind table.Kind, db *sql.DB, tableName string) *SQLiteSource {
	return &SQLiteSource{kind: kind, db: db, name: tableName}
}

// OpenSQLite opens a database file for use with NewSQLiteSource.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func (s *SQLiteSource) Kind() table.Kind { return s.kind }

func (s *SQLiteSource) Fetch(ctx context.Context) (table.Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.name))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrUnavailable, s.name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: columns of %s: %v", ErrUnavailable, s.name, err)
	}

	out := make(table.Table, 0)
	idx := 0
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrUnavailable, s.name, err)
		}
		fields := make(map[string]any, len(cols))
		for i, col := range cols {
			if v := cellValue(raw[i]); v != nil {
				fields[col] = v
			}
		}
		out = append(out, table.Record{RowIndex: idx, Fields: fields})
		idx++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, s.name, err)
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
