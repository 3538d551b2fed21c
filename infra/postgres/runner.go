// Package postgres implements store.Runner on PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Runner executes statements against a PostgreSQL database.
type Runner struct {
	db *sql.DB
}

// Open connects using dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Runner, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Runner{db: db}, nil
}

// Run rebinds ? placeholders to $n and executes stmt.
func (r *Runner) Run(ctx context.Context, stmt string, args []any) ([][]any, error) {
	rows, err := r.db.QueryContext(ctx, Rebind(stmt), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// Close closes the pool.
func (r *Runner) Close() error { return r.db.Close() }

// Rebind replaces ? placeholders outside string literals with $1, $2, ...
func Rebind(stmt string) string {
	var b strings.Builder
	b.Grow(len(stmt) + 8)
	n := 0
	quoted := false
	for _, c := range stmt {
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteRune(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
