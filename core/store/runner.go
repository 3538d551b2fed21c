// Package store persists stations and derived bins through a Runner.
//
// Statements use ? placeholders and portable SQL accepted by both SQLite and
// PostgreSQL. Drivers that need another placeholder style rebind them.
package store

import (
	"context"
	"errors"
)

// Runner executes one parameterized statement and returns its rows. Statements
// without a result set return no rows.
type Runner interface {
	Run(ctx context.Context, stmt string, args []any) ([][]any, error)
}

// ErrColumnType is returned when a stored value cannot be decoded.
var ErrColumnType = errors.New("store: unexpected column type")
