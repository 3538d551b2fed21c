package store

import (
	"context"
	"strings"
)

type call struct {
	stmt string
	args []any
}

// fakeRunner records statements and answers queries whose text contains a
// registered fragment.
type fakeRunner struct {
	calls   []call
	answers map[string][][]any
	err     error
}

func (f *fakeRunner) Run(_ context.Context, stmt string, args []any) ([][]any, error) {
	f.calls = append(f.calls, call{stmt: stmt, args: args})
	if f.err != nil {
		return nil, f.err
	}
	for frag, rows := range f.answers {
		if strings.Contains(stmt, frag) {
			return rows, nil
		}
	}
	return nil, nil
}
