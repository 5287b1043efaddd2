package repo

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rainbowrise/internal/infra"
)

type recordedCall struct {
	query string
	args  []any
}

// fakeSQL answers marker-tagged statements from canned rows and records
// every call. Unknown QueryRow statements yield pgx.ErrNoRows.
type fakeSQL struct {
	mu        sync.Mutex
	row       map[string]scriptedRow
	rows      map[string][][]any
	calls     []recordedCall
	txs       int
	commitErr error
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{row: map[string]scriptedRow{}, rows: map[string][][]any{}}
}

func (f *fakeSQL) record(query string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{query: query, args: args})
}

func (f *fakeSQL) callsFor(query string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.query == query {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.record(query, args)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.record(query, args)
	if r, ok := f.row[query]; ok {
		return r
	}
	return scriptedRow{err: pgx.ErrNoRows}
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.record(query, args)
	return &scriptedRows{values: f.rows[query]}, nil
}

func (f *fakeSQL) WithinTx(_ context.Context, _ pgx.TxOptions, fn func(infra.SQLExecutor) error) error {
	f.mu.Lock()
	f.txs++
	f.mu.Unlock()
	if err := fn(f); err != nil {
		return err
	}
	return f.commitErr
}

var _ infra.TxExecutor = (*fakeSQL)(nil)

type scriptedRow struct {
	values []any
	err    error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type scriptedRows struct {
	values [][]any
	idx    int
}

func (r *scriptedRows) Close()                                       {}
func (r *scriptedRows) Err() error                                   { return nil }
func (r *scriptedRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *scriptedRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *scriptedRows) RawValues() [][]byte                          { return nil }
func (r *scriptedRows) Conn() *pgx.Conn                              { return nil }

func (r *scriptedRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (r *scriptedRows) Next() bool {
	if r.idx >= len(r.values) {
		return false
	}
	r.idx++
	return true
}

func (r *scriptedRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.values) {
		return pgx.ErrNoRows
	}
	return assign(dest, r.values[r.idx-1])
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		dv := reflect.ValueOf(dest[i])
		if dv.Kind() != reflect.Pointer {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		target := dv.Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		val := reflect.ValueOf(v)
		switch {
		case val.Type().AssignableTo(target.Type()):
			target.Set(val)
		case target.Kind() == reflect.Pointer && val.Type().AssignableTo(target.Type().Elem()):
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(val)
			target.Set(p)
		default:
			return fmt.Errorf("scan: cannot assign %s to %s at %d", val.Type(), target.Type(), i)
		}
	}
	return nil
}
