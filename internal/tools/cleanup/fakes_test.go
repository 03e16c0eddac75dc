package cleanup

import (
	"context"
	"fmt"

	"github.com/louisbranch/passkeep/internal/services/vault/storage"
)

// call records one cleanup invocation.
type call struct {
	table     string
	operation string
	dryRun    bool
}

// fakeTable implements storage.Table with canned per-operation results.
type fakeTable struct {
	name   string
	counts map[string]int
	errs   map[string]error
	calls  *[]call
}

func (f *fakeTable) Name() string { return f.name }

func (f *fakeTable) Operation(name string) (storage.CleanupFunc, bool) {
	count, ok := f.counts[name]
	if !ok {
		if _, failing := f.errs[name]; !failing {
			return nil, false
		}
	}
	return func(_ context.Context, dryRun bool) (int, error) {
		if f.calls != nil {
			*f.calls = append(*f.calls, call{table: f.name, operation: name, dryRun: dryRun})
		}
		if err := f.errs[name]; err != nil {
			return 0, err
		}
		return count, nil
	}, true
}

// fakeLocator implements closableLocator over fake tables.
type fakeLocator struct {
	tables   map[string]*fakeTable
	calls    []call
	closed   bool
	closeErr error
}

func newFakeLocator(tables ...*fakeTable) *fakeLocator {
	l := &fakeLocator{tables: map[string]*fakeTable{}}
	for _, table := range tables {
		table.calls = &l.calls
		l.tables[table.name] = table
	}
	return l
}

func (f *fakeLocator) Table(name string) (storage.Table, error) {
	table, ok := f.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, storage.ErrTableNotFound)
	}
	return table, nil
}

func (f *fakeLocator) Close() error {
	f.closed = true
	return f.closeErr
}
