// Package permissionshistory provides test assertions over the permission
// audit trail.
package permissionshistory

import (
	"context"
	"testing"

	"github.com/louisbranch/passkeep/internal/services/vault/storage"
)

// AssertExists fails the test unless an entry matches filter, and returns the
// first match.
func AssertExists(t testing.TB, r storage.PermissionHistoryStore, filter storage.PermissionHistoryFilter) storage.PermissionHistory {
	t.Helper()
	entries, err := r.ListPermissionsHistory(context.Background(), filter)
	if err != nil {
		t.Fatalf("list permissions history: %v", err)
		return storage.PermissionHistory{}
	}
	if len(entries) == 0 {
		t.Fatalf("no permissions history entry matches %+v", filter)
		return storage.PermissionHistory{}
	}
	return entries[0]
}

// AssertCount fails the test unless exactly want entries match filter.
func AssertCount(t testing.TB, r storage.PermissionHistoryStore, want int, filter storage.PermissionHistoryFilter) {
	t.Helper()
	got, err := r.CountPermissionsHistory(context.Background(), filter)
	if err != nil {
		t.Fatalf("count permissions history: %v", err)
		return
	}
	if got != want {
		t.Fatalf("permissions history count = %d, want %d (filter %+v)", got, want, filter)
	}
}

// AssertOne fails the test unless exactly one entry matches filter.
func AssertOne(t testing.TB, r storage.PermissionHistoryStore, filter storage.PermissionHistoryFilter) {
	t.Helper()
	AssertCount(t, r, 1, filter)
}

// AssertEmpty fails the test if any history entry exists.
func AssertEmpty(t testing.TB, r storage.PermissionHistoryStore) {
	t.Helper()
	AssertCount(t, r, 0, storage.PermissionHistoryFilter{})
}
