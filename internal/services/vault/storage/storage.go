// Package storage defines the vault persistence contracts used by the cleanup
// tool and its SQLite implementation.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrTableNotFound indicates a table name has no registered handle.
	ErrTableNotFound = errors.New("table not found")
)

// Permission types granted on a resource.
const (
	PermissionRead   = 1
	PermissionUpdate = 7
	PermissionOwner  = 15
)

// Access request and control object kinds.
const (
	AroUser     = "User"
	AroGroup    = "Group"
	AcoResource = "Resource"
)

// PermissionHistoryDeleted marks a history entry written when a permission row
// is removed.
const PermissionHistoryDeleted = "deleted"

// CleanupFunc inspects (dryRun) or repairs one class of inconsistent rows and
// returns the number of rows found or fixed.
type CleanupFunc func(ctx context.Context, dryRun bool) (int, error)

// Table is a live handle on one vault table exposing its cleanup operations by
// name, for example "cleanupSoftDeletedUsers".
type Table interface {
	Name() string
	Operation(name string) (CleanupFunc, bool)
}

// TableLocator resolves table identifiers to live handles.
type TableLocator interface {
	Table(name string) (Table, error)
}

// Permission grants an aro (user or group) access to an aco (resource).
type Permission struct {
	ID            string
	Aco           string
	AcoForeignKey string
	Aro           string
	AroForeignKey string
	Type          int
	CreatedAt     time.Time
}

// PermissionHistory is one audit entry for a permission change.
type PermissionHistory struct {
	ID            int64
	PermissionID  string
	Aco           string
	AcoForeignKey string
	Aro           string
	AroForeignKey string
	Type          int
	Action        string
	CreatedAt     time.Time
}

// PermissionHistoryFilter narrows history queries. Empty fields match any
// value.
type PermissionHistoryFilter struct {
	PermissionID  string
	AcoForeignKey string
	AroForeignKey string
	Action        string
}

// PermissionHistoryStore reads the permission audit trail.
type PermissionHistoryStore interface {
	ListPermissionsHistory(ctx context.Context, filter PermissionHistoryFilter) ([]PermissionHistory, error)
	CountPermissionsHistory(ctx context.Context, filter PermissionHistoryFilter) (int, error)
}
