package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/passkeep/internal/services/vault/storage"
)

// orphanRule selects the rows of one table that a cleanup operation targets.
type orphanRule struct {
	where string
}

// tableSpec describes one vault table and the cleanup operations it supports.
type tableSpec struct {
	name     string
	sqlTable string
	// auditPermissions records a permissions_history row for every row deleted.
	auditPermissions bool
	operations       map[string]orphanRule
}

func softDeletedIn(column, parent string) orphanRule {
	return orphanRule{where: column + " IN (SELECT id FROM " + parent + " WHERE deleted = 1)"}
}

func hardDeletedIn(column, parent string) orphanRule {
	return orphanRule{where: column + " NOT IN (SELECT id FROM " + parent + ")"}
}

func withAro(aro string, rule orphanRule) orphanRule {
	return orphanRule{where: "aro = '" + aro + "' AND " + rule.where}
}

func withAco(aco string, rule orphanRule) orphanRule {
	return orphanRule{where: "aco = '" + aco + "' AND " + rule.where}
}

// secretsWithoutPermission selects secrets whose owner can no longer reach the
// resource, either directly or through a group membership.
var secretsWithoutPermission = orphanRule{where: `NOT EXISTS (
	SELECT 1 FROM permissions p
	WHERE p.aco_foreign_key = secrets.resource_id
	AND (
		(p.aro = 'User' AND p.aro_foreign_key = secrets.user_id)
		OR (p.aro = 'Group' AND p.aro_foreign_key IN (
			SELECT gu.group_id FROM groups_users gu WHERE gu.user_id = secrets.user_id
		))
	)
)`}

var tableSpecs = map[string]tableSpec{
	"GroupsUsers": {
		name:     "GroupsUsers",
		sqlTable: "groups_users",
		operations: map[string]orphanRule{
			"cleanupSoftDeletedUsers":  softDeletedIn("user_id", "users"),
			"cleanupHardDeletedUsers":  hardDeletedIn("user_id", "users"),
			"cleanupSoftDeletedGroups": softDeletedIn("group_id", `"groups"`),
			"cleanupHardDeletedGroups": hardDeletedIn("group_id", `"groups"`),
		},
	},
	"Favorites": {
		name:     "Favorites",
		sqlTable: "favorites",
		operations: map[string]orphanRule{
			"cleanupSoftDeletedUsers":     softDeletedIn("user_id", "users"),
			"cleanupHardDeletedUsers":     hardDeletedIn("user_id", "users"),
			"cleanupSoftDeletedResources": softDeletedIn("foreign_key", "resources"),
			"cleanupHardDeletedResources": hardDeletedIn("foreign_key", "resources"),
		},
	},
	"Comments": {
		name:     "Comments",
		sqlTable: "comments",
		operations: map[string]orphanRule{
			"cleanupSoftDeletedUsers":     softDeletedIn("user_id", "users"),
			"cleanupHardDeletedUsers":     hardDeletedIn("user_id", "users"),
			"cleanupSoftDeletedResources": softDeletedIn("foreign_key", "resources"),
			"cleanupHardDeletedResources": hardDeletedIn("foreign_key", "resources"),
		},
	},
	"Permissions": {
		name:             "Permissions",
		sqlTable:         "permissions",
		auditPermissions: true,
		operations: map[string]orphanRule{
			"cleanupSoftDeletedUsers":     withAro(storage.AroUser, softDeletedIn("aro_foreign_key", "users")),
			"cleanupHardDeletedUsers":     withAro(storage.AroUser, hardDeletedIn("aro_foreign_key", "users")),
			"cleanupSoftDeletedGroups":    withAro(storage.AroGroup, softDeletedIn("aro_foreign_key", `"groups"`)),
			"cleanupHardDeletedGroups":    withAro(storage.AroGroup, hardDeletedIn("aro_foreign_key", `"groups"`)),
			"cleanupSoftDeletedResources": withAco(storage.AcoResource, softDeletedIn("aco_foreign_key", "resources")),
			"cleanupHardDeletedResources": withAco(storage.AcoResource, hardDeletedIn("aco_foreign_key", "resources")),
		},
	},
	"Secrets": {
		name:     "Secrets",
		sqlTable: "secrets",
		operations: map[string]orphanRule{
			"cleanupSoftDeletedUsers":       softDeletedIn("user_id", "users"),
			"cleanupHardDeletedUsers":       hardDeletedIn("user_id", "users"),
			"cleanupSoftDeletedResources":   softDeletedIn("resource_id", "resources"),
			"cleanupHardDeletedResources":   hardDeletedIn("resource_id", "resources"),
			"cleanupHardDeletedPermissions": secretsWithoutPermission,
		},
	},
}

// Table returns the cleanup handle for a table identifier.
func (s *Store) Table(name string) (storage.Table, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("table name is required: %w", storage.ErrTableNotFound)
	}
	spec, ok := tableSpecs[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, storage.ErrTableNotFound)
	}
	return &tableHandle{store: s, spec: spec}, nil
}

type tableHandle struct {
	store *Store
	spec  tableSpec
}

func (h *tableHandle) Name() string {
	return h.spec.name
}

func (h *tableHandle) Operation(name string) (storage.CleanupFunc, bool) {
	rule, ok := h.spec.operations[name]
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, dryRun bool) (int, error) {
		if dryRun {
			return h.store.countOrphans(ctx, h.spec, rule)
		}
		return h.store.deleteOrphans(ctx, h.spec, rule)
	}, true
}

func (s *Store) countOrphans(ctx context.Context, spec tableSpec, rule orphanRule) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int
	query := "SELECT COUNT(*) FROM " + spec.sqlTable + " WHERE " + rule.where
	if err := s.sqlDB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s orphans: %w", spec.name, err)
	}
	return count, nil
}

// deleteOrphans removes matching rows in one transaction so a failed job
// leaves the table untouched.
func (s *Store) deleteOrphans(ctx context.Context, spec tableSpec, rule orphanRule) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s cleanup: %w", spec.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if spec.auditPermissions {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO permissions_history (
	permission_id,
	aco,
	aco_foreign_key,
	aro,
	aro_foreign_key,
	type,
	action,
	created_at
)
SELECT id, aco, aco_foreign_key, aro, aro_foreign_key, type, ?, ?
FROM permissions
WHERE `+rule.where,
			storage.PermissionHistoryDeleted,
			time.Now().UTC().UnixMilli(),
		); err != nil {
			return 0, fmt.Errorf("record %s history: %w", spec.name, err)
		}
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM "+spec.sqlTable+" WHERE "+rule.where)
	if err != nil {
		return 0, fmt.Errorf("delete %s orphans: %w", spec.name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count %s deletions: %w", spec.name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s cleanup: %w", spec.name, err)
	}
	return int(affected), nil
}
