package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/passkeep/internal/platform/id"
	"github.com/louisbranch/passkeep/internal/services/vault/storage"
)

// CreateUser inserts an active user and returns its id.
func (s *Store) CreateUser(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	return s.insertNamed(ctx, "users", "username", username)
}

// CreateGroup inserts an active group and returns its id.
func (s *Store) CreateGroup(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("group name is required")
	}
	return s.insertNamed(ctx, `"groups"`, "name", name)
}

// CreateResource inserts an active resource and returns its id.
func (s *Store) CreateResource(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("resource name is required")
	}
	return s.insertNamed(ctx, "resources", "name", name)
}

func (s *Store) insertNamed(ctx context.Context, sqlTable, column, value string) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	rowID, err := id.NewID()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC().UnixMilli()
	if _, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO "+sqlTable+" (id, "+column+", deleted, created_at, modified_at) VALUES (?, ?, 0, ?, ?)",
		rowID, value, now, now,
	); err != nil {
		return "", fmt.Errorf("insert %s: %w", sqlTable, err)
	}
	return rowID, nil
}

// SoftDeleteUser flags a user as deleted without removing the row.
func (s *Store) SoftDeleteUser(ctx context.Context, userID string) error {
	return s.softDelete(ctx, "users", userID)
}

// SoftDeleteGroup flags a group as deleted without removing the row.
func (s *Store) SoftDeleteGroup(ctx context.Context, groupID string) error {
	return s.softDelete(ctx, `"groups"`, groupID)
}

// SoftDeleteResource flags a resource as deleted without removing the row.
func (s *Store) SoftDeleteResource(ctx context.Context, resourceID string) error {
	return s.softDelete(ctx, "resources", resourceID)
}

// HardDeleteUser removes a user row, leaving dependent rows orphaned.
func (s *Store) HardDeleteUser(ctx context.Context, userID string) error {
	return s.hardDelete(ctx, "users", userID)
}

// HardDeleteGroup removes a group row, leaving dependent rows orphaned.
func (s *Store) HardDeleteGroup(ctx context.Context, groupID string) error {
	return s.hardDelete(ctx, `"groups"`, groupID)
}

// HardDeleteResource removes a resource row, leaving dependent rows orphaned.
func (s *Store) HardDeleteResource(ctx context.Context, resourceID string) error {
	return s.hardDelete(ctx, "resources", resourceID)
}

// HardDeletePermission removes a permission row without writing history.
func (s *Store) HardDeletePermission(ctx context.Context, permissionID string) error {
	return s.hardDelete(ctx, "permissions", permissionID)
}

func (s *Store) softDelete(ctx context.Context, sqlTable, rowID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE "+sqlTable+" SET deleted = 1, modified_at = ? WHERE id = ?",
		time.Now().UTC().UnixMilli(), rowID,
	)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", sqlTable, err)
	}
	return requireAffected(result.RowsAffected())
}

func (s *Store) hardDelete(ctx context.Context, sqlTable, rowID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM "+sqlTable+" WHERE id = ?", rowID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", sqlTable, err)
	}
	return requireAffected(result.RowsAffected())
}

func requireAffected(affected int64, err error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AddGroupUser adds a user to a group.
func (s *Store) AddGroupUser(ctx context.Context, groupID, userID string, isAdmin bool) (string, error) {
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("group id and user id are required")
	}
	admin := 0
	if isAdmin {
		admin = 1
	}
	return s.insertRow(ctx, "groups_users",
		"INSERT INTO groups_users (id, group_id, user_id, is_admin, created_at) VALUES (?, ?, ?, ?, ?)",
		groupID, userID, admin,
	)
}

// AddFavorite marks a resource as a user's favorite.
func (s *Store) AddFavorite(ctx context.Context, userID, resourceID string) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(resourceID) == "" {
		return "", fmt.Errorf("user id and resource id are required")
	}
	return s.insertRow(ctx, "favorites",
		"INSERT INTO favorites (id, user_id, foreign_key, foreign_model, created_at) VALUES (?, ?, ?, 'Resource', ?)",
		userID, resourceID,
	)
}

// AddComment attaches a user comment to a resource.
func (s *Store) AddComment(ctx context.Context, userID, resourceID, content string) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(resourceID) == "" {
		return "", fmt.Errorf("user id and resource id are required")
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("comment content is required")
	}
	return s.insertRow(ctx, "comments",
		"INSERT INTO comments (id, user_id, foreign_key, foreign_model, content, created_at) VALUES (?, ?, ?, 'Resource', ?, ?)",
		userID, resourceID, content,
	)
}

// AddPermission grants an aro access to a resource.
func (s *Store) AddPermission(ctx context.Context, permission storage.Permission) (string, error) {
	if permission.Aco == "" {
		permission.Aco = storage.AcoResource
	}
	if permission.Aro != storage.AroUser && permission.Aro != storage.AroGroup {
		return "", fmt.Errorf("aro must be %s or %s", storage.AroUser, storage.AroGroup)
	}
	if strings.TrimSpace(permission.AcoForeignKey) == "" || strings.TrimSpace(permission.AroForeignKey) == "" {
		return "", fmt.Errorf("aco and aro foreign keys are required")
	}
	switch permission.Type {
	case storage.PermissionRead, storage.PermissionUpdate, storage.PermissionOwner:
	default:
		return "", fmt.Errorf("invalid permission type %d", permission.Type)
	}
	return s.insertRow(ctx, "permissions",
		"INSERT INTO permissions (id, aco, aco_foreign_key, aro, aro_foreign_key, type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		permission.Aco, permission.AcoForeignKey, permission.Aro, permission.AroForeignKey, permission.Type,
	)
}

// AddSecret stores a user's encrypted copy of a resource secret.
func (s *Store) AddSecret(ctx context.Context, userID, resourceID, data string) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(resourceID) == "" {
		return "", fmt.Errorf("user id and resource id are required")
	}
	if data == "" {
		return "", fmt.Errorf("secret data is required")
	}
	return s.insertRow(ctx, "secrets",
		"INSERT INTO secrets (id, user_id, resource_id, data, created_at) VALUES (?, ?, ?, ?, ?)",
		userID, resourceID, data,
	)
}

// insertRow runs query with a fresh id prepended and the creation time
// appended to args.
func (s *Store) insertRow(ctx context.Context, sqlTable, query string, args ...any) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	rowID, err := id.NewID()
	if err != nil {
		return "", err
	}
	values := make([]any, 0, len(args)+2)
	values = append(values, rowID)
	values = append(values, args...)
	values = append(values, time.Now().UTC().UnixMilli())
	if _, err := s.sqlDB.ExecContext(ctx, query, values...); err != nil {
		return "", fmt.Errorf("insert %s: %w", sqlTable, err)
	}
	return rowID, nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}
