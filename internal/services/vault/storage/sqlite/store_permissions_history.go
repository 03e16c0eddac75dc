package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/passkeep/internal/services/vault/storage"
)

// ListPermissionsHistory returns history entries matching filter, oldest first.
func (s *Store) ListPermissionsHistory(ctx context.Context, filter storage.PermissionHistoryFilter) ([]storage.PermissionHistory, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	where, args := historyWhere(filter)
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	permission_id,
	aco,
	aco_foreign_key,
	aro,
	aro_foreign_key,
	type,
	action,
	created_at
FROM permissions_history`+where+`
ORDER BY id ASC
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list permissions history: %w", err)
	}
	defer rows.Close()

	var entries []storage.PermissionHistory
	for rows.Next() {
		var entry storage.PermissionHistory
		var createdAt int64
		if err := rows.Scan(
			&entry.ID,
			&entry.PermissionID,
			&entry.Aco,
			&entry.AcoForeignKey,
			&entry.Aro,
			&entry.AroForeignKey,
			&entry.Type,
			&entry.Action,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan permissions history: %w", err)
		}
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions history: %w", err)
	}
	return entries, nil
}

// CountPermissionsHistory counts history entries matching filter.
func (s *Store) CountPermissionsHistory(ctx context.Context, filter storage.PermissionHistoryFilter) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	where, args := historyWhere(filter)
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM permissions_history"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count permissions history: %w", err)
	}
	return count, nil
}

func historyWhere(filter storage.PermissionHistoryFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(column, value string) {
		if value = strings.TrimSpace(value); value != "" {
			clauses = append(clauses, column+" = ?")
			args = append(args, value)
		}
	}
	add("permission_id", filter.PermissionID)
	add("aco_foreign_key", filter.AcoForeignKey)
	add("aro_foreign_key", filter.AroForeignKey)
	add("action", filter.Action)
	if len(clauses) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(clauses, " AND "), args
}
