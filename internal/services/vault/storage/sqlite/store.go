package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	sqlitemigrate "github.com/louisbranch/passkeep/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/passkeep/internal/services/vault/storage"
	"github.com/louisbranch/passkeep/internal/services/vault/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed vault persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a vault SQLite store at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if _, err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CountRows returns the number of rows in a vault table, addressed by its
// table identifier (for example "GroupsUsers").
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	sqlTable, ok := sqlTables[table]
	if !ok {
		return 0, fmt.Errorf("count %q: %w", table, storage.ErrTableNotFound)
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+sqlTable).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

// sqlTables maps table identifiers to quoted SQL table names.
var sqlTables = map[string]string{
	"Users":              "users",
	"Groups":             `"groups"`,
	"Resources":          "resources",
	"GroupsUsers":        "groups_users",
	"Favorites":          "favorites",
	"Comments":           "comments",
	"Permissions":        "permissions",
	"Secrets":            "secrets",
	"PermissionsHistory": "permissions_history",
}

var (
	_ storage.TableLocator           = (*Store)(nil)
	_ storage.PermissionHistoryStore = (*Store)(nil)
)
