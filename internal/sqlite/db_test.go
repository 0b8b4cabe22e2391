package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"projects",
		"tasks",
		"dependencies",
		"sessions",
		"activity_log",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestTasksTable_Constraints(t *testing.T) {
	db := NewTestDB(t)

	_, err := db.Exec(
		`INSERT INTO tasks (project_id, id, position, name, start_at, end_at, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"missing", "t1", 0, "A", "2024-01-01T00:00:00", "2024-01-02T00:00:00", []byte{1, 2, 3, 4})
	require.Error(t, err, "should fail with invalid project_id")

	_, err = db.Exec(
		`INSERT INTO projects (id, tenant_id, name, version, created_at, modified_at)
		 VALUES ('p1', 'tenant1', 'P', 3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO tasks (project_id, id, position, name, start_at, end_at, priority, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		"p1", "t1", 0, "A", "2024-01-01T00:00:00", "2024-01-02T00:00:00", "Urgent", []byte{1, 2, 3, 4})
	require.Error(t, err, "should fail with invalid priority")
}
