package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/loredb/internal/attr"
	"github.com/roach88/loredb/internal/record"
	"github.com/roach88/loredb/internal/testutil"
)

var testEpoch = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// createOpenStore opens a fresh file-backed store without applying the schema.
func createOpenStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestStore opens a fresh file-backed store with the schema applied.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s := createOpenStore(t)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	return s
}

// createTestEntity creates an entity stamped at testEpoch.
func createTestEntity(id, entityType, name string) record.Entity {
	return record.NewEntityAt(testutil.NewFrozenClock(testEpoch), id, entityType, name,
		attr.Object{},
		attr.Object{},
	)
}

// createTestAction creates an action stamped at testEpoch.
func createTestAction(id, actionType, actor, object string) record.Action {
	return record.NewActionAt(testutil.NewFrozenClock(testEpoch), id, actionType, actor, object,
		attr.Object{},
	)
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query %q failed: %v", query, err)
	}
	return n
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
