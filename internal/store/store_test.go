package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := s1.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := s1.InsertEntity(ctx, createTestEntity("ent_1", "person", "Ada")); err != nil {
		t.Fatalf("InsertEntity() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	if n := countRows(t, s2.db, "SELECT COUNT(*) FROM entities"); n != 1 {
		t.Errorf("entities count = %d, want 1", n)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	// Try to open in non-existent directory
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Fatal("expected error for invalid path, got nil")
	}
	if !errors.Is(err, ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

func TestOpen_MalformedConnectionString(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		connString string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"scheme only", "sqlite://"},
		{"file scheme only", "file:"},
		{"bad query escape", "file:" + filepath.Join(dir, "a.db") + "?%zz"},
		{"bad busy timeout", filepath.Join(dir, "b.db") + "?_busy_timeout=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.connString)
			if err == nil {
				s.Close()
				t.Fatalf("expected error for %q, got nil", tt.connString)
			}
			assert.ErrorIs(t, err, ErrConnection)
			assert.Equal(t, KindConnection, KindOf(err))
		})
	}
}

func TestOpen_ConnectionStringForms(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		connString string
	}{
		{"plain path", filepath.Join(dir, "plain.db")},
		{"sqlite url", "sqlite://" + filepath.Join(dir, "url.db")},
		{"sqlite scheme", "sqlite:" + filepath.Join(dir, "scheme.db")},
		{"file uri", "file:" + filepath.Join(dir, "uri.db")},
		{"file uri with params", "file:" + filepath.Join(dir, "params.db") + "?_busy_timeout=100"},
		{"memory", ":memory:"},
		{"sqlite memory", "sqlite::memory:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			s, err := Open(tt.connString)
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Initialize(ctx))
			require.NoError(t, s.InsertEntity(ctx, createTestEntity("ent_1", "person", "Ada")))

			got, err := s.GetEntity(ctx, "ent_1")
			require.NoError(t, err)
			assert.Equal(t, "Ada", got.Name)
		})
	}
}

func TestOpen_MemoryDatabasesAreIndependent(t *testing.T) {
	ctx := context.Background()

	s1, err := Open(":memory:")
	require.NoError(t, err)
	defer s1.Close()
	s2, err := Open(":memory:")
	require.NoError(t, err)
	defer s2.Close()

	require.NoError(t, s1.Initialize(ctx))
	require.NoError(t, s1.InsertEntity(ctx, createTestEntity("ent_1", "person", "Ada")))

	// s2 never saw the schema
	err = s2.InsertEntity(ctx, createTestEntity("ent_1", "person", "Ada"))
	assert.ErrorIs(t, err, ErrStorage)
}

func TestOpen_PoolBounded(t *testing.T) {
	s := createOpenStore(t)
	assert.Equal(t, DefaultMaxConns, s.Stats().MaxOpenConnections)
}

func TestOpenWithOptions_MaxConns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenWithOptions(path, Options{MaxConns: 2})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 2, s.Stats().MaxOpenConnections)
}

func TestOpenWithOptions_RejectsInvalidOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	tests := []struct {
		name string
		opts Options
	}{
		{"pool above cap", Options{MaxConns: DefaultMaxConns + 1}},
		{"negative pool", Options{MaxConns: -1}},
		{"negative busy timeout", Options{BusyTimeout: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenWithOptions(path, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConnection)
		})
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	err := s.Close()
	if err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close should not panic (though may error)
	_ = s.Close()
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createOpenStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createOpenStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createOpenStore(t)
	// FULL = 2
	if err := s.verifyPragma("synchronous", "2"); err != nil {
		t.Error(err)
	}
}

func TestPragma_SynchronousOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fast.db") + "?_synchronous=NORMAL"
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createOpenStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_CustomBusyTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenWithOptions(path, Options{BusyTimeout: 250 * time.Millisecond})
	require.NoError(t, err)
	defer s.Close()

	if err := s.verifyPragma("busy_timeout", "250"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createOpenStore(t)
	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_AppliedOnEveryPooledConnection(t *testing.T) {
	s := createOpenStore(t)
	ctx := context.Background()

	// Hold every connection at once so each one is a distinct pooled conn.
	var conns []interface{ Close() error }
	for i := 0; i < DefaultMaxConns; i++ {
		conn, err := s.db.Conn(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)

		var fk int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
		assert.Equal(t, 1, fk, "connection %d", i)
	}
	for _, c := range conns {
		c.Close()
	}
}

// Schema tests

func TestInitialize_FreshDatabase(t *testing.T) {
	s := createTestStore(t)

	for _, table := range []string{"entities", "actions"} {
		if n := countRows(t, s.db, "SELECT COUNT(*) FROM "+table); n != 0 {
			t.Errorf("%s has %d rows, want 0", table, n)
		}
	}
}

func TestInitialize_SetsSchemaVersion(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestSchema_EntitiesTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "entities")
	expected := []string{
		"id", "type", "name", "properties", "first_seen", "last_updated", "metadata",
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("entities table missing column %q", col)
		}
	}
}

func TestSchema_ActionsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "actions")
	expected := []string{
		"id", "action_type", "actor_entity_id", "object_entity_id", "timestamp", "properties",
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("actions table missing column %q", col)
		}
	}
}

func TestInitialize_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertEntity(ctx, createTestEntity("ent_1", "person", "Ada")))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Initialize(ctx), "iteration %d", i)
	}

	// Existing data survives re-initialization
	assert.Equal(t, 1, countRows(t, s.db, "SELECT COUNT(*) FROM entities"))
}

func TestInitialize_IdempotentAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Initialize(ctx), "Initialize() iteration %d", i)
		s.Close()
	}
}

func TestInitialize_Concurrent(t *testing.T) {
	s := createOpenStore(t)
	ctx := context.Background()

	const goroutines = 5
	errs := make(chan error, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Initialize(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestInitialize_NewerSchemaVersion(t *testing.T) {
	s := createOpenStore(t)

	_, err := s.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)

	err = s.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestInitialize_MissingTableWithMarker(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec("DROP TABLE actions")
	require.NoError(t, err)

	err = s.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), `table "actions" is missing`)
}

func TestInitialize_CancelledContext(t *testing.T) {
	s := createOpenStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Initialize(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The pool is still usable afterwards
	require.NoError(t, s.Initialize(context.Background()))
}

func TestSchemaSQL_Embedded(t *testing.T) {
	sql := SchemaSQL()
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS entities")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS actions")
}
