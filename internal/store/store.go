package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking (PRAGMA user_version):
// 0 - Empty database, schema never applied
// 1 - entities and actions tables
const currentSchemaVersion = 1

// schemaTables lists the tables Initialize guarantees to exist.
var schemaTables = []string{"entities", "actions"}

const (
	// DefaultMaxConns is the pool size cap.
	DefaultMaxConns = 5

	// DefaultBusyTimeout is how long a connection waits on a locked database.
	DefaultBusyTimeout = 5 * time.Second
)

// Options configures Open.
type Options struct {
	// MaxConns bounds the pool. Zero means DefaultMaxConns; values above
	// DefaultMaxConns are rejected.
	MaxConns int

	// BusyTimeout is the per-connection lock wait. Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration

	// Logger receives lifecycle events. Nil means slog.Default().
	Logger *slog.Logger
}

// Store is the sole owner of the connection pool and the only component that
// issues SQL. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// memorySeq names in-memory databases so each Open gets its own.
var memorySeq atomic.Int64

// Open creates or opens a SQLite database identified by connString using
// default options. See OpenWithOptions.
func Open(connString string) (*Store, error) {
	return OpenWithOptions(connString, Options{})
}

// OpenWithOptions establishes a bounded connection pool to the database.
//
// connString may be a file path, a "file:" URI, or a "sqlite://" / "sqlite:"
// URL. ":memory:" opens a private in-memory database shared by all pooled
// connections.
//
// The schema is NOT applied; call Initialize before inserting records.
// Any failure to reach or open the target is reported as ErrConnection.
func OpenWithOptions(connString string, opts Options) (*Store, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, newError(KindConnection, "open", err)
	}

	dsn, err := buildDSN(connString, opts)
	if err != nil {
		return nil, newError(KindConnection, "open", err)
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, newError(KindConnection, "open", fmt.Errorf("failed to open database: %w", err))
	}

	db.SetMaxOpenConns(opts.MaxConns)
	db.SetMaxIdleConns(opts.MaxConns)

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, newError(KindConnection, "open", fmt.Errorf("failed to connect to database: %w", err))
	}

	opts.Logger.Debug("database opened", "target", connString, "max_conns", opts.MaxConns)

	return &Store{db: db, logger: opts.Logger}, nil
}

func (o Options) withDefaults() (Options, error) {
	switch {
	case o.MaxConns == 0:
		o.MaxConns = DefaultMaxConns
	case o.MaxConns < 0 || o.MaxConns > DefaultMaxConns:
		return o, fmt.Errorf("max connections must be between 1 and %d, got %d", DefaultMaxConns, o.MaxConns)
	}
	switch {
	case o.BusyTimeout == 0:
		o.BusyTimeout = DefaultBusyTimeout
	case o.BusyTimeout < 0:
		return o, fmt.Errorf("busy timeout must not be negative, got %s", o.BusyTimeout)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o, nil
}

// buildDSN turns a connection string into a go-sqlite3 DSN carrying the
// per-connection pragmas. Parameters already present in the string win.
func buildDSN(connString string, opts Options) (string, error) {
	target := strings.TrimSpace(connString)
	switch {
	case strings.HasPrefix(target, "sqlite://"):
		target = strings.TrimPrefix(target, "sqlite://")
	case strings.HasPrefix(target, "sqlite:"):
		target = strings.TrimPrefix(target, "sqlite:")
	}
	if target == "" {
		return "", errors.New("empty connection string")
	}

	path, rawQuery, _ := strings.Cut(target, "?")
	if path == "" || path == "file:" {
		return "", fmt.Errorf("malformed connection string %q: missing database path", connString)
	}
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("malformed connection string %q: %w", connString, err)
	}

	if path == ":memory:" || path == "file::memory:" {
		path = fmt.Sprintf("file:loredb-mem-%d", memorySeq.Add(1))
		params.Set("mode", "memory")
		params.Set("cache", "shared")
	}

	setDefault := func(key, value string) {
		if !params.Has(key) {
			params.Set(key, value)
		}
	}
	setDefault("_journal_mode", "WAL")
	// Commits reach disk before Exec returns, also under WAL
	setDefault("_synchronous", "FULL")
	setDefault("_busy_timeout", strconv.FormatInt(opts.BusyTimeout.Milliseconds(), 10))
	setDefault("_foreign_keys", "on")
	// Writers queue on BEGIN instead of failing a snapshot upgrade mid-transaction
	setDefault("_txlock", "immediate")

	return path + "?" + params.Encode(), nil
}

// Initialize applies the schema if it has not been applied yet.
//
// The check and the schema script run on a single pooled connection, the
// script inside one transaction together with the user_version marker.
// Calling Initialize on an initialized database is a no-op. A database
// whose marker is newer than this version understands, or whose marker
// claims the schema while a table is missing, fails with ErrSchema.
func (s *Store) Initialize(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return newError(KindConnection, "initialize", err)
	}
	defer conn.Close()

	var version int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return newError(KindStorage, "initialize", fmt.Errorf("get user_version: %w", err))
	}

	switch {
	case version > currentSchemaVersion:
		return newError(KindSchema, "initialize",
			fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion))
	case version == currentSchemaVersion:
		if err := verifyTables(ctx, conn); err != nil {
			return newError(KindSchema, "initialize", err)
		}
		s.logger.Debug("schema already applied", "version", version)
		return nil
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return newError(KindStorage, "initialize", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return newError(KindSchema, "initialize", fmt.Errorf("failed to execute schema: %w", err))
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return newError(KindSchema, "initialize", fmt.Errorf("set user_version: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return newError(KindSchema, "initialize", fmt.Errorf("commit: %w", err))
	}

	s.logger.Debug("schema applied", "from_version", version, "to_version", currentSchemaVersion)
	return nil
}

// verifyTables checks that every schema table exists.
func verifyTables(ctx context.Context, conn *sql.Conn) error {
	for _, table := range schemaTables {
		var name string
		err := conn.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("schema version %d recorded but table %q is missing", currentSchemaVersion, table)
		}
		if err != nil {
			return fmt.Errorf("check table %q: %w", table, err)
		}
	}
	return nil
}

// SchemaVersion returns the schema version Initialize applies.
func SchemaVersion() int {
	return currentSchemaVersion
}

// SchemaSQL returns the embedded schema script.
func SchemaSQL() string {
	return schemaSQL
}

// Close closes the connection pool.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stats reports connection pool statistics.
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
