// Package cache provides a build cache for per-program emitted C output,
// keyed by the SHA-256 digest of the program's resolved IR plus its
// emitter configuration (spec.md §5, §9). A cache hit reuses the
// previously emitted header/source bytes verbatim, which satisfies the
// determinism contract for free: a hit is only ever valid because it is
// byte-identical to what the emitter would have produced again.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	cerrors "tensorc/internal/errors"
)

// Entry is one program's cached emitted output.
type Entry struct {
	Header    string
	Source    string
	CreatedAt time.Time
}

// Cache stores emitted program output keyed by content hash.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// DefaultDSN is used when the caller supplies no --cache-dsn: an
// in-memory sqlite database scoped to this process, so an uncached run
// still exercises the dependency without requiring any setup.
const DefaultDSN = "sqlite::memory:"

// Open connects to the cache store named by dsn, dispatching on its
// scheme the way the teacher's DBManager.Connect dispatches on dbType:
// sqlite: and sqlite:// DSNs route to modernc.org/sqlite, postgres:// and
// postgresql:// to github.com/lib/pq, and mysql:// to
// github.com/go-sql-driver/mysql. Any other scheme is an IoError.
// It creates the program_hash cache table if absent.
func Open(dsn string) (*Cache, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	driverName, dataSource, err := resolveDriver(dsn)
	if err != nil {
		return nil, cerrors.New(cerrors.IoError, dsn, "cache dsn: %v", err)
	}

	db, err := sql.Open(driverName, dataSource)
	if err != nil {
		return nil, cerrors.New(cerrors.IoError, dsn, "cache open: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, cerrors.New(cerrors.IoError, dsn, "cache ping: %v", err)
	}

	ddl := "CREATE TABLE IF NOT EXISTS program_cache (program_hash TEXT PRIMARY KEY, header BLOB, source BLOB, created_at INTEGER)"
	if driverName == "postgres" {
		ddl = "CREATE TABLE IF NOT EXISTS program_cache (program_hash TEXT PRIMARY KEY, header BYTEA, source BYTEA, created_at BIGINT)"
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, cerrors.New(cerrors.IoError, dsn, "cache schema: %v", err)
	}

	return &Cache{db: db}, nil
}

// resolveDriver maps a DSN scheme to a registered database/sql driver
// name and the connection string that driver expects.
func resolveDriver(dsn string) (driverName, dataSource string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite:"), nil
	default:
		return "", "", fmt.Errorf("unsupported or missing scheme in %q", dsn)
	}
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes a program's resolved linear IR text form plus its emitter
// configuration into the SHA-256 digest used as the cache's primary key,
// adapting the teacher's checksum-over-bytecode convention
// (internal/build/builder.go's computeChecksum) to hash source material
// instead of a link product.
func Key(programID string, irText string, emitterConfig string) string {
	h := sha256.New()
	h.Write([]byte(programID))
	h.Write([]byte{0})
	h.Write([]byte(irText))
	h.Write([]byte{0})
	h.Write([]byte(emitterConfig))
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached entry for key, if present.
func (c *Cache) Lookup(key string) (*Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.db.QueryRow("SELECT header, source, created_at FROM program_cache WHERE program_hash = ?", key)
	var header, source []byte
	var createdAt int64
	if err := row.Scan(&header, &source, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, cerrors.New(cerrors.IoError, key, "cache lookup: %v", err)
	}
	return &Entry{Header: string(header), Source: string(source), CreatedAt: time.Unix(createdAt, 0)}, true, nil
}

// Store writes an entry, replacing any prior entry under the same key.
func (c *Cache) Store(key string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Unix(0, 0)
	}

	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO program_cache (program_hash, header, source, created_at) VALUES (?, ?, ?, ?)",
		key, []byte(entry.Header), []byte(entry.Source), createdAt.Unix(),
	)
	if err != nil {
		return cerrors.New(cerrors.IoError, key, "cache store: %v", err)
	}
	return nil
}
