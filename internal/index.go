package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is the authoritative unit of stored knowledge, keyed by
// fingerprint. History holds previously superseded fingerprints for the
// same identity, most recent first, bounded by the tracker.
type Record struct {
	Fingerprint string
	Description string
	Stale       bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	History     []string
}

// HashIndex is the durable fingerprint -> Record store. Writes are
// serialized by a single mutex; records are small and writes infrequent.
// A successful return means the write reached disk.
type HashIndex struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenIndex opens (and if needed creates) the index database at path.
func OpenIndex(path string) (*HashIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	// One connection: concurrent pipeline workers queue on the pool
	// instead of surfacing SQLITE_BUSY while a write holds the lock.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	x := &HashIndex{db: db}
	if err := x.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return x, nil
}

func (x *HashIndex) Close() error {
	return x.db.Close()
}

func (x *HashIndex) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS descriptions (
		fingerprint TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		stale       INTEGER NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL,
		history     TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS identities (
		identity    TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_descriptions_stale ON descriptions(stale);
	`
	_, err := x.db.Exec(schema)
	return err
}

// Get returns the record for a fingerprint, or ErrNotFound. A record whose
// stored history cannot be decoded is treated as absent, not fatal.
func (x *HashIndex) Get(ctx context.Context, fingerprint string) (*Record, error) {
	var rec Record
	var stale int
	var history string

	err := x.db.QueryRowContext(ctx,
		"SELECT fingerprint, description, stale, created_at, updated_at, history FROM descriptions WHERE fingerprint = ?",
		fingerprint,
	).Scan(&rec.Fingerprint, &rec.Description, &stale, &rec.CreatedAt, &rec.UpdatedAt, &history)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	rec.Stale = stale != 0
	if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
		Logger().Warn("corrupt history field, treating record as absent",
			slog.String("fingerprint", fingerprint),
			slog.String("error", err.Error()),
		)
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Set inserts or fully replaces the record for a fingerprint. CreatedAt is
// preserved on replace; UpdatedAt always refreshes.
func (x *HashIndex) Set(ctx context.Context, fingerprint, description string, stale bool, history []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if history == nil {
		history = []string{}
	}
	encoded, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	now := time.Now().UTC()
	_, err = x.db.ExecContext(ctx, `
		INSERT INTO descriptions (fingerprint, description, stale, created_at, updated_at, history)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			description = excluded.description,
			stale       = excluded.stale,
			updated_at  = excluded.updated_at,
			history     = excluded.history`,
		fingerprint, description, boolToInt(stale), now, now, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// MarkStale flips the stale flag on without touching the description.
func (x *HashIndex) MarkStale(ctx context.Context, fingerprint string) error {
	return x.setStale(ctx, fingerprint, true)
}

// MarkFresh flips the stale flag off without touching the description.
func (x *HashIndex) MarkFresh(ctx context.Context, fingerprint string) error {
	return x.setStale(ctx, fingerprint, false)
}

func (x *HashIndex) setStale(ctx context.Context, fingerprint string, stale bool) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	res, err := x.db.ExecContext(ctx,
		"UPDATE descriptions SET stale = ?, updated_at = ? WHERE fingerprint = ?",
		boolToInt(stale), time.Now().UTC(), fingerprint,
	)
	if err != nil {
		return fmt.Errorf("update stale flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStale returns all records currently flagged stale.
func (x *HashIndex) ListStale(ctx context.Context) ([]Record, error) {
	rows, err := x.db.QueryContext(ctx,
		"SELECT fingerprint, description, stale, created_at, updated_at, history FROM descriptions WHERE stale = 1 ORDER BY updated_at",
	)
	if err != nil {
		return nil, fmt.Errorf("list stale: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var stale int
		var history string
		if err := rows.Scan(&rec.Fingerprint, &rec.Description, &stale, &rec.CreatedAt, &rec.UpdatedAt, &history); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Stale = stale != 0
		if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
			Logger().Warn("skipping record with corrupt history",
				slog.String("fingerprint", rec.Fingerprint),
			)
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a record. Used only by destructive reset paths.
func (x *HashIndex) Delete(ctx context.Context, fingerprint string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, err := x.db.ExecContext(ctx, "DELETE FROM descriptions WHERE fingerprint = ?", fingerprint); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// Reset drops every record and identity mapping.
func (x *HashIndex) Reset(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, err := x.db.ExecContext(ctx, "DELETE FROM descriptions; DELETE FROM identities;"); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	return nil
}

// CurrentFingerprint returns the fingerprint last recorded for an identity.
func (x *HashIndex) CurrentFingerprint(ctx context.Context, identity string) (string, error) {
	var fp string
	err := x.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM identities WHERE identity = ?", identity,
	).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read identity: %w", err)
	}
	return fp, nil
}

// SetCurrentFingerprint records which fingerprint an identity now carries.
func (x *HashIndex) SetCurrentFingerprint(ctx context.Context, identity, fingerprint string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	_, err := x.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO identities (identity, fingerprint) VALUES (?, ?)",
		identity, fingerprint,
	)
	if err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
