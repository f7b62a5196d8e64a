// Package catalog persists backup records and scalar settings in a
// SQLite database. The backup engine never touches it; the CLI records
// completed captures here and consults it for retention and staleness
// decisions.
package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Record is one completed backup.
type Record struct {
	ID        string
	Game      string
	Path      string
	Mode      string // "directory" or "zip"
	Size      int64  // sum of original file sizes at capture time
	CreatedAt time.Time
}

// Catalog wraps the backing database.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Add records a completed backup and returns its generated id.
func (c *Catalog) Add(game, path, mode string, size int64, createdAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := c.db.Exec(
		`INSERT INTO backups (id, game, path, mode, size, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, game, path, mode, size, createdAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("record backup: %w", err)
	}
	return id, nil
}

// Get returns one record by id.
func (c *Catalog) Get(id string) (Record, error) {
	row := c.db.QueryRow(
		`SELECT id, game, path, mode, size, created_at FROM backups WHERE id = ?`, id)
	return scanRecord(row)
}

// List returns records, newest first, optionally filtered by game.
func (c *Catalog) List(game string) ([]Record, error) {
	query := `SELECT id, game, path, mode, size, created_at FROM backups`
	args := []any{}
	if game != "" {
		query += ` WHERE game = ?`
		args = append(args, game)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes a record and its on-disk artifact. A missing artifact
// is fine; the record still goes.
func (c *Catalog) Delete(id string) error {
	r, err := c.Get(id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(r.Path); err != nil {
		return fmt.Errorf("delete backup artifact: %w", err)
	}
	_, err = c.db.Exec(`DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete backup record: %w", err)
	}
	return nil
}

// EnforceRetention keeps the N most recent backups for a game and
// deletes everything older, artifacts included. N is clamped to
// [1,100]. Individual deletion failures are logged and skipped; the
// rest of the cleanup continues.
func (c *Catalog) EnforceRetention(game string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	if keep > 100 {
		keep = 100
	}
	records, err := c.List(game)
	if err != nil {
		return err
	}
	if len(records) <= keep {
		return nil
	}
	for _, old := range records[keep:] {
		if err := os.RemoveAll(old.Path); err != nil {
			log.Warn().Err(err).Str("path", old.Path).Msg("retention: artifact not deleted")
			continue
		}
		if _, err := c.db.Exec(`DELETE FROM backups WHERE id = ?`, old.ID); err != nil {
			log.Warn().Err(err).Str("id", old.ID).Msg("retention: record not deleted")
		}
	}
	return nil
}

// BackupNeeded reports whether the newest save file is younger than the
// game's last recorded backup. With no record at all, a backup is due
// whenever any save data exists.
func (c *Catalog) BackupNeeded(game string, newestSave time.Time) (bool, error) {
	records, err := c.List(game)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return !newestSave.IsZero(), nil
	}
	return newestSave.After(records[0].CreatedAt), nil
}

// RestoreAdvisable reports whether the current save data is smaller
// than the last recorded backup, which usually means saves were lost.
func (c *Catalog) RestoreAdvisable(game string, currentSize int64) (bool, error) {
	records, err := c.List(game)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}
	return currentSize < records[0].Size, nil
}

// Setting reads one scalar setting; ok is false when unset.
func (c *Catalog) Setting(key string) (string, bool, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting writes one scalar setting.
func (c *Catalog) SetSetting(key, value string) error {
	_, err := c.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	var created int64
	if err := row.Scan(&r.ID, &r.Game, &r.Path, &r.Mode, &r.Size, &created); err != nil {
		return Record{}, fmt.Errorf("scan backup record: %w", err)
	}
	r.CreatedAt = time.Unix(created, 0)
	return r, nil
}
