package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cassius-cv/cassius/internal/record"
	"github.com/cassius-cv/cassius/internal/render"
)

// DB is the SQLite record cache, rebuilt on every fetch. It exists for
// fast listing and searching of cached records; the JSONL files remain
// the source of truth for rendering.
type DB struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
  category TEXT NOT NULL,
  position INTEGER NOT NULL,
  type     TEXT NOT NULL,
  title    TEXT NOT NULL,
  year     TEXT NOT NULL,
  venue    TEXT NOT NULL,
  doi      TEXT NOT NULL,
  creators TEXT NOT NULL,
  raw      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
`

// OpenDB opens (creating if necessary) the record cache at the given
// path.
func OpenDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CachedRecord is one row of the record cache.
type CachedRecord struct {
	Category string `json:"category"`
	Position int    `json:"position"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Year     string `json:"year"`
	Venue    string `json:"venue"`
	DOI      string `json:"doi,omitempty"`
	Creators string `json:"creators,omitempty"`
}

// Replace swaps a category's cached rows for the given records,
// preserving record order via the position column.
func (db *DB) Replace(category string, recs []record.Record) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records WHERE category = ?`, category); err != nil {
		return fmt.Errorf("clearing category %s: %w", category, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(category, position, type, title, year, venue, doi, creators, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range recs {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}

		_, err = stmt.Exec(category, i, rec.Type(), rec.Title(),
			render.DisplayYear(rec), rec.Str(record.FieldPublication),
			rec.Str(record.FieldDOI), creatorNames(rec), string(raw))
		if err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// List returns a category's cached rows in record order. An empty
// category name lists every category.
func (db *DB) List(category string) ([]CachedRecord, error) {
	query := `SELECT category, position, type, title, year, venue, doi, creators
		FROM records ORDER BY category, position`
	args := []any{}
	if category != "" {
		query = `SELECT category, position, type, title, year, venue, doi, creators
			FROM records WHERE category = ? ORDER BY position`
		args = append(args, category)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Search returns cached rows whose title or creators contain the query,
// case-insensitively.
func (db *DB) Search(query string) ([]CachedRecord, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := db.conn.Query(`SELECT category, position, type, title, year, venue, doi, creators
		FROM records
		WHERE lower(title) LIKE ? OR lower(creators) LIKE ?
		ORDER BY category, position`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]CachedRecord, error) {
	var out []CachedRecord
	for rows.Next() {
		var r CachedRecord
		if err := rows.Scan(&r.Category, &r.Position, &r.Type, &r.Title,
			&r.Year, &r.Venue, &r.DOI, &r.Creators); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return out, nil
}

// creatorNames flattens a record's creator list for search.
func creatorNames(rec record.Record) string {
	creators := rec.Creators()
	if len(creators) == 0 {
		return ""
	}
	names := make([]string, len(creators))
	for i, p := range creators {
		names[i] = strings.TrimSpace(p.Name.Given + " " + p.Name.Family)
	}
	return strings.Join(names, "; ")
}
