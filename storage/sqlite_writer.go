package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"newhouse-etl/models"
)

// SQLiteWriter persists canonical records into a SQLite file for ad-hoc
// querying. Absent fields are stored as NULL.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter creates (or replaces) the SQLite database at path and
// prepares the listings table.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create output dir: %w", err)
	}
	// Start from a clean file so reruns never mix datasets.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("sqlite: remove old file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	w := &SQLiteWriter{db: db}
	if err := w.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return w, nil
}

func (w *SQLiteWriter) migrate() error {
	_, err := w.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT,
			type        TEXT,
			district    TEXT,
			subdistrict TEXT,
			locality    TEXT,
			room_layout INTEGER,
			area        REAL,
			total_price INTEGER,
			unit_price  INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_listings_district ON listings(district);
		CREATE INDEX IF NOT EXISTS idx_listings_type     ON listings(type);
	`)
	return err
}

// Write inserts all records inside one transaction.
func (w *SQLiteWriter) Write(records []*models.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO listings
			(name, type, district, subdistrict, locality, room_layout, area, total_price, unit_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			nullString(r.Name), nullString(r.Type),
			nullString(r.District), nullString(r.Subdistrict), nullString(r.Locality),
			r.RoomLayout, r.Area, r.TotalPrice, r.UnitPrice,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert: %w", err)
		}
	}

	return tx.Commit()
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// nullString maps the empty (absent) string to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
