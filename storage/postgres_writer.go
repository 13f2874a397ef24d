package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"newhouse-etl/models"
	"newhouse-etl/utils"
)

// PostgresWriter persists canonical records to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL with backoff, runs
// schema migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id          SERIAL PRIMARY KEY,
			name        TEXT,
			type        TEXT,
			district    TEXT,
			subdistrict TEXT,
			locality    TEXT,
			room_layout INTEGER,
			area        NUMERIC(10,2),
			total_price INTEGER,
			unit_price  INTEGER,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_district   ON listings(district);
		CREATE INDEX IF NOT EXISTS idx_listings_type       ON listings(type);
		CREATE INDEX IF NOT EXISTS idx_listings_unit_price ON listings(unit_price);
	`)
	return err
}

// Clear deletes all existing records from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM listings")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts all records, clearing old data first so each run
// represents exactly one dataset.
func (pw *PostgresWriter) Write(records []*models.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := pw.insertBatch(records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Record) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*9)

	for idx, r := range batch {
		base := idx * 9
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			nullString(r.Name), nullString(r.Type),
			nullString(r.District), nullString(r.Subdistrict), nullString(r.Locality),
			r.RoomLayout, r.Area, r.TotalPrice, r.UnitPrice)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (name, type, district, subdistrict, locality, room_layout, area, total_price, unit_price)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored records in insertion order.
func (pw *PostgresWriter) FetchAll() ([]*models.Record, error) {
	rows, err := pw.db.Query(`
		SELECT name, type, district, subdistrict, locality, room_layout, area, total_price, unit_price
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		r := &models.Record{}
		var name, typ, district, subdistrict, locality sql.NullString
		if err := rows.Scan(
			&name, &typ, &district, &subdistrict, &locality,
			&r.RoomLayout, &r.Area, &r.TotalPrice, &r.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		r.Name = name.String
		r.Type = typ.String
		r.District = district.String
		r.Subdistrict = subdistrict.String
		r.Locality = locality.String
		records = append(records, r)
	}
	return records, rows.Err()
}
