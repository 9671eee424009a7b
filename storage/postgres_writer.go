package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"sf-housing/models"
)

// listingColumns is the number of values inserted per listing row.
const listingColumns = 11

// PostgresWriter persists cleaned listings to PostgreSQL.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter. Rows it writes are tagged with runID.
func NewPostgresWriter(dsn, runID string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id            SERIAL PRIMARY KEY,
			run_id        TEXT          NOT NULL,
			address       TEXT          NOT NULL DEFAULT '',
			title         TEXT          NOT NULL DEFAULT '',
			url           TEXT          NOT NULL DEFAULT '',
			raw_price     TEXT          NOT NULL DEFAULT '',
			facts         TEXT          NOT NULL DEFAULT '',
			price         DOUBLE PRECISION,
			bed           DOUBLE PRECISION,
			bath          DOUBLE PRECISION,
			sqft          DOUBLE PRECISION,
			property_type VARCHAR(20),
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price         ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type);
		CREATE INDEX IF NOT EXISTS idx_listings_run_id        ON listings(run_id);
	`)
	return err
}

// Clear deletes all existing listings from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM listings")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts ALL cleaned listings, clearing old data first.
func (pw *PostgresWriter) Write(ds *models.CleanDataset) error {
	if ds.Len() == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(ds.Listings); i += batchSize {
		end := i + batchSize
		if end > len(ds.Listings) {
			end = len(ds.Listings)
		}
		if err := pw.insertBatch(ds.Listings[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	query, args := buildInsert(pw.runID, batch, func(n int) string { return fmt.Sprintf("$%d", n) })
	_, err := pw.db.Exec(query, args...)
	return err
}

// buildInsert renders a multi-row INSERT for batch using placeholder(n) for the
// n-th (1-based) argument.
func buildInsert(runID string, batch []*models.Listing, placeholder func(int) string) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		ph := make([]string, listingColumns)
		for j := range ph {
			ph[j] = placeholder(base + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, listingArgs(runID, l)...)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (run_id, address, title, url, raw_price, facts, price, bed, bath, sqft, property_type)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func listingArgs(runID string, l *models.Listing) []interface{} {
	var pt interface{}
	if l.PropertyType != models.PropertyTypeNone {
		pt = string(l.PropertyType)
	}
	return []interface{}{
		runID,
		l.Field(models.ColumnAddress),
		l.Field(models.ColumnTitle),
		l.Field(models.ColumnURL),
		l.Field(models.ColumnPrice),
		l.Field(models.ColumnFactsAndFeatures),
		nullFloat(l.Price),
		nullFloat(l.Bed),
		nullFloat(l.Bath),
		nullFloat(l.Sqft),
		pt,
	}
}

// nullFloat unwraps an optional number into a driver value; nil becomes NULL.
func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings for the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	listings, err := fetchListings(pw.db, `
		SELECT address, title, url, raw_price, facts, price, bed, bath, sqft, property_type
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return listings, nil
}

func fetchListings(db *sql.DB, query string) ([]*models.Listing, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		var address, title, url, rawPrice, facts string
		var price, bed, bath, sqft sql.NullFloat64
		var pt sql.NullString
		if err := rows.Scan(&address, &title, &url, &rawPrice, &facts,
			&price, &bed, &bath, &sqft, &pt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		listings = append(listings, &models.Listing{
			Fields: map[string]string{
				models.ColumnAddress:          address,
				models.ColumnTitle:            title,
				models.ColumnURL:              url,
				models.ColumnPrice:            rawPrice,
				models.ColumnFactsAndFeatures: facts,
			},
			Price:        floatPtr(price),
			Bed:          floatPtr(bed),
			Bath:         floatPtr(bath),
			Sqft:         floatPtr(sqft),
			PropertyType: models.PropertyType(pt.String),
		})
	}
	return listings, rows.Err()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
