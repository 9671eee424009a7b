package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"sf-housing/models"
)

// DuckDBWriter stores cleaned listings in a local DuckDB file for ad-hoc analysis.
// Each Write replaces the previous contents of the listings table.
type DuckDBWriter struct {
	db    *sql.DB
	runID string
}

// NewDuckDBWriter opens (or creates) the DuckDB database at path.
func NewDuckDBWriter(path, runID string) (*DuckDBWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("duckdb: create dir: %w", err)
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping %q: %w", path, err)
	}
	return &DuckDBWriter{db: db, runID: runID}, nil
}

var duckDBSchema = []string{
	`DROP TABLE IF EXISTS listings`,
	`DROP SEQUENCE IF EXISTS listing_id_seq`,
	`CREATE SEQUENCE listing_id_seq`,
	`CREATE TABLE listings (
		id            BIGINT DEFAULT nextval('listing_id_seq'),
		run_id        VARCHAR NOT NULL,
		address       VARCHAR,
		title         VARCHAR,
		url           VARCHAR,
		raw_price     VARCHAR,
		facts         VARCHAR,
		price         DOUBLE,
		bed           DOUBLE,
		bath          DOUBLE,
		sqft          DOUBLE,
		property_type VARCHAR,
		created_at    TIMESTAMP DEFAULT current_timestamp
	)`,
}

func (w *DuckDBWriter) migrate() error {
	for _, stmt := range duckDBSchema {
		if _, err := w.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write recreates the listings table and inserts every listing in batches.
func (w *DuckDBWriter) Write(ds *models.CleanDataset) error {
	if err := w.migrate(); err != nil {
		return fmt.Errorf("duckdb: migrate: %w", err)
	}

	const batchSize = 200
	for i := 0; i < len(ds.Listings); i += batchSize {
		end := i + batchSize
		if end > len(ds.Listings) {
			end = len(ds.Listings)
		}
		query, args := buildInsert(w.runID, ds.Listings[i:end], func(int) string { return "?" })
		if _, err := w.db.Exec(query, args...); err != nil {
			return fmt.Errorf("duckdb: insert batch at %d: %w", i, err)
		}
	}
	return nil
}

// FetchAll reads the stored listings back in insertion order.
func (w *DuckDBWriter) FetchAll() ([]*models.Listing, error) {
	listings, err := fetchListings(w.db, `
		SELECT address, title, url, raw_price, facts, price, bed, bath, sqft, property_type
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: %w", err)
	}
	return listings, nil
}

func (w *DuckDBWriter) Close() error {
	return w.db.Close()
}
