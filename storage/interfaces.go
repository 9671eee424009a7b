package storage

import "sf-housing/models"

// ListingWriter is the interface any export backend must satisfy.
type ListingWriter interface {
	Write(ds *models.CleanDataset) error
	Close() error
}

var (
	_ ListingWriter = (*CSVListingWriter)(nil)
	_ ListingWriter = (*ParquetWriter)(nil)
	_ ListingWriter = (*XLSXWriter)(nil)
	_ ListingWriter = (*DuckDBWriter)(nil)
	_ ListingWriter = (*PostgresWriter)(nil)
)
