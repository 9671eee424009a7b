package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"sf-housing/models"
)

// ParquetListing is the on-disk Parquet row for a cleaned listing.
// Optional fields are nil when the value is absent.
type ParquetListing struct {
	Address      string   `parquet:"name=address, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title        string   `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	URL          string   `parquet:"name=url, type=BYTE_ARRAY, convertedtype=UTF8"`
	RawPrice     string   `parquet:"name=raw_price, type=BYTE_ARRAY, convertedtype=UTF8"`
	Facts        string   `parquet:"name=facts_and_features, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price        *float64 `parquet:"name=price, type=DOUBLE, repetitiontype=OPTIONAL"`
	Bed          *float64 `parquet:"name=bed, type=DOUBLE, repetitiontype=OPTIONAL"`
	Bath         *float64 `parquet:"name=bath, type=DOUBLE, repetitiontype=OPTIONAL"`
	Sqft         *float64 `parquet:"name=sqft, type=DOUBLE, repetitiontype=OPTIONAL"`
	PropertyType *string  `parquet:"name=property_type, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// ParquetWriter exports cleaned listings to a Snappy-compressed Parquet file.
type ParquetWriter struct {
	path string
}

// NewParquetWriter returns a writer targeting path.
func NewParquetWriter(path string) *ParquetWriter {
	return &ParquetWriter{path: path}
}

func (p *ParquetWriter) Write(ds *models.CleanDataset) (err error) {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("parquet: create output dir: %w", err)
	}

	fw, err := local.NewLocalFileWriter(p.path)
	if err != nil {
		return fmt.Errorf("parquet: create file %q: %w", p.path, err)
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("parquet: close %q: %w", p.path, cerr))
		}
	}()

	pw, err := writer.NewParquetWriter(fw, new(ParquetListing), 4)
	if err != nil {
		return fmt.Errorf("parquet: init writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, l := range ds.Listings {
		if err := pw.Write(toParquet(l)); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("parquet: write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("parquet: finalize %q: %w", p.path, err)
	}
	return nil
}

func (p *ParquetWriter) Close() error { return nil }

func toParquet(l *models.Listing) ParquetListing {
	row := ParquetListing{
		Address:  l.Field(models.ColumnAddress),
		Title:    l.Field(models.ColumnTitle),
		URL:      l.Field(models.ColumnURL),
		RawPrice: l.Field(models.ColumnPrice),
		Facts:    l.Field(models.ColumnFactsAndFeatures),
		Price:    l.Price,
		Bed:      l.Bed,
		Bath:     l.Bath,
		Sqft:     l.Sqft,
	}
	if l.PropertyType != models.PropertyTypeNone {
		pt := string(l.PropertyType)
		row.PropertyType = &pt
	}
	return row
}
