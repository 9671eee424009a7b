package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sf-housing/models"
)

// CSVWriter writes tabular rows to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{path: path, file: f, writer: w}, nil
}

// WriteRows appends rows to the file.
func (c *CSVWriter) WriteRows(rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return fmt.Errorf("csv: flush %q: %w", c.path, err)
	}
	return c.file.Close()
}

// WriteDataset writes a merged raw dataset to path.
func WriteDataset(path string, ds *models.Dataset) error {
	w, err := NewCSVWriter(path, ds.Columns)
	if err != nil {
		return err
	}
	if err := w.WriteRows(ds.Rows); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// CSVListingWriter exports cleaned listings as CSV: the source columns with
// "price" replaced by its parsed value, followed by the other derived fields.
type CSVListingWriter struct {
	path string
}

// NewCSVListingWriter returns a writer targeting path.
func NewCSVListingWriter(path string) *CSVListingWriter {
	return &CSVListingWriter{path: path}
}

func (c *CSVListingWriter) Write(ds *models.CleanDataset) error {
	header := ds.Header()
	w, err := NewCSVWriter(c.path, header)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(ds.Listings))
	for _, l := range ds.Listings {
		rows = append(rows, l.Record(header))
	}
	if err := w.WriteRows(rows); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (c *CSVListingWriter) Close() error { return nil }
