package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVTable is one parsed source file.
type CSVTable struct {
	Path    string
	Columns []string
	Rows    [][]string
}

// ReadCSVFile parses a CSV file with a header row. Rows shorter than the header
// are padded with empty cells; rows longer than the header are an error.
// Repeated header names are renamed "name.1", "name.2", ... in order.
func ReadCSVFile(path string) (*CSVTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// ReadCSV parses CSV data with a header row from r.
func ReadCSV(r io.Reader) (*CSVTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no columns to parse")
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &CSVTable{Columns: dedupeColumns(header)}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) > len(t.Columns) {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(t.Columns), len(rec))
		}
		for len(rec) < len(t.Columns) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func dedupeColumns(header []string) []string {
	out := make([]string, len(header))
	counts := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}
	for i, h := range header {
		n := counts[h]
		counts[h] = n + 1
		if n == 0 {
			out[i] = h
			continue
		}
		name := h + "." + strconv.Itoa(n)
		for taken[name] {
			n++
			name = h + "." + strconv.Itoa(n)
		}
		counts[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}
