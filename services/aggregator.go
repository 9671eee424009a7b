package services

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"sf-housing/models"
	"sf-housing/storage"
	"sf-housing/utils"
)

// ErrNoSourceFiles is returned when a directory holds nothing to aggregate.
var ErrNoSourceFiles = errors.New("aggregate: no source files found")

// Aggregator merges every scraped CSV file under a directory into one
// deduplicated dataset.
type Aggregator struct {
	logger     *utils.Logger
	ext        string
	mergedName string
}

// NewAggregator creates an Aggregator matching files with extension ext
// (e.g. ".csv") and persisting the merged table as mergedName.
func NewAggregator(logger *utils.Logger, ext, mergedName string) *Aggregator {
	return &Aggregator{logger: logger, ext: ext, mergedName: mergedName}
}

// MergedPath returns where Load writes the merged table for dir.
func (a *Aggregator) MergedPath(dir string) string {
	return filepath.Join(dir, a.mergedName)
}

// Discover walks dir recursively and returns matching files in lexical order.
// The merged output file from a previous run is skipped.
func (a *Aggregator) Discover(dir string) ([]string, error) {
	merged := filepath.Clean(a.MergedPath(dir))
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), a.ext) {
			return nil
		}
		if filepath.Clean(path) == merged {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate: walk %q: %w", dir, err)
	}
	return paths, nil
}

// Load discovers, parses and concatenates all source files under dir, drops
// rows identical to an earlier row, writes the result to MergedPath(dir) and
// returns it. Columns are the union of every file's header in first-seen
// order. It fails with ErrNoSourceFiles when nothing matches.
func (a *Aggregator) Load(dir string) (*models.Dataset, error) {
	a.logger.Info("loading data %s", filepath.Join(dir, "**", "*"+a.ext))

	paths, err := a.Discover(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s under %q", ErrNoSourceFiles, a.ext, dir)
	}

	tables := make([]*storage.CSVTable, 0, len(paths))
	for _, p := range paths {
		t, err := storage.ReadCSVFile(p)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		a.logger.Debug("[aggregate] %s: %d rows, %d columns", p, len(t.Rows), len(t.Columns))
		tables = append(tables, t)
	}

	ds := Concat(tables)
	total := ds.Len()
	ds.Rows = DropDuplicates(ds.Rows)
	a.logger.Info("Found a total of %d data points", ds.Len())
	a.logger.Debug("[aggregate] %d files, %d rows, %d duplicates dropped", len(tables), total, total-ds.Len())

	if err := storage.WriteDataset(a.MergedPath(dir), ds); err != nil {
		return nil, fmt.Errorf("aggregate: persist merged table: %w", err)
	}
	return ds, nil
}

// Concat stacks tables in order, aligning cells to the union of their columns.
func Concat(tables []*storage.CSVTable) *models.Dataset {
	ds := &models.Dataset{}
	index := make(map[string]int)
	for _, t := range tables {
		for _, col := range t.Columns {
			if _, ok := index[col]; !ok {
				index[col] = len(ds.Columns)
				ds.Columns = append(ds.Columns, col)
			}
		}
	}

	for _, t := range tables {
		for _, rec := range t.Rows {
			row := make([]string, len(ds.Columns))
			for i, col := range t.Columns {
				row[index[col]] = rec[i]
			}
			ds.Rows = append(ds.Rows, row)
		}
	}
	return ds
}

// DropDuplicates keeps the first occurrence of every distinct row, preserving order.
func DropDuplicates(rows [][]string) [][]string {
	seen := utils.NewKeySet()
	out := rows[:0:0]
	for _, row := range rows {
		if seen.Add(utils.RowKey(row)) {
			out = append(out, row)
		}
	}
	return out
}
