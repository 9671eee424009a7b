package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sf-housing/storage"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestAggregator() *Aggregator {
	return NewAggregator(newTestLogger(), ".csv", "all_data.csv")
}

func seedScrapeRuns(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "sf_housing", "run_01.csv"),
		"address,facts and features,price,title\n"+
			"1 Main St,\"3 bd, 2 ba, 1,500 sqft\",$1.2M,Condo For Sale\n"+
			"2 Main St,\"Studio, 1 ba, 500 sqft\",$850K,Condo For Sale\n")
	writeFile(t, filepath.Join(dir, "sf_housing", "run_02.csv"),
		"address,facts and features,price,title,url\n"+
			"3 Main St,\"2 bd, 1 ba, 900 sqft\",$999K,House For Sale,https://example.com/3\n")
	writeFile(t, filepath.Join(dir, "sf_housing", "nested", "run_03.csv"),
		"address,facts and features,price,title\n"+
			"1 Main St,\"3 bd, 2 ba, 1,500 sqft\",$1.2M,Condo For Sale\n"+
			"4 Main St,,N/A,Auction\n")
	writeFile(t, filepath.Join(dir, "sf_housing", "README.txt"), "not a csv")
}

func TestAggregatorLoadMergesAndDedupes(t *testing.T) {
	dir := t.TempDir()
	seedScrapeRuns(t, dir)

	ds, err := newTestAggregator().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"address", "facts and features", "price", "title", "url"}, ds.Columns)
	require.Equal(t, 4, ds.Len())

	// lexical walk: nested/run_03.csv sorts before run_01.csv
	assert.Equal(t, []string{"1 Main St", "3 bd, 2 ba, 1,500 sqft", "$1.2M", "Condo For Sale", ""}, ds.Rows[0])
	assert.Equal(t, "4 Main St", ds.Rows[1][0])
	assert.Equal(t, "2 Main St", ds.Rows[2][0])
	assert.Equal(t, []string{"3 Main St", "2 bd, 1 ba, 900 sqft", "$999K", "House For Sale", "https://example.com/3"}, ds.Rows[3])

	merged, err := storage.ReadCSVFile(filepath.Join(dir, "all_data.csv"))
	require.NoError(t, err)
	assert.Equal(t, ds.Columns, merged.Columns)
	assert.Equal(t, ds.Rows, merged.Rows)
}

func TestAggregatorLoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	seedScrapeRuns(t, dir)
	agg := newTestAggregator()

	first, err := agg.Load(dir)
	require.NoError(t, err)
	second, err := agg.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregatorSkipsMergedOutput(t *testing.T) {
	dir := t.TempDir()
	seedScrapeRuns(t, dir)
	writeFile(t, filepath.Join(dir, "all_data.csv"), "stale,columns\nx,y\n")

	paths, err := newTestAggregator().Discover(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	for _, p := range paths {
		assert.NotEqual(t, "all_data.csv", filepath.Base(p))
	}
}

func TestAggregatorNoSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data.zip"), "PK")

	ds, err := newTestAggregator().Load(dir)
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, ErrNoSourceFiles)
	assert.NoFileExists(t, filepath.Join(dir, "all_data.csv"))
}

func TestAggregatorMissingDir(t *testing.T) {
	_, err := newTestAggregator().Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestAggregatorMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.csv"), "a,b\n1,2,3\n")

	_, err := newTestAggregator().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 fields, saw 3")
}

func TestConcatUnionsColumns(t *testing.T) {
	ds := Concat([]*storage.CSVTable{
		{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}},
		{Columns: []string{"c", "a"}, Rows: [][]string{{"3", "4"}}},
	})

	assert.Equal(t, []string{"a", "b", "c"}, ds.Columns)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"4", "", "3"}}, ds.Rows)
}

func TestDropDuplicatesKeepsFirst(t *testing.T) {
	rows := [][]string{{"a", "1"}, {"b", "2"}, {"a", "1"}, {"a", "2"}, {"b", "2"}}
	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}, {"a", "2"}}, DropDuplicates(rows))
	assert.Empty(t, DropDuplicates(nil))
}

func TestAggregatorLoadKeepsBareQuotes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "run.csv"),
		"address,facts and features,price,title\n"+
			"1 Main St,\"3 bd, 2 ba\",$1.2M,Condo For Sale\n"+
			"2 Main St 12\" Unit,Studio,$850K,Condo For Sale\n")

	ds, err := newTestAggregator().Load(dir)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"2 Main St 12\" Unit", "Studio", "$850K", "Condo For Sale"}, ds.Rows[1])

	merged, err := storage.ReadCSVFile(filepath.Join(dir, "all_data.csv"))
	require.NoError(t, err)
	assert.Equal(t, ds.Rows, merged.Rows)
}
