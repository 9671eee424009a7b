package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sf-housing/config"
	"sf-housing/models"
	"sf-housing/services"
	"sf-housing/utils"
)

const runOne = "address,facts and features,price,title\n" +
	"1 Main St,\"3 bd, 2 ba, 1,500 sqft\",$1.2M,Condo For Sale\n" +
	"2 Main St,\"Studio, 1 ba, 500 sqft\",$850K,Condo For Sale\n"

const runTwo = "address,facts and features,price,title\n" +
	"1 Main St,\"3 bd, 2 ba, 1,500 sqft\",$1.2M,Condo For Sale\n" +
	"3 Main St,\"2 ba, 4 bd, 2,000 sqft\",N/A,Unknown Type\n"

func archiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"sf_housing/run_01.csv": runOne,
		"sf_housing/run_02.csv": runTwo,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, url string) *config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.DataDir = filepath.Join(t.TempDir(), "tmp")
	cfg.DatasetURL = url
	cfg.MaxRetries = 1
	return cfg
}

func quietLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, io.Discard) }

func TestRunEndToEnd(t *testing.T) {
	srv := archiveServer(t)
	cfg := testConfig(t, srv.URL)

	cleaned, err := New(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, cleaned.Len())
	assert.Equal(t, []string{"address", "facts and features", "price", "title"}, cleaned.Columns)

	first := cleaned.Listings[0]
	assert.Equal(t, 1200000.0, *first.Price)
	assert.Equal(t, 3.0, *first.Bed)
	assert.Equal(t, 2.0, *first.Bath)
	assert.Equal(t, 1500.0, *first.Sqft)
	assert.Equal(t, models.PropertyTypeCondo, first.PropertyType)

	studio := cleaned.Listings[1]
	assert.Equal(t, 0.0, *studio.Bed)
	assert.Equal(t, 850000.0, *studio.Price)

	odd := cleaned.Listings[2]
	assert.Nil(t, odd.Price)
	assert.Nil(t, odd.Bed, "bd outside the first segment is not picked up")
	assert.Equal(t, 2.0, *odd.Bath)
	assert.Equal(t, 2000.0, *odd.Sqft)
	assert.Equal(t, models.PropertyTypeNone, odd.PropertyType)

	assert.NoDirExists(t, cfg.DataDir, "staging dir is removed after a successful run")
}

func TestRunKeepStaging(t *testing.T) {
	srv := archiveServer(t)
	cfg := testConfig(t, srv.URL)
	cfg.KeepStaging = true

	_, err := New(cfg, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cfg.DataDir, "data.zip"))
	assert.FileExists(t, filepath.Join(cfg.DataDir, "all_data.csv"))
}

type stubFetcher struct {
	err   error
	files map[string]string
}

func (s stubFetcher) DownloadAndExtract(_ context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var paths []string
	for name, body := range s.files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, s.err
}

func TestRunLeavesStagingOnFailure(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid/data.zip")
	p := New(cfg, quietLogger()).WithFetcher(stubFetcher{files: map[string]string{"notes.txt": "nothing"}})

	cleaned, err := p.Run(context.Background())
	assert.Nil(t, cleaned)
	assert.ErrorIs(t, err, services.ErrNoSourceFiles)
	assert.DirExists(t, cfg.DataDir)
}

func TestRunPropagatesFetchError(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid/data.zip")
	boom := errors.New("network unreachable")
	p := New(cfg, quietLogger()).WithFetcher(stubFetcher{err: boom})

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.DirExists(t, cfg.DataDir)
}

func TestRunIDIsUnique(t *testing.T) {
	cfg := config.Load()
	a := New(cfg, quietLogger())
	b := New(cfg, quietLogger())
	assert.NotEqual(t, a.RunID(), b.RunID())
	assert.Len(t, a.RunID(), 36)
}
