package downloader

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sf-housing/config"
	"sf-housing/utils"
)

// Downloader fetches the listings archive and unpacks it into a staging directory.
type Downloader struct {
	url         string
	archiveName string
	client      *http.Client
	logger      *utils.Logger
	retry       *utils.RetryConfig
}

// New creates a Downloader from cfg. A zero DownloadTimeoutSec means the
// request blocks until it completes or fails.
func New(cfg *config.Config, logger *utils.Logger) *Downloader {
	return &Downloader{
		url:         cfg.DatasetURL,
		archiveName: cfg.ArchiveName,
		client:      &http.Client{Timeout: time.Duration(cfg.DownloadTimeoutSec) * time.Second},
		logger:      logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// WithRetry replaces the retry policy.
func (d *Downloader) WithRetry(r *utils.RetryConfig) *Downloader {
	d.retry = r
	return d
}

// DownloadAndExtract makes sure dir exists, downloads the archive into it and
// extracts every entry alongside it. It returns the paths of the extracted files.
func (d *Downloader) DownloadAndExtract(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("download: create dir %q: %w", dir, err)
	}

	archivePath := filepath.Join(dir, d.archiveName)
	d.logger.Info("downloading data...")
	err := d.retry.Do(ctx, "download-archive", func() error {
		return d.Download(ctx, archivePath)
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("extracting data to %s...", dir)
	files, err := Extract(archivePath, dir)
	if err != nil {
		return nil, err
	}
	d.logger.Info("Done.")
	return files, nil
}

// Download streams the archive to dest, replacing any existing file.
func (d *Downloader) Download(ctx context.Context, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return fmt.Errorf("download: build request for %s: %w", d.url, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: request %s: %w", d.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("download: bad status %q fetching %s: %s", resp.Status, d.url, strings.TrimSpace(string(snippet)))
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("download: create %q: %w", dest, err)
	}
	n, copyErr := io.Copy(out, resp.Body)
	if err := errors.Join(copyErr, out.Close()); err != nil {
		os.Remove(dest)
		return fmt.Errorf("download: write %q: %w", dest, err)
	}
	d.logger.Debug("[download] %s -> %s (%d bytes)", d.url, dest, n)
	return nil
}

// Extract unpacks every entry of the zip at archivePath into dir, keeping the
// archive's directory layout. Entries that would land outside dir are rejected.
func Extract(archivePath, dir string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("extract: open %q: %w", archivePath, err)
	}
	defer zr.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("extract: resolve %q: %w", dir, err)
	}

	var extracted []string
	for _, f := range zr.File {
		target := filepath.Join(root, f.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return extracted, fmt.Errorf("extract: entry %q escapes %q", f.Name, dir)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return extracted, fmt.Errorf("extract: create dir %q: %w", target, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return extracted, err
		}
		extracted = append(extracted, target)
	}
	return extracted, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("extract: create dir for %q: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("extract: open entry %q: %w", f.Name, err)
	}

	out, err := os.Create(target)
	if err != nil {
		rc.Close()
		return fmt.Errorf("extract: create %q: %w", target, err)
	}

	_, copyErr := io.Copy(out, rc)
	if err := errors.Join(copyErr, out.Close(), rc.Close()); err != nil {
		os.Remove(target)
		return fmt.Errorf("extract: write %q: %w", target, err)
	}
	return nil
}
