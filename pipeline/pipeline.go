package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"sf-housing/config"
	"sf-housing/downloader"
	"sf-housing/models"
	"sf-housing/services"
	"sf-housing/utils"
)

// Fetcher acquires the raw listing files into a staging directory.
type Fetcher interface {
	DownloadAndExtract(ctx context.Context, dir string) ([]string, error)
}

// Pipeline downloads, merges and normalises the SF housing dataset.
type Pipeline struct {
	cfg        *config.Config
	logger     *utils.Logger
	runID      string
	fetcher    Fetcher
	aggregator *services.Aggregator
	cleaner    *services.Cleaner
}

// New wires a Pipeline from cfg. Every log line it emits carries a fresh run id.
func New(cfg *config.Config, logger *utils.Logger) *Pipeline {
	runID := uuid.NewString()
	l := logger.With("[run " + runID[:8] + "]")
	return &Pipeline{
		cfg:        cfg,
		logger:     l,
		runID:      runID,
		fetcher:    downloader.New(cfg, l),
		aggregator: services.NewAggregator(l, cfg.SourceExt, cfg.MergedFileName),
		cleaner:    services.NewCleaner(l),
	}
}

// WithFetcher replaces the archive fetcher.
func (p *Pipeline) WithFetcher(f Fetcher) *Pipeline {
	p.fetcher = f
	return p
}

// RunID identifies this pipeline run in logs and exported rows.
func (p *Pipeline) RunID() string { return p.runID }

// Fetch downloads and extracts the archive into the staging directory.
func (p *Pipeline) Fetch(ctx context.Context) error {
	_, err := p.fetcher.DownloadAndExtract(ctx, p.cfg.DataDir)
	return err
}

// Merge aggregates the staged files into one deduplicated dataset.
func (p *Pipeline) Merge() (*models.Dataset, error) {
	return p.aggregator.Load(p.cfg.DataDir)
}

// Normalize derives the typed fields for every row.
func (p *Pipeline) Normalize(ds *models.Dataset) *models.CleanDataset {
	return p.cleaner.Clean(ds)
}

// Cleanup removes the staging directory unless configured to keep it.
func (p *Pipeline) Cleanup() error {
	if p.cfg.KeepStaging {
		p.logger.Info("[pipeline] Keeping staging directory %s", p.cfg.DataDir)
		return nil
	}
	if err := os.RemoveAll(p.cfg.DataDir); err != nil {
		return fmt.Errorf("cleanup: remove %q: %w", p.cfg.DataDir, err)
	}
	return nil
}

// Run executes acquire, aggregate, normalize and cleanup in order and returns
// the cleaned dataset. On failure the staging directory is left in place.
func (p *Pipeline) Run(ctx context.Context) (*models.CleanDataset, error) {
	p.logger.Info("[pipeline] Starting, staging dir: %s", p.cfg.DataDir)

	if err := p.Fetch(ctx); err != nil {
		return nil, err
	}

	ds, err := p.Merge()
	if err != nil {
		return nil, err
	}

	cleaned := p.Normalize(ds)

	if err := p.Cleanup(); err != nil {
		return nil, err
	}

	p.logger.Info("[pipeline] Finished with %d listings", cleaned.Len())
	return cleaned, nil
}
