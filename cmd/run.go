package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sf-housing/pipeline"
	"sf-housing/services"
	"sf-housing/storage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download, merge and clean the dataset, export it and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(appConfig, logger)
		cleaned, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}

		listings := cleaned.Listings
		writers, pg, err := openWriters(p.RunID())
		if err != nil {
			return err
		}
		defer closeWriters(writers)

		for _, w := range writers {
			if err := w.Write(cleaned); err != nil {
				return err
			}
		}

		if pg != nil {
			stored, err := pg.FetchAll()
			if err != nil {
				logger.Error("Failed to fetch listings from DB for summary: %v", err)
			} else {
				listings = stored
			}
		}

		insights := services.NewInsightService(logger)
		insights.Print(os.Stdout, insights.Generate(listings))
		return nil
	},
}

// openWriters builds every export sink enabled in the config. The Postgres
// writer is also returned on its own so the summary can be read back from it.
func openWriters(runID string) ([]storage.ListingWriter, *storage.PostgresWriter, error) {
	var writers []storage.ListingWriter
	var pg *storage.PostgresWriter

	if appConfig.CSVOutputPath != "" {
		writers = append(writers, storage.NewCSVListingWriter(appConfig.CSVOutputPath))
	}
	if appConfig.ParquetOutputPath != "" {
		writers = append(writers, storage.NewParquetWriter(appConfig.ParquetOutputPath))
	}
	if appConfig.XLSXOutputPath != "" {
		writers = append(writers, storage.NewXLSXWriter(appConfig.XLSXOutputPath))
	}
	if appConfig.DuckDBPath != "" {
		dw, err := storage.NewDuckDBWriter(appConfig.DuckDBPath, runID)
		if err != nil {
			closeWriters(writers)
			return nil, nil, err
		}
		writers = append(writers, dw)
	}
	if appConfig.PostgresEnabled {
		var err error
		pg, err = storage.NewPostgresWriter(appConfig.DSN(), runID)
		if err != nil {
			closeWriters(writers)
			return nil, nil, fmt.Errorf("%w (is PostgreSQL running?)", err)
		}
		writers = append(writers, pg)
	}

	for _, w := range writers {
		logger.Debug("[export] Enabled %T", w)
	}
	return writers, pg, nil
}

func closeWriters(writers []storage.ListingWriter) {
	for _, w := range writers {
		if err := w.Close(); err != nil {
			logger.Warn("[export] Close %T: %v", w, err)
		}
	}
}
