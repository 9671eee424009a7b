package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"sf-housing/config"
	"sf-housing/utils"
)

var (
	// Flags bound in init()
	cfgFile     string
	dataDir     string
	datasetURL  string
	debug       bool
	keepStaging bool

	// Populated in PersistentPreRunE
	appConfig *config.Config
	logger    *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sf-housing",
	Short: "Download, merge and clean the SF housing listings dataset.",
	Long: `sf-housing downloads the zipped SF listings scrape, merges every CSV file in it
into one deduplicated table and derives price, bed, bath, sqft and property_type
from the raw text columns.

The primary command is 'run'. 'fetch' and 'merge' run single stages and 'parse'
applies one field parser to a string.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfgFile != "" {
			if err := cfg.LoadFile(cfgFile); err != nil {
				return err
			}
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		appConfig = cfg
		logger = utils.NewLogger()
		logger.SetDebug(cfg.Debug)
		logger.Debug("[config] %+v", cfg.Redacted())
		return nil
	},
}

// applyFlags lets explicitly set flags win over env and file values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("url") {
		cfg.DatasetURL = datasetURL
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	if flags.Changed("keep-staging") {
		cfg.KeepStaging = keepStaging
	}
}

// Execute runs the root command and exits non-zero on error.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("%v", err)
		} else {
			fmt.Fprintf(os.Stderr, "sf-housing: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file layered over env vars")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./tmp", "Staging directory for the archive and extracted files")
	rootCmd.PersistentFlags().StringVar(&datasetURL, "url", config.DefaultDatasetURL, "Dataset archive URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&keepStaging, "keep-staging", false, "Do not remove the staging directory after a run")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(parseCmd)

	rootCmd.Version = "0.1.0"
}
