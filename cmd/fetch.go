package cmd

import (
	"github.com/spf13/cobra"

	"sf-housing/downloader"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and extract the archive into the staging directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := downloader.New(appConfig, logger).DownloadAndExtract(cmd.Context(), appConfig.DataDir)
		if err != nil {
			return err
		}
		logger.Info("[fetch] %d files extracted to %s", len(files), appConfig.DataDir)
		return nil
	},
}
