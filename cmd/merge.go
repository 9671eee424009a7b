package cmd

import (
	"github.com/spf13/cobra"

	"sf-housing/services"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [dir]",
	Short: "Merge and deduplicate the CSV files under a directory",
	Long: `Merge walks the directory (the staging directory by default) for CSV files,
concatenates them, drops duplicate rows and writes the merged table next to them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := appConfig.DataDir
		if len(args) == 1 {
			dir = args[0]
		}
		agg := services.NewAggregator(logger, appConfig.SourceExt, appConfig.MergedFileName)
		ds, err := agg.Load(dir)
		if err != nil {
			return err
		}
		logger.Info("[merge] %d rows x %d columns written to %s", ds.Len(), len(ds.Columns), agg.MergedPath(dir))
		return nil
	},
}
