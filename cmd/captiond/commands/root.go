// Package commands implements the captiond CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "captiond",
	Short: "Caption windowing and summarization daemon",
	Long: `captiond ingests a stream of scene captions, groups them into
fixed-duration time windows, and summarizes each completed window with
Claude. Raw captions and window summaries are available as a live view
while running and as a final report at shutdown.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file path")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
