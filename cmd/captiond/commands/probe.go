package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/norm/captiond/internal/config"
	"github.com/norm/captiond/internal/oracle"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which summarization model the daemon would use",
	Long: `Probes the configured model candidates in order and prints the first
one that answers. This is the same resolution the run command performs
at startup.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		client, err := oracle.NewClient(&oracle.Config{
			Model:          cfg.Model,
			APIKey:         cfg.APIKey,
			WindowDuration: cfg.WindowDuration,
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		candidates := cfg.ModelCandidates
		if cfg.Model != "" {
			candidates = []string{cfg.Model}
		}

		model, err := oracle.ResolveModel(ctx, client, candidates)
		if err != nil {
			return err
		}

		fmt.Println(model)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
