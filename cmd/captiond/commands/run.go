package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/norm/captiond/internal/config"
	"github.com/norm/captiond/internal/eventlog"
	"github.com/norm/captiond/internal/oracle"
	"github.com/norm/captiond/internal/report"
	"github.com/norm/captiond/internal/source"
	"github.com/norm/captiond/internal/timeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the caption windowing daemon",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return runDaemon(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(parent context.Context, cfg *config.Config) error {
	events := eventlog.New(cfg.LogDir)

	orc, err := buildOracle(parent, cfg)
	if err != nil {
		return err
	}

	tl, err := timeline.New(timeline.Config{
		WindowDuration: cfg.WindowDuration,
		OracleTimeout:  cfg.OracleTimeout,
		Oracle:         orc,
		Events:         events,
	})
	if err != nil {
		return err
	}

	src, err := source.NewFileSource(cfg.CaptionsPath)
	if err != nil {
		return fmt.Errorf("captions source: %w", err)
	}
	defer src.Close()

	runner := timeline.NewRunner(tl, cfg.PollInterval, nil)
	reporter := report.New(tl)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("shutting down...")
		cancel()
	}()

	log.Printf("captiond: window=%v poll=%v captions=%s", cfg.WindowDuration, cfg.PollInterval, cfg.CaptionsPath)

	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		if err := runner.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("runner: %v", err)
		}
	}()

	sourceDone := make(chan struct{})
	go func() {
		defer close(sourceDone)
		if err := src.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("source: %v", err)
			if recErr := events.Record(eventlog.NewEvent(eventlog.EventTypeSourceError).WithError(err.Error())); recErr != nil {
				log.Printf("event log: %v", recErr)
			}
		}
	}()

	if cfg.LiveInterval > 0 {
		go liveViewLoop(ctx, reporter, cfg.LiveInterval)
	}

	for c := range src.Captions() {
		tl.Ingest(c)
	}

	// The caption stream ending (signal or source failure) ends the run.
	// The tick driver stops before Drain so only one path ever seals the
	// last window.
	cancel()
	<-runnerDone
	<-sourceDone
	tl.Drain()

	return writeFinalReport(reporter, cfg.ReportJSON)
}

// buildOracle wires the Claude client (resolving a model first when none
// is pinned) or falls back to the keyless heuristic.
func buildOracle(ctx context.Context, cfg *config.Config) (oracle.Oracle, error) {
	if cfg.APIKey == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
		log.Println("no API key configured, using heuristic summaries")
		return oracle.Heuristic{}, nil
	}

	client, err := oracle.NewClient(&oracle.Config{
		Model:          cfg.Model,
		MaxTokens:      cfg.MaxTokens,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		WindowDuration: cfg.WindowDuration,
		APIKey:         cfg.APIKey,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Model == "" {
		probeCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		model, err := oracle.ResolveModel(probeCtx, client, cfg.ModelCandidates)
		if err != nil {
			return nil, err
		}
		log.Printf("resolved summarization model: %s", model)
	}

	return client, nil
}

func liveViewLoop(ctx context.Context, reporter *report.Reporter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Println(reporter.LiveView())
		}
	}
}

func writeFinalReport(reporter *report.Reporter, asJSON bool) error {
	if asJSON {
		data, err := reporter.EncodeJSON()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	fmt.Print(reporter.RenderFinal())
	return nil
}
