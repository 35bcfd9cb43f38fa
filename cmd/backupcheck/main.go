package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/commity/backupcheck/internal/check"
	"github.com/commity/backupcheck/internal/config"
	"github.com/commity/backupcheck/internal/metrics"
	"github.com/commity/backupcheck/internal/storage"
)

// Version information
const (
	Version   = "1.0.0"
	BuildDate = "2026-08-23"
)

func main() {
	cfg := &config.Config{}
	var showVersion bool
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:   "backupcheck",
		Short: "Monitoring check for backup freshness in an object-storage bucket",
		Long: `backupcheck inspects a bucket laid out as one folder per backup stream
and verifies that each stream's newest and oldest backups satisfy the
configured age and size thresholds. It prints one summary line and exits
with the usual monitoring codes: 0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN.`,
		Run: func(cmd *cobra.Command, args []string) {
			if showVersion {
				fmt.Printf("backupcheck version %s (built: %s)\n", Version, BuildDate)
				return
			}
			os.Exit(run(cfg, timeout))
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfg.BucketName, "bucketname", "", "Name of the bucket to check (required)")
	flags.StringVar(&cfg.FolderPrefix, "bucketfolder", "", "Only check folders whose name starts with this prefix")
	flags.IntVar(&cfg.MinFirstAgeHours, "minfirstage", 0, "Minimum age in hours for the oldest backup in each folder (0 = disabled)")
	flags.IntVar(&cfg.MaxLastAgeHours, "maxlastage", 0, "Maximum age in hours for the newest backup in each folder (0 = disabled)")
	flags.BoolVar(&cfg.CheckSize, "checksize", false, "Check the size of the newest backup against the folder average")
	flags.StringVar(&cfg.AWSProfile, "aws-profile", "default", "AWS credentials profile (s3 provider)")
	flags.StringVar(&cfg.S3Region, "s3-region", "", "AWS region override (s3 provider)")
	flags.StringVar(&cfg.S3Endpoint, "s3-endpoint", "", "Custom endpoint for S3-compatible stores")
	flags.StringVar(&cfg.StorageProvider, "storage-provider", "s3", "Storage provider: s3 or gcs")
	flags.StringVar(&cfg.GCSCredentialsFile, "gcs-credentials", "", "Service account JSON file (gcs provider)")
	flags.IntVar(&cfg.Concurrency, "concurrency", 4, "Folders evaluated in parallel")
	flags.BoolVar(&cfg.ListFiles, "listfiles", false, "Print one diagnostic line per folder for the newest backup")
	flags.StringVar(&cfg.MetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file after the run")
	flags.BoolVar(&cfg.Debug, "debug", false, "Enable debug output")
	flags.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall deadline for the run")
	flags.BoolVarP(&showVersion, "version", "v", false, "Show version information")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(check.SeverityUnknown.ExitCode())
	}
}

// run executes one check and returns the process exit code. It is the only
// place that maps failures to exit codes; the core never terminates the
// process itself.
func run(cfg *config.Config, timeout time.Duration) int {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	// stdout is reserved for the summary and diagnostic lines the
	// monitoring supervisor parses; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stdout, "UNKNOWN: %v\n", err)
		return check.SeverityUnknown.ExitCode()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Error("failed to create storage gateway", "error", err)
		fmt.Fprintf(os.Stdout, "CRITICAL: %v\n", err)
		return check.SeverityCritical.ExitCode()
	}

	runner := check.NewRunner(cfg, store, logger, os.Stdout)

	report, err := runner.Run(ctx)
	finishedAt := time.Now().Unix()
	if err != nil {
		metrics.RecordFailure(check.SeverityCritical, finishedAt)
		writeMetrics(cfg, logger)
		fmt.Fprintf(os.Stdout, "CRITICAL: %v\n", err)
		return check.SeverityCritical.ExitCode()
	}

	metrics.Record(report.Result, report.Severity, finishedAt)
	writeMetrics(cfg, logger)

	fmt.Fprintln(os.Stdout, report.Message)
	return report.Severity.ExitCode()
}

// writeMetrics exports the run metrics when a textfile path is configured.
// A write failure never changes the check result.
func writeMetrics(cfg *config.Config, logger *slog.Logger) {
	if cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logger.Warn("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
	}
}
