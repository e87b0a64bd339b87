package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/db"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/metrics"
	"github.com/pgEdge/pgedge-etl/internal/objectstore"
	"github.com/pgEdge/pgedge-etl/internal/pipeline"
	"github.com/pgEdge/pgedge-etl/internal/sink"
	"github.com/pgEdge/pgedge-etl/internal/source"
	"github.com/pgEdge/pgedge-etl/internal/transform"
)

var (
	runSchema          string
	runJoinPolicy      string
	runKeyMatch        string
	runCompression     string
	runMaxRowsPerFile  int
	runConcurrency     int
	runMetricsTextfile string
	runDryRun          bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ETL job",
	Long: `Read the song catalog and the event log, build the dimensional
tables and write them to the configured output. The catalog tables (songs,
artists) are written before the event log is read; users, time and
songplays follow.

Join Policies:
  inner - plays without a catalog match are dropped (default)
  left  - unmatched plays are kept with null song_id and artist_id

Example:
  pgedge-etl run --input s3://udacity-dend/ --output s3://my-bucket/dloutput/
  pgedge-etl run --input ./sample_data --output ./output --join-policy left
  pgedge-etl run --input ./sample_data --output-format postgres --connection "postgres://..."`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
}

// addRunFlags registers the job flags on cmd. The root command shares
// them since it runs the job when called without a subcommand.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runSchema, "schema", "",
		"PostgreSQL schema receiving the tables (postgres output only)")
	cmd.Flags().StringVar(&runJoinPolicy, "join-policy", "",
		"join policy for unmatched plays: inner, left")
	cmd.Flags().StringVar(&runKeyMatch, "key-match", "",
		"catalog key matching: normalized, exact")
	cmd.Flags().StringVar(&runCompression, "compression", "",
		"parquet compression: snappy, gzip, none")
	cmd.Flags().IntVar(&runMaxRowsPerFile, "max-rows-per-file", 0,
		"maximum rows per parquet file")
	cmd.Flags().IntVar(&runConcurrency, "concurrency", 0,
		"number of input files fetched in parallel")
	cmd.Flags().StringVar(&runMetricsTextfile, "metrics-textfile", "",
		"write job metrics to this node exporter textfile")
	cmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"build every table but do not write any output")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if runSchema != "" {
		cfg.Postgres.Schema = runSchema
	}
	if runJoinPolicy != "" {
		cfg.Join.Policy = runJoinPolicy
	}
	if runKeyMatch != "" {
		cfg.Join.KeyMatch = runKeyMatch
	}
	if runCompression != "" {
		cfg.Sink.Compression = runCompression
	}
	if runMaxRowsPerFile > 0 {
		cfg.Sink.MaxRowsPerFile = runMaxRowsPerFile
	}
	if runConcurrency > 0 {
		cfg.Reader.Concurrency = runConcurrency
	}
	if runMetricsTextfile != "" {
		cfg.Metrics.Textfile = runMetricsTextfile
	}

	// Validate configuration
	if err := cfg.ValidateRun(); err != nil {
		return err
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runJob(ctx, cfg, runDryRun)
}

// runJob wires the collaborators described by c and executes one run.
func runJob(ctx context.Context, c *config.Config, dryRun bool) error {
	policy, err := transform.ParseJoinPolicy(c.Join.Policy)
	if err != nil {
		return err
	}
	match, err := transform.ParseKeyMatch(c.Join.KeyMatch)
	if err != nil {
		return err
	}

	s3cfg := objectstore.Config{
		AccessKeyID:     c.AWS.AccessKeyID,
		SecretAccessKey: c.AWS.SecretAccessKey,
		Region:          c.AWS.Region,
		EndpointURL:     c.AWS.EndpointURL,
		ForcePathStyle:  c.AWS.ForcePathStyle,
	}

	src, err := source.Open(ctx, c.Input, source.Options{
		Concurrency: c.Reader.Concurrency,
		S3:          s3cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}

	var snk sink.Sink
	if dryRun {
		snk = sink.NewMemory()
	} else {
		snk, err = sink.Open(ctx, sink.Options{
			Format:         c.OutputFormat,
			Output:         c.Output,
			Compression:    c.Sink.Compression,
			MaxRowsPerFile: c.Sink.MaxRowsPerFile,
			S3:             s3cfg,
			PostgresConn:   c.Postgres.Connection,
			PostgresSchema: c.Postgres.Schema,
		})
		if err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
	}
	defer func() {
		if err := snk.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close output")
		}
	}()

	jobMetrics := metrics.New()
	p, err := pipeline.New(pipeline.Env{
		Source:      src,
		Sink:        snk,
		Metrics:     jobMetrics,
		SongPattern: c.SongPattern,
		LogPattern:  c.LogPattern,
		Joiner:      transform.Joiner{Policy: policy, Match: match},
	})
	if err != nil {
		return err
	}

	summary, runErr := p.Run(ctx)

	if c.Metrics.Textfile != "" {
		if err := jobMetrics.WriteTextfile(c.Metrics.Textfile); err != nil {
			logging.Warn().Err(err).
				Str("path", c.Metrics.Textfile).
				Msg("Failed to write metrics textfile")
		}
	}

	if runErr != nil {
		if ctx.Err() != nil {
			logging.Info().Msg("ETL run cancelled")
		} else {
			logging.Error().Err(runErr).Str("input", c.Input).Msg("ETL run failed")
		}
		return fmt.Errorf("etl run failed: %w", runErr)
	}

	summary.Print()

	if dryRun {
		logging.Info().Msg("Dry run complete, no output written")
		return nil
	}

	if pg, ok := snk.(*sink.Postgres); ok {
		err := db.SaveRunMetadata(ctx, pg.Pool(), pg.Schema(), db.RunMetadata{
			RunID:       summary.RunID,
			Input:       src.Root(),
			CompletedAt: time.Now(),
			Rows:        summary.Rows,
		})
		if err != nil {
			return fmt.Errorf("failed to save run metadata: %w", err)
		}
	}

	logging.Info().
		Str("run_id", summary.RunID).
		Str("output", outputName(c)).
		Msg("ETL run completed")
	return nil
}

func outputName(c *config.Config) string {
	if c.OutputFormat == sink.FormatPostgres {
		return "postgres schema " + c.Postgres.Schema
	}
	return c.Output
}
