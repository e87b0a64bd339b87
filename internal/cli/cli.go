//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-etl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/pkg/version"
)

var (
	// Global flags
	cfgFile      string
	input        string
	output       string
	outputFormat string
	connection   string
	logLevel     string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-etl",
		Short: "Batch ETL from song catalog and event logs into a star schema",
		Long: `pgedge-etl reads a song catalog and a music streaming event log as JSON,
either from a local directory or an S3 bucket, and builds a dimensional
model from them: the songs, artists, users and time dimensions and the
songplays fact table.

Tables are written as partitioned Parquet (locally or to S3) or loaded
into PostgreSQL. Every run overwrites its output, so a failed run can
simply be repeated.

Running pgedge-etl without a subcommand is the same as 'pgedge-etl run'.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		Args:          cobra.NoArgs,
		RunE:          runRun,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&input, "input", "",
		"dataset root: local directory or s3:// URI")
	rootCmd.PersistentFlags().StringVar(&output, "output", "",
		"parquet output root: local directory or s3:// URI")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", "",
		"output format (parquet, postgres)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	addRunFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if input != "" {
		cfg.Input = input
	}
	if output != "" {
		cfg.Output = output
	}
	if outputFormat != "" {
		cfg.OutputFormat = outputFormat
	}
	if connection != "" {
		cfg.Postgres.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
