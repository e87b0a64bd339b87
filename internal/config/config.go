//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-etl.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for pgedge-etl.
type Config struct {
	// Input is the dataset root: a local directory or s3:// URI holding
	// song_data/ and log_data/.
	Input string `mapstructure:"input"`

	// Output is the parquet output root: a local directory or s3:// URI.
	Output string `mapstructure:"output"`

	// OutputFormat selects the sink (parquet, postgres).
	OutputFormat string `mapstructure:"output_format"`

	// SongPattern is the glob of song catalog files below Input.
	SongPattern string `mapstructure:"song_pattern"`

	// LogPattern is the glob of event log files below Input.
	LogPattern string `mapstructure:"log_pattern"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is console or json.
	LogFormat string `mapstructure:"log_format"`

	AWS      AWSConfig      `mapstructure:"aws"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Join     JoinConfig     `mapstructure:"join"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Reader   ReaderConfig   `mapstructure:"reader"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// AWSConfig holds S3 access settings. Empty credentials fall back to the
// default AWS credential chain.
type AWSConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`

	// EndpointURL points at S3 compatible storage such as MinIO.
	EndpointURL    string `mapstructure:"endpoint_url"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// PostgresConfig holds settings for the postgres output format.
type PostgresConfig struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// Schema receives the output tables.
	Schema string `mapstructure:"schema"`
}

// JoinConfig controls how plays are matched to the catalog.
type JoinConfig struct {
	// Policy is inner (drop unmatched plays) or left (keep them with
	// null song and artist).
	Policy string `mapstructure:"policy"`

	// KeyMatch is normalized or exact.
	KeyMatch string `mapstructure:"key_match"`
}

// SinkConfig holds parquet output settings.
type SinkConfig struct {
	// Compression is snappy, gzip or none.
	Compression string `mapstructure:"compression"`

	// MaxRowsPerFile splits partitions into several files.
	MaxRowsPerFile int `mapstructure:"max_rows_per_file"`
}

// ReaderConfig holds input settings.
type ReaderConfig struct {
	// Concurrency is the number of files fetched in parallel.
	Concurrency int `mapstructure:"concurrency"`
}

// MetricsConfig holds metrics output settings.
type MetricsConfig struct {
	// Textfile is a path for node exporter textfile output. Empty
	// disables it.
	Textfile string `mapstructure:"textfile"`
}

// GenerateConfig holds configuration for sample data generation.
type GenerateConfig struct {
	// Out is the directory receiving the generated dataset.
	Out string `mapstructure:"out"`

	Songs  int `mapstructure:"songs"`
	Users  int `mapstructure:"users"`
	Events int `mapstructure:"events"`
	Days   int `mapstructure:"days"`

	// Seed makes generation reproducible. Zero picks a random seed.
	Seed int64 `mapstructure:"seed"`

	// Profile is the listening activity profile spreading events over
	// the day (evening, commuter, global, flat).
	Profile string `mapstructure:"profile"`

	// Timezone for profile calculations (default: UTC).
	Timezone string `mapstructure:"timezone"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Input:        "s3a://udacity-dend/",
		Output:       "output",
		OutputFormat: "parquet",
		SongPattern:  "song_data/*/*/*/*.json",
		LogPattern:   "log_data/*.json",
		LogLevel:     "info",
		LogFormat:    "console",
		AWS: AWSConfig{
			Region: "us-west-2",
		},
		Postgres: PostgresConfig{
			Schema: "public",
		},
		Join: JoinConfig{
			Policy:   "inner",
			KeyMatch: "normalized",
		},
		Sink: SinkConfig{
			Compression:    "snappy",
			MaxRowsPerFile: 1000000,
		},
		Reader: ReaderConfig{
			Concurrency: 16,
		},
		Generate: GenerateConfig{
			Out:     "sample_data",
			Songs:   70,
			Users:   100,
			Events:  8000,
			Days:    30,
			Profile: "evening",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-etl.yaml
// 3. ~/.config/pgedge-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-etl")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-etl"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.SongPattern == "" || c.LogPattern == "" {
		return fmt.Errorf("song_pattern and log_pattern are required")
	}
	if c.AWS.AccessKeyID != "" && c.AWS.SecretAccessKey == "" {
		return fmt.Errorf("aws.secret_access_key is required with aws.access_key_id")
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be 'console' or 'json'")
	}
	if c.Reader.Concurrency < 1 {
		return fmt.Errorf("reader.concurrency must be at least 1")
	}
	return nil
}

// ValidateRun checks configuration required for run command.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.OutputFormat {
	case "parquet":
		if c.Output == "" {
			return fmt.Errorf("output is required for parquet output")
		}
	case "postgres":
		if c.Postgres.Connection == "" {
			return fmt.Errorf("postgres.connection is required for postgres output")
		}
	default:
		return fmt.Errorf("output_format must be 'parquet' or 'postgres'")
	}
	if c.Join.Policy != "inner" && c.Join.Policy != "left" {
		return fmt.Errorf("join.policy must be 'inner' or 'left'")
	}
	if c.Join.KeyMatch != "normalized" && c.Join.KeyMatch != "exact" {
		return fmt.Errorf("join.key_match must be 'normalized' or 'exact'")
	}
	switch c.Sink.Compression {
	case "snappy", "gzip", "none":
	default:
		return fmt.Errorf("sink.compression must be 'snappy', 'gzip' or 'none'")
	}
	if c.Sink.MaxRowsPerFile < 1 {
		return fmt.Errorf("sink.max_rows_per_file must be at least 1")
	}
	return nil
}

// ValidateGenerate checks configuration required for generate command.
func (c *Config) ValidateGenerate() error {
	if c.Generate.Out == "" {
		return fmt.Errorf("output directory is required for generate")
	}
	if c.Generate.Songs < 1 || c.Generate.Users < 1 {
		return fmt.Errorf("songs and users must be at least 1")
	}
	if c.Generate.Events < 0 {
		return fmt.Errorf("events must be non-negative")
	}
	if c.Generate.Days < 1 {
		return fmt.Errorf("days must be at least 1")
	}
	if c.Generate.Profile == "" {
		return fmt.Errorf("profile is required for generate")
	}
	return nil
}
