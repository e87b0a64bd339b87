package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-etl/internal/db"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last run recorded in PostgreSQL",
	Long: `Show the metadata of the last successful run that loaded tables into
PostgreSQL: run ID, version, input, completion time and per-table row
counts.

Example:
  pgedge-etl status --connection "postgres://..."`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&runSchema, "schema", "",
		"PostgreSQL schema holding the tables")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if runSchema != "" {
		cfg.Postgres.Schema = runSchema
	}
	if cfg.Postgres.Connection == "" {
		return fmt.Errorf("postgres.connection is required for status")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Postgres.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	exists, err := db.MetadataExists(ctx, pool, cfg.Postgres.Schema)
	if err != nil {
		return fmt.Errorf("failed to check metadata: %w", err)
	}
	if !exists {
		return fmt.Errorf("no run recorded in schema %q; run 'pgedge-etl run --output-format postgres' first",
			cfg.Postgres.Schema)
	}

	meta, err := db.GetAllMetadata(ctx, pool, cfg.Postgres.Schema)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Printf("Last run in schema %s:\n", cfg.Postgres.Schema)
	for _, k := range keys {
		cmd.Printf("  %-20s %s\n", k, meta[k])
	}
	return nil
}
