//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/pkg/version"
)

// MetadataTable is the key/value table describing the last run.
const MetadataTable = "etl_metadata"

// RunMetadata describes a completed run.
type RunMetadata struct {
	RunID       string
	Input       string
	CompletedAt time.Time
	Rows        map[string]int
}

// Entries flattens the metadata into key/value pairs.
func (m RunMetadata) Entries() map[string]string {
	entries := map[string]string{
		"run_id":       m.RunID,
		"version":      version.Short(),
		"input":        m.Input,
		"completed_at": m.CompletedAt.UTC().Format(time.RFC3339),
	}
	for table, n := range m.Rows {
		entries["rows."+table] = strconv.Itoa(n)
	}
	return entries
}

func createMetadataTableSQL(schema string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`, pgx.Identifier{schema, MetadataTable}.Sanitize())
}

// SaveRunMetadata replaces the stored metadata with m.
func SaveRunMetadata(ctx context.Context, pool *pgxpool.Pool, schema string, m RunMetadata) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Create table if it doesn't exist
	if _, err := tx.Exec(ctx, createMetadataTableSQL(schema)); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	table := pgx.Identifier{schema, MetadataTable}.Sanitize()
	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	for key, value := range m.Entries() {
		_, err := tx.Exec(ctx, `INSERT INTO `+table+` (key, value) VALUES ($1, $2)`, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit metadata: %w", err)
	}

	logging.Debug().
		Str("run_id", m.RunID).
		Msg("Saved run metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, schema, key string) (string, error) {
	var value string
	err := pool.QueryRow(ctx, `
        SELECT value FROM `+pgx.Identifier{schema, MetadataTable}.Sanitize()+` WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, pool *pgxpool.Pool, schema string) (map[string]string, error) {
	rows, err := pool.Query(ctx, `SELECT key, value FROM `+pgx.Identifier{schema, MetadataTable}.Sanitize())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, pool *pgxpool.Pool, schema string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_schema = $1 AND table_name = $2
        )
    `, schema, MetadataTable).Scan(&exists)
	return exists, err
}
