//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-etl/internal/db"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

const (
	// DefaultSchema is used when no schema is configured.
	DefaultSchema = "public"

	postgresMaxConns = 4
)

// Postgres writes tables into a PostgreSQL schema.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
	owned  bool
}

// NewPostgres connects to connString and writes into schema.
func NewPostgres(ctx context.Context, connString, schema string) (*Postgres, error) {
	if connString == "" {
		return nil, fmt.Errorf("postgres connection string is required")
	}
	pool, err := db.ConnectWithMaxConns(ctx, connString, postgresMaxConns)
	if err != nil {
		return nil, err
	}
	p := NewPostgresWithPool(pool, schema)
	p.owned = true
	return p, nil
}

// NewPostgresWithPool writes through an existing pool. Close does not
// close the pool.
func NewPostgresWithPool(pool *pgxpool.Pool, schema string) *Postgres {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Postgres{pool: pool, schema: schema}
}

// Pool returns the connection pool.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// Schema returns the target schema.
func (p *Postgres) Schema() string {
	return p.schema
}

// Write implements Sink. The table is created when missing, then
// truncated and loaded with COPY in a single transaction.
func (p *Postgres) Write(ctx context.Context, t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	start := time.Now()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ident := pgx.Identifier{p.schema, t.Name}
	stmts := []string{
		"CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{p.schema}.Sanitize(),
		createTableSQL(ident, t.Columns),
		"TRUNCATE " + ident.Sanitize(),
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare table %s: %w", t.Name, err)
		}
	}

	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}

	copied, err := tx.CopyFrom(ctx, ident, names, pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
		return t.Rows[i].Values(), nil
	}))
	if err != nil {
		return fmt.Errorf("failed to copy rows into %s: %w", t.Name, err)
	}

	if len(t.PartitionBy) > 0 {
		if _, err := tx.Exec(ctx, createIndexSQL(p.schema, t)); err != nil {
			return fmt.Errorf("failed to create partition index on %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", t.Name, err)
	}

	logging.Debug().
		Str("table", t.Name).
		Str("schema", p.schema).
		Int64("rows", copied).
		Dur("duration", time.Since(start)).
		Msg("Loaded table")

	return nil
}

// Close implements Sink.
func (p *Postgres) Close() error {
	if p.owned {
		p.pool.Close()
	}
	return nil
}

func columnSQLType(t model.ColumnType) string {
	switch t {
	case model.Int32:
		return "INTEGER"
	case model.Int64:
		return "BIGINT"
	case model.Float64:
		return "DOUBLE PRECISION"
	case model.Timestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func createTableSQL(ident pgx.Identifier, cols []model.Column) string {
	var defs, pk []string
	for _, c := range cols {
		def := pgx.Identifier{c.Name}.Sanitize() + " " + columnSQLType(c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
		if c.PrimaryKey {
			pk = append(pk, pgx.Identifier{c.Name}.Sanitize())
		}
	}
	if len(pk) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", ident.Sanitize(), strings.Join(defs, ",\n    "))
}

func createIndexSQL(schema string, t *Table) string {
	cols := make([]string, len(t.PartitionBy))
	for i, c := range t.PartitionBy {
		cols[i] = pgx.Identifier{c}.Sanitize()
	}
	index := pgx.Identifier{t.Name + "_" + strings.Join(t.PartitionBy, "_") + "_idx"}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		index.Sanitize(), pgx.Identifier{schema, t.Name}.Sanitize(), strings.Join(cols, ", "))
}
