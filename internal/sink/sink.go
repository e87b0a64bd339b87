//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sink persists output tables. Every write replaces the previous
// content of the named table.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-etl/internal/model"
	"github.com/pgEdge/pgedge-etl/internal/objectstore"
)

// ErrUnknownColumn is returned when a partition column is not part of the
// table schema.
var ErrUnknownColumn = errors.New("unknown column")

// Output formats.
const (
	FormatParquet  = "parquet"
	FormatPostgres = "postgres"
)

// Table is an output table ready to be written.
type Table struct {
	Name        string
	Columns     []model.Column
	PartitionBy []string
	Rows        []model.Row
}

// NewTable wraps typed rows as a Table.
func NewTable[T model.Row](name string, columns []model.Column, partitionBy []string, rows []T) *Table {
	out := make([]model.Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return &Table{Name: name, Columns: columns, PartitionBy: partitionBy, Rows: out}
}

// Validate checks the table name and partition columns.
func (t *Table) Validate() error {
	if t.Name == "" || strings.ContainsAny(t.Name, `/\.`) {
		return fmt.Errorf("invalid table name %q", t.Name)
	}
	for _, name := range t.PartitionBy {
		if model.ColumnIndex(t.Columns, name) < 0 {
			return fmt.Errorf("%w: partition column %s of table %s", ErrUnknownColumn, name, t.Name)
		}
	}
	return nil
}

// partitionIndexes returns the column positions of the partition columns.
func (t *Table) partitionIndexes() []int {
	idx := make([]int, len(t.PartitionBy))
	for i, name := range t.PartitionBy {
		idx[i] = model.ColumnIndex(t.Columns, name)
	}
	return idx
}

// Sink writes tables with overwrite semantics.
type Sink interface {
	// Write replaces the content of t.Name with t.Rows.
	Write(ctx context.Context, t *Table) error

	// Close releases resources held by the sink.
	Close() error
}

// Options selects and configures a sink.
type Options struct {
	// Format is parquet or postgres.
	Format string

	// Output is a local directory or s3:// URI for parquet output.
	Output string

	Compression    string
	MaxRowsPerFile int

	S3 objectstore.Config

	// PostgresConn and PostgresSchema configure the postgres sink.
	PostgresConn   string
	PostgresSchema string
}

// Open creates the sink described by opts.
func Open(ctx context.Context, opts Options) (Sink, error) {
	switch opts.Format {
	case FormatParquet, "":
		popts := ParquetOptions{Compression: opts.Compression, MaxRowsPerFile: opts.MaxRowsPerFile}
		if objectstore.IsS3(opts.Output) {
			loc, err := objectstore.ParseLocation(opts.Output)
			if err != nil {
				return nil, err
			}
			client, err := objectstore.NewClient(ctx, opts.S3)
			if err != nil {
				return nil, fmt.Errorf("failed to create s3 client: %w", err)
			}
			return NewS3(client, loc, popts)
		}
		return NewParquet(opts.Output, popts)
	case FormatPostgres:
		return NewPostgres(ctx, opts.PostgresConn, opts.PostgresSchema)
	default:
		return nil, fmt.Errorf("unknown output format: %s", opts.Format)
	}
}
