//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

const (
	// SuccessMarker is written into a table directory once all data files
	// are complete.
	SuccessMarker = "_SUCCESS"

	defaultMaxRowsPerFile = 1_000_000
	writerParallelism     = 4
)

// ParquetOptions configures parquet output.
type ParquetOptions struct {
	// Compression is snappy, gzip or none. Empty means snappy.
	Compression string

	// MaxRowsPerFile splits large partitions over several files.
	MaxRowsPerFile int
}

func parseCompression(name string) (parquet.CompressionCodec, error) {
	switch name {
	case "", "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unknown compression: %s", name)
	}
}

// Parquet writes each table as a directory of parquet files, one
// sub-directory per partition.
type Parquet struct {
	root        string
	compression parquet.CompressionCodec
	maxRows     int
}

// NewParquet creates a parquet sink below dir.
func NewParquet(dir string, opts ParquetOptions) (*Parquet, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	codec, err := parseCompression(opts.Compression)
	if err != nil {
		return nil, err
	}
	maxRows := opts.MaxRowsPerFile
	if maxRows <= 0 {
		maxRows = defaultMaxRowsPerFile
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Parquet{root: dir, compression: codec, maxRows: maxRows}, nil
}

// TableDir returns the directory holding table name.
func (p *Parquet) TableDir(name string) string {
	return filepath.Join(p.root, name)
}

// Write implements Sink. The table is built in a staging directory and
// swapped into place with renames, so a failed write leaves the previous
// content untouched.
func (p *Parquet) Write(ctx context.Context, t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	start := time.Now()
	id := uuid.NewString()
	staging := filepath.Join(p.root, "."+t.Name+".staging-"+id)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	files, err := p.writeTable(ctx, staging, t)
	if err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, SuccessMarker), nil, 0o644); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("failed to write success marker: %w", err)
	}

	if err := swapDir(staging, p.TableDir(t.Name), filepath.Join(p.root, "."+t.Name+".old-"+id)); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}

	logging.Debug().
		Str("table", t.Name).
		Int("rows", len(t.Rows)).
		Int("files", files).
		Dur("duration", time.Since(start)).
		Msg("Wrote parquet table")

	return nil
}

// Close implements Sink.
func (p *Parquet) Close() error {
	return nil
}

func (p *Parquet) writeTable(ctx context.Context, dir string, t *Table) (int, error) {
	cols, colIdx := dataColumns(t)
	md := parquetSchema(cols)

	files := 0
	for _, part := range splitPartitions(t) {
		partDir := filepath.Join(dir, filepath.FromSlash(part.dir))
		if err := os.MkdirAll(partDir, 0o755); err != nil {
			return files, fmt.Errorf("failed to create partition directory: %w", err)
		}

		for n, off := 0, 0; off < len(part.rows); n, off = n+1, off+p.maxRows {
			if err := ctx.Err(); err != nil {
				return files, err
			}
			end := min(off+p.maxRows, len(part.rows))
			name := filepath.Join(partDir, fmt.Sprintf("part-%05d.parquet", n))
			if err := p.writeFile(name, md, cols, colIdx, part.rows[off:end]); err != nil {
				return files, fmt.Errorf("failed to write %s: %w", name, err)
			}
			files++
		}
	}
	return files, nil
}

func (p *Parquet) writeFile(name string, md []string, cols []model.Column, colIdx []int, rows []model.Row) error {
	fw, err := local.NewLocalFileWriter(name)
	if err != nil {
		return err
	}

	pw, err := writer.NewCSVWriter(md, fw, writerParallelism)
	if err != nil {
		fw.Close()
		return err
	}
	pw.CompressionType = p.compression

	for _, row := range rows {
		values := row.Values()
		rec := make([]interface{}, len(cols))
		for i, c := range cols {
			rec[i] = parquetValue(c.Type, values[colIdx[i]])
		}
		if err := pw.Write(rec); err != nil {
			fw.Close()
			return err
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

// parquetSchema returns the CSV writer metadata for cols. All columns
// are optional since the CSV writer encodes every value with a
// definition level.
func parquetSchema(cols []model.Column) []string {
	md := make([]string, len(cols))
	for i, c := range cols {
		var typ string
		switch c.Type {
		case model.String:
			typ = "type=BYTE_ARRAY, convertedtype=UTF8"
		case model.Int32:
			typ = "type=INT32"
		case model.Int64:
			typ = "type=INT64"
		case model.Float64:
			typ = "type=DOUBLE"
		case model.Timestamp:
			typ = "type=INT64, convertedtype=TIMESTAMP_MILLIS"
		}
		md[i] = fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", c.Name, typ)
	}
	return md
}

func parquetValue(typ model.ColumnType, v any) interface{} {
	if v == nil {
		return nil
	}
	if typ == model.Timestamp {
		if ts, ok := v.(time.Time); ok {
			return ts.UnixMilli()
		}
	}
	return v
}

// swapDir moves staging to target. An existing target is first renamed
// to backup and removed once the swap succeeded.
func swapDir(staging, target, backup string) error {
	hadTarget := false
	if _, err := os.Stat(target); err == nil {
		if err := os.Rename(target, backup); err != nil {
			return fmt.Errorf("failed to move previous table aside: %w", err)
		}
		hadTarget = true
	}

	if err := os.Rename(staging, target); err != nil {
		if hadTarget {
			_ = os.Rename(backup, target)
		}
		return fmt.Errorf("failed to move table into place: %w", err)
	}

	if hadTarget {
		if err := os.RemoveAll(backup); err != nil {
			logging.Warn().Err(err).Str("path", backup).Msg("Failed to remove previous table")
		}
	}
	return nil
}
