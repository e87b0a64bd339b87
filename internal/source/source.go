//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source reads raw JSON records from a local directory tree or
// from S3 compatible storage.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pgEdge/pgedge-etl/internal/objectstore"
)

// ErrNoMatch is returned when a pattern matches no input file.
var ErrNoMatch = errors.New("pattern matched no files")

const defaultConcurrency = 8

// Record is one raw JSON value together with its origin.
type Record struct {
	Path  string
	Index int
	Data  json.RawMessage
}

// Source reads every record of the files matching a glob pattern. The
// pattern is relative to the source root and uses forward slashes.
// Records are returned sorted by path, then by offset within the file.
type Source interface {
	Read(ctx context.Context, pattern string) ([]Record, error)
	Root() string
}

// Options configures a source.
type Options struct {
	Concurrency int
	S3          objectstore.Config
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return defaultConcurrency
	}
	return o.Concurrency
}

// Open returns the source for root. s3:// roots are read with the S3
// client, anything else is treated as a local directory.
func Open(ctx context.Context, root string, opts Options) (Source, error) {
	if objectstore.IsS3(root) {
		loc, err := objectstore.ParseLocation(root)
		if err != nil {
			return nil, err
		}
		client, err := objectstore.NewClient(ctx, opts.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return NewS3(client, loc, opts.concurrency()), nil
	}
	return NewFileSystem(root, opts.concurrency()), nil
}

// splitRecords splits the content of one file into JSON values. A file
// may hold a single object or a stream of whitespace separated objects.
// Syntax errors are fatal for the whole file.
func splitRecords(path string, r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	var records []Record
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid json in %s at record %d: %w", path, len(records), err)
		}
		records = append(records, Record{
			Path:  path,
			Index: len(records),
			Data:  bytes.Clone(raw),
		})
	}
}
