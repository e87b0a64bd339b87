//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the raw input records and the dimensional rows
// produced from them.
package model

import "errors"

// ErrMalformedRecord marks a record that cannot serve its role, for example
// an event without a timestamp. Such records are skipped, never fatal.
var ErrMalformedRecord = errors.New("malformed record")

// ColumnType is the logical type of an output column.
type ColumnType int

const (
	// String is a UTF-8 text column.
	String ColumnType = iota
	// Int32 is a 32-bit integer column.
	Int32
	// Int64 is a 64-bit integer column.
	Int64
	// Float64 is a double precision column.
	Float64
	// Timestamp is a UTC timestamp column. Values are time.Time.
	Timestamp
)

// String returns the type name.
func (t ColumnType) String() string {
	switch t {
	case String:
		return "string"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Column describes one column of an output table.
type Column struct {
	// Name is the column name as written by sinks.
	Name string

	// Type is the logical column type.
	Type ColumnType

	// Nullable reports whether Values may yield nil for this column.
	Nullable bool

	// PrimaryKey marks the natural key of a dimension table.
	PrimaryKey bool
}

// Row is implemented by every output row type. Values are returned in
// the order of the table's columns; a nil entry is a null.
type Row interface {
	Values() []any
}

// ColumnIndex returns the position of the named column, or -1.
func ColumnIndex(cols []Column, name string) int {
	for i, c := range cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}
