//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dataset provides an in-memory table value and the relational
// operators the transformations are composed from. Operators never modify
// their input and always produce rows in a deterministic order.
package dataset

import "sort"

// Table is a named, ordered collection of rows.
type Table[T any] struct {
	Name string
	Rows []T
}

// New creates a table from rows.
func New[T any](name string, rows []T) *Table[T] {
	return &Table[T]{Name: name, Rows: rows}
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Filter keeps the rows for which keep returns true.
func Filter[T any](t *Table[T], keep func(T) bool) *Table[T] {
	out := make([]T, 0, t.Len())
	for _, row := range t.Rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return New(t.Name, out)
}

// Project maps every row through fn. Rows for which fn returns false are
// dropped.
func Project[T, U any](t *Table[T], name string, fn func(T) (U, bool)) *Table[U] {
	out := make([]U, 0, t.Len())
	for _, row := range t.Rows {
		if u, ok := fn(row); ok {
			out = append(out, u)
		}
	}
	return New(name, out)
}

// Prefer reports whether candidate should replace current as the
// surviving row of a key.
type Prefer[T any] func(candidate, current T) bool

// KeepFirst keeps the first row seen for a key.
func KeepFirst[T any](_, _ T) bool { return false }

// KeepLast keeps the last row seen for a key.
func KeepLast[T any](_, _ T) bool { return true }

// DedupeBy keeps one row per key. The surviving row is chosen by prefer;
// output rows appear in the order their key was first seen.
func DedupeBy[T any, K comparable](t *Table[T], key func(T) K, prefer Prefer[T]) *Table[T] {
	pos := make(map[K]int, t.Len())
	out := make([]T, 0, t.Len())
	for _, row := range t.Rows {
		k := key(row)
		if i, ok := pos[k]; ok {
			if prefer(row, out[i]) {
				out[i] = row
			}
			continue
		}
		pos[k] = len(out)
		out = append(out, row)
	}
	return New(t.Name, out)
}

// Index builds a lookup from key to a single row. Rows for which key
// returns false are not indexed. Collisions are resolved with prefer.
func Index[T any, K comparable](t *Table[T], key func(T) (K, bool), prefer Prefer[T]) map[K]T {
	idx := make(map[K]T, t.Len())
	for _, row := range t.Rows {
		k, ok := key(row)
		if !ok {
			continue
		}
		if cur, exists := idx[k]; exists && !prefer(row, cur) {
			continue
		}
		idx[k] = row
	}
	return idx
}

// JoinKind selects what happens to left rows without a match.
type JoinKind int

const (
	// InnerJoin drops unmatched left rows.
	InnerJoin JoinKind = iota
	// LeftJoin keeps unmatched left rows, emitted with a nil right side.
	LeftJoin
)

// Join correlates each left row with at most one indexed right row.
// Output order follows the left table.
func Join[L, R, O any, K comparable](
	left *Table[L],
	index map[K]R,
	key func(L) (K, bool),
	kind JoinKind,
	name string,
	emit func(L, *R) O,
) *Table[O] {
	out := make([]O, 0, left.Len())
	for _, l := range left.Rows {
		var match *R
		if k, ok := key(l); ok {
			if r, found := index[k]; found {
				match = &r
			}
		}
		if match == nil && kind == InnerJoin {
			continue
		}
		out = append(out, emit(l, match))
	}
	return New(name, out)
}

// SortStable returns a copy of t sorted with less, keeping the relative
// order of equal rows.
func SortStable[T any](t *Table[T], less func(a, b T) bool) *Table[T] {
	rows := make([]T, t.Len())
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	return New(t.Name, rows)
}
