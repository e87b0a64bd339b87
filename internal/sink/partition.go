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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-etl/internal/model"
)

// DefaultPartition is the directory value used for null partition values.
const DefaultPartition = "__HIVE_DEFAULT_PARTITION__"

// partition is a group of rows sharing the same partition values.
type partition struct {
	dir  string
	rows []model.Row
}

// splitPartitions groups rows by their partition directory, keeping the
// order in which partitions are first seen.
func splitPartitions(t *Table) []*partition {
	if len(t.PartitionBy) == 0 {
		return []*partition{{dir: "", rows: t.Rows}}
	}

	idx := t.partitionIndexes()
	byDir := make(map[string]*partition)
	var order []*partition

	for _, row := range t.Rows {
		values := row.Values()
		dir := partitionDir(t.PartitionBy, idx, values)
		p, ok := byDir[dir]
		if !ok {
			p = &partition{dir: dir}
			byDir[dir] = p
			order = append(order, p)
		}
		p.rows = append(p.rows, row)
	}
	return order
}

// partitionDir formats col=value path segments.
func partitionDir(names []string, idx []int, values []any) string {
	segs := make([]string, len(names))
	for i, name := range names {
		segs[i] = escapePathName(name) + "=" + formatPartitionValue(values[idx[i]])
	}
	return strings.Join(segs, "/")
}

func formatPartitionValue(v any) string {
	switch x := v.(type) {
	case nil:
		return DefaultPartition
	case string:
		if x == "" {
			return DefaultPartition
		}
		return escapePathName(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return escapePathName(x.UTC().Format("2006-01-02 15:04:05"))
	default:
		return escapePathName(fmt.Sprint(x))
	}
}

// escapePathName percent-encodes characters that cannot appear in a
// partition directory name.
func escapePathName(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == 0x7f || strings.IndexByte(`"#%'*/:=?\[]^{|}<>`, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// dataColumns returns the columns stored inside data files, which are all
// columns except the partition columns, with their positions.
func dataColumns(t *Table) ([]model.Column, []int) {
	var cols []model.Column
	var idx []int
	for i, c := range t.Columns {
		partitioned := false
		for _, p := range t.PartitionBy {
			if p == c.Name {
				partitioned = true
				break
			}
		}
		if !partitioned {
			cols = append(cols, c)
			idx = append(idx, i)
		}
	}
	return cols, idx
}
