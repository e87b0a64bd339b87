package db

import (
	"strings"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-etl/pkg/version"
)

func TestRunMetadataEntries(t *testing.T) {
	m := RunMetadata{
		RunID:       "0b6e7a43-1f1e-4b52-8f6f-2f5b1b0c9a11",
		Input:       "s3://udacity-dend/",
		CompletedAt: time.Date(2018, 11, 12, 2, 37, 38, 0, time.UTC),
		Rows:        map[string]int{"songs": 71, "songplays": 6820},
	}

	entries := m.Entries()

	expected := map[string]string{
		"run_id":         m.RunID,
		"input":          "s3://udacity-dend/",
		"completed_at":   "2018-11-12T02:37:38Z",
		"version":        version.Short(),
		"rows.songs":     "71",
		"rows.songplays": "6820",
	}
	if len(entries) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(entries))
	}
	for k, v := range expected {
		if entries[k] != v {
			t.Errorf("Expected %s=%q, got %q", k, v, entries[k])
		}
	}
}

func TestCreateMetadataTableSQL(t *testing.T) {
	sql := createMetadataTableSQL("sparkify")
	if !strings.Contains(sql, `"sparkify"."etl_metadata"`) {
		t.Errorf("Expected quoted table name, got %s", sql)
	}
}

