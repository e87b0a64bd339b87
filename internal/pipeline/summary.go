//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"time"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

// Tables lists the output tables in the order they are written.
var Tables = []string{
	model.TableSongs,
	model.TableArtists,
	model.TableUsers,
	model.TableTime,
	model.TableSongplays,
}

// DatasetStats counts the input records of one dataset.
type DatasetStats struct {
	Read    int
	Skipped int
}

// Summary describes a run.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Datasets map[string]DatasetStats
	Rows     map[string]int
	Stages   map[string]time.Duration

	// Plays is the number of timed song play events, Matched the number
	// of them that found a catalog entry.
	Plays   int
	Matched int
}

func newSummary(runID string, start time.Time) *Summary {
	return &Summary{
		RunID:     runID,
		StartedAt: start,
		Datasets:  make(map[string]DatasetStats),
		Rows:      make(map[string]int),
		Stages:    make(map[string]time.Duration),
	}
}

// Unmatched returns the number of plays without a catalog entry.
func (s *Summary) Unmatched() int {
	return s.Plays - s.Matched
}

// Print logs a final summary of the run.
func (s *Summary) Print() {
	logEvent := logging.Info().
		Str("run_id", s.RunID).
		Dur("duration", s.Duration).
		Int("plays", s.Plays).
		Int("matched", s.Matched).
		Int("unmatched", s.Unmatched())

	for _, name := range []string{DatasetSongs, DatasetLogs} {
		if st, ok := s.Datasets[name]; ok {
			logEvent = logEvent.
				Int(name+"_read", st.Read).
				Int(name+"_skipped", st.Skipped)
		}
	}

	logEvent.Msg("Final summary")

	// Print per-table statistics
	logging.Info().Msg("Per-table statistics:")
	for _, name := range Tables {
		rows, ok := s.Rows[name]
		if !ok {
			continue
		}
		logging.Info().
			Str("table", name).
			Int("rows", rows).
			Msg("")
	}
}
