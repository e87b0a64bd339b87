//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline runs the two stage ETL job: the song catalog is turned
// into the songs and artists tables, then the event log into the users,
// time and songplays tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-etl/internal/dataset"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/metrics"
	"github.com/pgEdge/pgedge-etl/internal/model"
	"github.com/pgEdge/pgedge-etl/internal/sink"
	"github.com/pgEdge/pgedge-etl/internal/source"
	"github.com/pgEdge/pgedge-etl/internal/transform"
)

// Dataset names used in summaries and metrics.
const (
	DatasetSongs = "song_data"
	DatasetLogs  = "log_data"
)

// Stage names.
const (
	StageCatalog = "catalog"
	StageEvents  = "events"
)

// Env holds everything a run depends on.
type Env struct {
	Source source.Source
	Sink   sink.Sink

	// Metrics is optional.
	Metrics *metrics.JobMetrics

	SongPattern string
	LogPattern  string
	Joiner      transform.Joiner

	// Now defaults to time.Now.
	Now func() time.Time
}

// Pipeline executes ETL runs.
type Pipeline struct {
	env Env
}

// New validates env and creates a pipeline.
func New(env Env) (*Pipeline, error) {
	if env.Source == nil {
		return nil, errors.New("source is required")
	}
	if env.Sink == nil {
		return nil, errors.New("sink is required")
	}
	if env.SongPattern == "" || env.LogPattern == "" {
		return nil, errors.New("song and log patterns are required")
	}
	if _, err := transform.ParseJoinPolicy(string(env.Joiner.Policy)); err != nil {
		return nil, err
	}
	if _, err := transform.ParseKeyMatch(string(env.Joiner.Match)); err != nil {
		return nil, err
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	return &Pipeline{env: env}, nil
}

// Run executes both stages. The catalog tables are fully written before
// the event log is read. Any read or write failure aborts the run; since
// every table is overwritten, a failed run can simply be repeated.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	s := newSummary(uuid.NewString(), p.env.Now())
	defer logging.WithRun(s.RunID)()

	logging.Info().
		Str("input", p.env.Source.Root()).
		Str("join_policy", string(p.env.Joiner.Policy)).
		Str("key_match", string(p.env.Joiner.Match)).
		Msg("Starting ETL run")

	err := p.run(ctx, s)
	s.Duration = p.env.Now().Sub(s.StartedAt)

	if p.env.Metrics != nil {
		p.env.Metrics.RecordRun(err, p.env.Now())
	}
	return s, err
}

func (p *Pipeline) run(ctx context.Context, s *Summary) error {
	start := p.env.Now()
	catalog, err := p.catalogStage(ctx, s)
	if err != nil {
		return fmt.Errorf("%s stage: %w", StageCatalog, err)
	}
	p.recordStage(s, StageCatalog, p.env.Now().Sub(start))

	start = p.env.Now()
	index := p.env.Joiner.Index(catalog)
	if err := p.eventStage(ctx, s, index); err != nil {
		return fmt.Errorf("%s stage: %w", StageEvents, err)
	}
	p.recordStage(s, StageEvents, p.env.Now().Sub(start))

	return nil
}

func (p *Pipeline) catalogStage(ctx context.Context, s *Summary) (*dataset.Table[model.CatalogRecord], error) {
	records, err := p.env.Source.Read(ctx, p.env.SongPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to read song data: %w", err)
	}
	decoded, skipped := source.Decode[model.CatalogRecord](records)
	p.recordRead(s, DatasetSongs, len(records), len(skipped))

	catalog := dataset.New("catalog", decoded)
	songs := transform.ExtractSongs(catalog)
	artists := transform.ExtractArtists(catalog)

	tables := []*sink.Table{
		sink.NewTable(model.TableSongs, model.SongColumns, model.SongPartitions, songs.Rows),
		sink.NewTable(model.TableArtists, model.ArtistColumns, nil, artists.Rows),
	}
	if err := p.write(ctx, s, tables); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (p *Pipeline) eventStage(ctx context.Context, s *Summary, index *transform.CatalogIndex) error {
	records, err := p.env.Source.Read(ctx, p.env.LogPattern)
	if err != nil {
		return fmt.Errorf("failed to read log data: %w", err)
	}
	decoded, skipped := source.Decode[model.EventRecord](records)

	events := dataset.New("events", decoded)
	untimed := dataset.Filter(events, func(e model.EventRecord) bool {
		return e.IsPlay() && e.Validate() != nil
	})
	for _, e := range untimed.Rows {
		logging.Debug().Err(e.Validate()).Msg("Skipping record")
	}
	p.recordRead(s, DatasetLogs, len(records), len(skipped)+untimed.Len())

	plays := transform.FilterPlays(events)
	users := transform.ExtractUsers(plays)
	timeDim := transform.DeriveTime(plays)
	songplays := p.env.Joiner.Songplays(plays, index)

	s.Plays = plays.Len()
	for _, r := range songplays.Rows {
		if r.SongID != nil {
			s.Matched++
		}
	}

	tables := []*sink.Table{
		sink.NewTable(model.TableUsers, model.UserColumns, nil, users.Rows),
		sink.NewTable(model.TableTime, model.TimeColumns, model.TimePartitions, timeDim.Rows),
		sink.NewTable(model.TableSongplays, model.SongplayColumns, model.SongplayPartitions, songplays.Rows),
	}
	return p.write(ctx, s, tables)
}

func (p *Pipeline) write(ctx context.Context, s *Summary, tables []*sink.Table) error {
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.env.Sink.Write(ctx, t); err != nil {
			return fmt.Errorf("failed to write table %s: %w", t.Name, err)
		}
		s.Rows[t.Name] = len(t.Rows)
		if p.env.Metrics != nil {
			p.env.Metrics.RecordTable(t.Name, len(t.Rows))
		}
		logging.Info().
			Str("table", t.Name).
			Int("rows", len(t.Rows)).
			Msg("Wrote table")
	}
	return nil
}

func (p *Pipeline) recordRead(s *Summary, name string, read, skipped int) {
	s.Datasets[name] = DatasetStats{Read: read, Skipped: skipped}
	if p.env.Metrics != nil {
		p.env.Metrics.RecordRead(name, read, skipped)
	}
	if skipped > 0 {
		logging.Warn().
			Str("dataset", name).
			Int("skipped", skipped).
			Msg("Skipped malformed records")
	}
}

func (p *Pipeline) recordStage(s *Summary, stage string, d time.Duration) {
	s.Stages[stage] = d
	if p.env.Metrics != nil {
		p.env.Metrics.RecordStage(stage, d)
	}
}
