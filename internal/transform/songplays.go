//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package transform

import (
	"fmt"

	"github.com/pgEdge/pgedge-etl/internal/dataset"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

// JoinPolicy decides the fate of plays without a catalog match.
type JoinPolicy string

const (
	// JoinInner drops plays without a catalog match.
	JoinInner JoinPolicy = "inner"
	// JoinLeft keeps them with null song_id and artist_id.
	JoinLeft JoinPolicy = "left"
)

// ParseJoinPolicy validates a join policy name.
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch JoinPolicy(s) {
	case JoinInner, JoinLeft:
		return JoinPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown join policy %q (valid: inner, left)", s)
	}
}

func (p JoinPolicy) kind() dataset.JoinKind {
	if p == JoinLeft {
		return dataset.LeftJoin
	}
	return dataset.InnerJoin
}

// Joiner produces the songplays fact table.
type Joiner struct {
	Policy JoinPolicy
	Match  KeyMatch
}

// CatalogIndex maps correlation keys to catalog records. It is read-only
// once built.
type CatalogIndex struct {
	entries map[songKey]model.CatalogRecord
	key     keyFunc
}

// Len returns the number of distinct keys.
func (c *CatalogIndex) Len() int { return len(c.entries) }

// Lookup finds the catalog record for an (artist, title) pair.
func (c *CatalogIndex) Lookup(artist, title string) (model.CatalogRecord, bool) {
	k, ok := c.key(&artist, &title)
	if !ok {
		return model.CatalogRecord{}, false
	}
	r, ok := c.entries[k]
	return r, ok
}

// Index builds the catalog side of the join. Records without a song_id
// or artist_id are not indexed. When several records share a key the
// smallest song_id wins, then the earliest in input order.
func (j Joiner) Index(catalog *dataset.Table[model.CatalogRecord]) *CatalogIndex {
	key := newKeyFunc(j.Match)
	entries := dataset.Index(catalog, func(r model.CatalogRecord) (songKey, bool) {
		if r.SongID == nil || r.ArtistID == nil {
			return songKey{}, false
		}
		return key(r.ArtistName, r.Title)
	}, func(candidate, current model.CatalogRecord) bool {
		if *candidate.SongID != *current.SongID {
			return *candidate.SongID < *current.SongID
		}
		return candidate.Seq < current.Seq
	})
	return &CatalogIndex{entries: entries, key: key}
}

// Songplays correlates play events with the catalog. Plays are numbered
// 1..N in (ts, input order) so songplay_id is unique, increasing and
// reproducible for identical input.
func (j Joiner) Songplays(plays *dataset.Table[model.EventRecord], catalog *CatalogIndex) *dataset.Table[model.SongplayRow] {
	ordered := dataset.SortStable(dataset.Filter(plays, func(e model.EventRecord) bool {
		return e.Ts != nil
	}), func(a, b model.EventRecord) bool {
		if *a.Ts != *b.Ts {
			return *a.Ts < *b.Ts
		}
		return a.Seq < b.Seq
	})

	eventKey := func(e model.EventRecord) (songKey, bool) {
		return catalog.key(e.Artist, e.Song)
	}

	joined := dataset.Join(ordered, catalog.entries, eventKey, j.Policy.kind(), model.TableSongplays,
		func(e model.EventRecord, song *model.CatalogRecord) model.SongplayRow {
			st := StartTime(*e.Ts)
			row := model.SongplayRow{
				StartTime: st,
				Month:     int32(st.Month()),
				Year:      int32(st.Year()),
				UserID:    e.UserID.Ptr(),
				Level:     e.Level,
				SessionID: e.SessionID,
				UserAgent: e.UserAgent,
			}
			if song != nil {
				row.SongID = song.SongID
				row.ArtistID = song.ArtistID
			}
			return row
		})

	for i := range joined.Rows {
		joined.Rows[i].SongplayID = int64(i + 1)
	}
	return joined
}
