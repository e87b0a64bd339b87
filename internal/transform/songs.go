//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package transform derives the dimension and fact tables from decoded
// catalog and event records.
//
// Duplicate keys are resolved as follows:
//   - songs, artists: the last record in input order wins.
//   - users: the most recent event by ts wins; equal ts falls back to
//     input order.
//   - time: the first row wins; equal keys derive identical rows.
package transform

import (
	"github.com/pgEdge/pgedge-etl/internal/dataset"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

// ExtractSongs builds the songs dimension. Records without a song_id are
// excluded.
func ExtractSongs(catalog *dataset.Table[model.CatalogRecord]) *dataset.Table[model.SongRow] {
	withKey := dataset.Filter(catalog, func(r model.CatalogRecord) bool {
		return r.SongID != nil
	})
	latest := dataset.DedupeBy(withKey, func(r model.CatalogRecord) string {
		return *r.SongID
	}, laterSeq)

	return dataset.Project(latest, model.TableSongs, func(r model.CatalogRecord) (model.SongRow, bool) {
		return model.SongRow{
			SongID:   *r.SongID,
			Title:    r.Title,
			ArtistID: r.ArtistID,
			Year:     r.Year,
			Duration: r.Duration,
		}, true
	})
}

// ExtractArtists builds the artists dimension. Records without an
// artist_id are excluded.
func ExtractArtists(catalog *dataset.Table[model.CatalogRecord]) *dataset.Table[model.ArtistRow] {
	withKey := dataset.Filter(catalog, func(r model.CatalogRecord) bool {
		return r.ArtistID != nil
	})
	latest := dataset.DedupeBy(withKey, func(r model.CatalogRecord) string {
		return *r.ArtistID
	}, laterSeq)

	return dataset.Project(latest, model.TableArtists, func(r model.CatalogRecord) (model.ArtistRow, bool) {
		return model.ArtistRow{
			ArtistID:  *r.ArtistID,
			Name:      r.ArtistName,
			Location:  r.ArtistLocation,
			Latitude:  r.ArtistLatitude,
			Longitude: r.ArtistLongitude,
		}, true
	})
}

func laterSeq(candidate, current model.CatalogRecord) bool {
	return candidate.Seq > current.Seq
}
