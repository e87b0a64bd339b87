//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

// CatalogRecord is one song entry of the song catalog. Every field may be
// absent in the source data.
type CatalogRecord struct {
	SongID          *string  `json:"song_id"`
	Title           *string  `json:"title"`
	ArtistID        *string  `json:"artist_id"`
	ArtistName      *string  `json:"artist_name"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	Year            *int32   `json:"year"`
	Duration        *float64 `json:"duration"`
	NumSongs        *int32   `json:"num_songs"`

	// Seq is the position of the record in stable input order.
	Seq int `json:"-"`
}

// SetSeq implements Sequenced.
func (r *CatalogRecord) SetSeq(seq int) { r.Seq = seq }

// Sequenced is implemented by decoded records that carry their input
// position.
type Sequenced interface {
	SetSeq(seq int)
}
