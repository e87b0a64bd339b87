package transform

import (
	"github.com/pgEdge/pgedge-etl/internal/dataset"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

func ptr[T any](v T) *T { return &v }

func song(seq int, songID, title, artistID, artistName string) model.CatalogRecord {
	r := model.CatalogRecord{Seq: seq}
	if songID != "" {
		r.SongID = ptr(songID)
	}
	if title != "" {
		r.Title = ptr(title)
	}
	if artistID != "" {
		r.ArtistID = ptr(artistID)
	}
	if artistName != "" {
		r.ArtistName = ptr(artistName)
	}
	return r
}

func play(seq int, ts int64, userID, level, artist, title string) model.EventRecord {
	e := model.EventRecord{
		Seq:       seq,
		Page:      ptr(model.PageNextSong),
		Ts:        ptr(ts),
		UserID:    model.NewText(userID),
		Level:     ptr(level),
		SessionID: ptr(int64(100 + seq)),
		UserAgent: ptr("Mozilla/5.0"),
	}
	if artist != "" {
		e.Artist = ptr(artist)
	}
	if title != "" {
		e.Song = ptr(title)
	}
	return e
}

func catalogOf(rows ...model.CatalogRecord) *dataset.Table[model.CatalogRecord] {
	return dataset.New("catalog", rows)
}

func eventsOf(rows ...model.EventRecord) *dataset.Table[model.EventRecord] {
	return dataset.New("events", rows)
}
