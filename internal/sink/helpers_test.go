package sink

import (
	"time"

	"github.com/pgEdge/pgedge-etl/internal/model"
)

func ptr[T any](v T) *T { return &v }

func songsTable(rows ...model.SongRow) *Table {
	return NewTable(model.TableSongs, model.SongColumns, model.SongPartitions, rows)
}

func sampleSongs() []model.SongRow {
	return []model.SongRow{
		{SongID: "SOA", Title: ptr("Setanta matins"), ArtistID: ptr("AR1"), Year: ptr(int32(0)), Duration: ptr(269.58)},
		{SongID: "SOB", Title: ptr("Intro"), ArtistID: ptr("AR2"), Year: ptr(int32(2004)), Duration: ptr(75.67)},
		{SongID: "SOC", Title: ptr("Outro"), ArtistID: ptr("AR2"), Year: ptr(int32(2004))},
		{SongID: "SOD", Title: ptr("Untitled")},
	}
}

func timeTable(n int) *Table {
	rows := make([]model.TimeRow, n)
	base := time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		ts := base.Add(time.Duration(i) * time.Hour)
		_, week := ts.ISOWeek()
		rows[i] = model.TimeRow{
			StartTime: ts,
			Hour:      int32(ts.Hour()),
			Day:       int32(ts.Day()),
			Week:      int32(week),
			Month:     int32(ts.Month()),
			Year:      int32(ts.Year()),
			Weekday:   int32(ts.Weekday()),
		}
	}
	return NewTable(model.TableTime, model.TimeColumns, model.TimePartitions, rows)
}
