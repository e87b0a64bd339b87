//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

import "time"

// Table names of the dimensional schema.
const (
	TableSongs     = "songs"
	TableArtists   = "artists"
	TableUsers     = "users"
	TableTime      = "time"
	TableSongplays = "songplays"
)

// SongRow is a row of the songs dimension.
type SongRow struct {
	SongID   string
	Title    *string
	ArtistID *string
	Year     *int32
	Duration *float64
}

// SongColumns is the songs table schema.
var SongColumns = []Column{
	{Name: "song_id", Type: String, PrimaryKey: true},
	{Name: "title", Type: String, Nullable: true},
	{Name: "artist_id", Type: String, Nullable: true},
	{Name: "year", Type: Int32, Nullable: true},
	{Name: "duration", Type: Float64, Nullable: true},
}

// SongPartitions are the partition columns of the songs table.
var SongPartitions = []string{"year", "artist_id"}

// Values implements Row.
func (r SongRow) Values() []any {
	return []any{r.SongID, nullable(r.Title), nullable(r.ArtistID), nullable(r.Year), nullable(r.Duration)}
}

// ArtistRow is a row of the artists dimension.
type ArtistRow struct {
	ArtistID  string
	Name      *string
	Location  *string
	Latitude  *float64
	Longitude *float64
}

// ArtistColumns is the artists table schema.
var ArtistColumns = []Column{
	{Name: "artist_id", Type: String, PrimaryKey: true},
	{Name: "name", Type: String, Nullable: true},
	{Name: "location", Type: String, Nullable: true},
	{Name: "latitude", Type: Float64, Nullable: true},
	{Name: "longitude", Type: Float64, Nullable: true},
}

// Values implements Row.
func (r ArtistRow) Values() []any {
	return []any{r.ArtistID, nullable(r.Name), nullable(r.Location), nullable(r.Latitude), nullable(r.Longitude)}
}

// UserRow is a row of the users dimension.
type UserRow struct {
	UserID    string
	FirstName *string
	LastName  *string
	Gender    *string
	Level     *string
}

// UserColumns is the users table schema.
var UserColumns = []Column{
	{Name: "user_id", Type: String, PrimaryKey: true},
	{Name: "first_name", Type: String, Nullable: true},
	{Name: "last_name", Type: String, Nullable: true},
	{Name: "gender", Type: String, Nullable: true},
	{Name: "level", Type: String, Nullable: true},
}

// Values implements Row.
func (r UserRow) Values() []any {
	return []any{r.UserID, nullable(r.FirstName), nullable(r.LastName), nullable(r.Gender), nullable(r.Level)}
}

// TimeRow is a row of the time dimension.
type TimeRow struct {
	StartTime time.Time
	Hour      int32
	Day       int32
	Week      int32
	Month     int32
	Year      int32
	Weekday   int32
}

// TimeColumns is the time table schema.
var TimeColumns = []Column{
	{Name: "start_time", Type: Timestamp, PrimaryKey: true},
	{Name: "hour", Type: Int32},
	{Name: "day", Type: Int32},
	{Name: "week", Type: Int32},
	{Name: "month", Type: Int32},
	{Name: "year", Type: Int32},
	{Name: "weekday", Type: Int32},
}

// TimePartitions are the partition columns of the time table.
var TimePartitions = []string{"year", "month"}

// Values implements Row.
func (r TimeRow) Values() []any {
	return []any{r.StartTime, r.Hour, r.Day, r.Week, r.Month, r.Year, r.Weekday}
}

// SongplayRow is a row of the songplays fact table.
type SongplayRow struct {
	SongplayID int64
	StartTime  time.Time
	Month      int32
	Year       int32
	UserID     *string
	Level      *string
	SongID     *string
	ArtistID   *string
	SessionID  *int64
	UserAgent  *string
}

// SongplayColumns is the songplays table schema.
var SongplayColumns = []Column{
	{Name: "songplay_id", Type: Int64, PrimaryKey: true},
	{Name: "start_time", Type: Timestamp},
	{Name: "month", Type: Int32},
	{Name: "year", Type: Int32},
	{Name: "user_id", Type: String, Nullable: true},
	{Name: "level", Type: String, Nullable: true},
	{Name: "song_id", Type: String, Nullable: true},
	{Name: "artist_id", Type: String, Nullable: true},
	{Name: "session_id", Type: Int64, Nullable: true},
	{Name: "user_agent", Type: String, Nullable: true},
}

// SongplayPartitions are the partition columns of the songplays table.
var SongplayPartitions = []string{"year", "month"}

// Values implements Row.
func (r SongplayRow) Values() []any {
	return []any{
		r.SongplayID, r.StartTime, r.Month, r.Year,
		nullable(r.UserID), nullable(r.Level), nullable(r.SongID), nullable(r.ArtistID),
		nullable(r.SessionID), nullable(r.UserAgent),
	}
}

// nullable dereferences p, returning an untyped nil for a nil pointer so
// that sinks can test entries with == nil.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
