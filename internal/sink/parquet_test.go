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
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/pgEdge/pgedge-etl/internal/model"
)

// parquetFiles returns the data files below dir relative to it.
func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if filepath.Ext(path) == ".parquet" {
			rel, _ := filepath.Rel(dir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

// readParquet returns the row count and number of leaf columns of a file.
func readParquet(t *testing.T, path string) (int64, int) {
	t.Helper()
	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	return pr.GetNumRows(), len(pr.Footer.Schema) - 1
}

func TestParquetWritePartitioned(t *testing.T) {
	root := t.TempDir()
	p, err := NewParquet(root, ParquetOptions{})
	require.NoError(t, err)

	require.NoError(t, p.Write(context.Background(), songsTable(sampleSongs()...)))

	dir := p.TableDir(model.TableSongs)
	assert.Equal(t, []string{
		"year=0/artist_id=AR1/part-00000.parquet",
		"year=2004/artist_id=AR2/part-00000.parquet",
		"year=__HIVE_DEFAULT_PARTITION__/artist_id=__HIVE_DEFAULT_PARTITION__/part-00000.parquet",
	}, parquetFiles(t, dir))
	assert.FileExists(t, filepath.Join(dir, SuccessMarker))

	rows, cols := readParquet(t, filepath.Join(dir, "year=2004", "artist_id=AR2", "part-00000.parquet"))
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, 3, cols)
}

func TestParquetWriteOverwrites(t *testing.T) {
	root := t.TempDir()
	p, err := NewParquet(root, ParquetOptions{Compression: "gzip"})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.Write(ctx, songsTable(sampleSongs()...)))
	require.NoError(t, p.Write(ctx, songsTable(sampleSongs()[1:2]...)))

	assert.Equal(t, []string{"year=2004/artist_id=AR2/part-00000.parquet"},
		parquetFiles(t, p.TableDir(model.TableSongs)))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "staging and backup directories must be removed")
	assert.Equal(t, model.TableSongs, entries[0].Name())
}

func TestParquetWriteSplitsFiles(t *testing.T) {
	p, err := NewParquet(t.TempDir(), ParquetOptions{Compression: "none", MaxRowsPerFile: 10})
	require.NoError(t, err)

	// 25 hours of November 2018 fall into one partition.
	require.NoError(t, p.Write(context.Background(), timeTable(25)))

	dir := p.TableDir(model.TableTime)
	files := parquetFiles(t, dir)
	assert.Equal(t, []string{
		"year=2018/month=11/part-00000.parquet",
		"year=2018/month=11/part-00001.parquet",
		"year=2018/month=11/part-00002.parquet",
	}, files)

	var total int64
	for _, f := range files {
		n, cols := readParquet(t, filepath.Join(dir, filepath.FromSlash(f)))
		assert.Equal(t, 5, cols)
		total += n
	}
	assert.Equal(t, int64(25), total)
}

func TestParquetWriteEmptyTable(t *testing.T) {
	p, err := NewParquet(t.TempDir(), ParquetOptions{})
	require.NoError(t, err)

	require.NoError(t, p.Write(context.Background(), songsTable()))

	dir := p.TableDir(model.TableSongs)
	assert.Empty(t, parquetFiles(t, dir))
	assert.FileExists(t, filepath.Join(dir, SuccessMarker))
}

func TestParquetWriteRejectsUnknownColumn(t *testing.T) {
	root := t.TempDir()
	p, err := NewParquet(root, ParquetOptions{})
	require.NoError(t, err)

	bad := NewTable(model.TableUsers, model.UserColumns, []string{"year"}, []model.UserRow{{UserID: "1"}})
	assert.ErrorIs(t, p.Write(context.Background(), bad), ErrUnknownColumn)
	assert.NoDirExists(t, p.TableDir(model.TableUsers))
}

func TestNewParquetBadCompression(t *testing.T) {
	_, err := NewParquet(t.TempDir(), ParquetOptions{Compression: "lzma"})
	assert.Error(t, err)
}

func TestParquetSchema(t *testing.T) {
	md := parquetSchema(model.TimeColumns[:2])
	assert.Equal(t, []string{
		"name=start_time, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL",
		"name=hour, type=INT32, repetitiontype=OPTIONAL",
	}, md)
}

// songplayRecord reads back the data columns of a songplays file.
type songplayRecord struct {
	SongplayID *int64  `parquet:"name=songplay_id, type=INT64, repetitiontype=OPTIONAL"`
	StartTime  *int64  `parquet:"name=start_time, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`
	UserID     *string `parquet:"name=user_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Level      *string `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SongID     *string `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ArtistID   *string `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SessionID  *int64  `parquet:"name=session_id, type=INT64, repetitiontype=OPTIONAL"`
	UserAgent  *string `parquet:"name=user_agent, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

func TestParquetSongplaysValues(t *testing.T) {
	p, err := NewParquet(t.TempDir(), ParquetOptions{})
	require.NoError(t, err)

	ts := time.Date(2018, 11, 12, 2, 37, 38, 0, time.UTC)
	rows := []model.SongplayRow{
		{
			SongplayID: 1, StartTime: ts, Month: 11, Year: 2018,
			UserID: ptr("26"), Level: ptr("free"), SongID: ptr("SOA"), ArtistID: ptr("AR1"),
			SessionID: ptr(int64(583)), UserAgent: ptr("Mozilla/5.0"),
		},
		{
			SongplayID: 2, StartTime: ts.Add(time.Minute), Month: 11, Year: 2018,
			UserID: ptr("26"), Level: ptr("free"), SessionID: ptr(int64(583)),
		},
	}
	table := NewTable(model.TableSongplays, model.SongplayColumns, model.SongplayPartitions, rows)
	require.NoError(t, p.Write(context.Background(), table))

	path := filepath.Join(p.TableDir(model.TableSongplays), "year=2018", "month=11", "part-00000.parquet")
	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(songplayRecord), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	got := make([]songplayRecord, pr.GetNumRows())
	require.NoError(t, pr.Read(&got))
	require.Len(t, got, 2)

	require.NotNil(t, got[0].StartTime)
	assert.Equal(t, ts, time.UnixMilli(*got[0].StartTime).UTC())
	require.NotNil(t, got[0].SongID)
	assert.Equal(t, "SOA", *got[0].SongID)
	require.NotNil(t, got[0].SessionID)
	assert.Equal(t, int64(583), *got[0].SessionID)

	assert.Equal(t, int64(2), *got[1].SongplayID)
	assert.Equal(t, ts.Add(time.Minute), time.UnixMilli(*got[1].StartTime).UTC())
	assert.Nil(t, got[1].SongID)
	assert.Nil(t, got[1].ArtistID)
	assert.Nil(t, got[1].UserAgent)
	assert.Equal(t, "free", *got[1].Level)
}
