package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-etl/internal/model"
)

func TestExtractSongs(t *testing.T) {
	catalog := catalogOf(
		song(0, "SO1", "Setanta matins", "AR1", "Elena"),
		song(1, "", "No id", "AR2", "Nobody"),
		song(2, "SO2", "Intro", "AR1", "Elena"),
		song(3, "SO1", "Setanta matins (remaster)", "AR1", "Elena"),
	)

	out := ExtractSongs(catalog)

	require.Equal(t, 2, out.Len())
	assert.Equal(t, model.TableSongs, out.Name)

	ids := map[string]int{}
	for _, r := range out.Rows {
		assert.NotEmpty(t, r.SongID)
		ids[r.SongID]++
	}
	assert.Equal(t, map[string]int{"SO1": 1, "SO2": 1}, ids)

	// last record in input order wins
	assert.Equal(t, "SO1", out.Rows[0].SongID)
	require.NotNil(t, out.Rows[0].Title)
	assert.Equal(t, "Setanta matins (remaster)", *out.Rows[0].Title)
}

func TestExtractSongs_KeepsMissingAttributes(t *testing.T) {
	out := ExtractSongs(catalogOf(song(0, "SO9", "", "", "")))

	require.Equal(t, 1, out.Len())
	assert.Nil(t, out.Rows[0].Title)
	assert.Nil(t, out.Rows[0].ArtistID)
	assert.Nil(t, out.Rows[0].Year)
}

func TestExtractSongs_DeterministicAcrossRuns(t *testing.T) {
	catalog := catalogOf(
		song(0, "SO1", "A", "AR1", "X"),
		song(1, "SO1", "B", "AR1", "X"),
		song(2, "SO2", "C", "AR2", "Y"),
	)

	assert.Equal(t, ExtractSongs(catalog).Rows, ExtractSongs(catalog).Rows)
}

func TestExtractArtists(t *testing.T) {
	first := song(0, "SO1", "A", "AR1", "Elena")
	first.ArtistLocation = ptr("Dubai UAE")
	second := song(1, "SO2", "B", "AR1", "Elena")
	second.ArtistLocation = ptr("Dubai, UAE")
	second.ArtistLongitude = ptr(55.27)

	catalog := catalogOf(first, second, song(2, "SO3", "C", "", "Unknown"))

	out := ExtractArtists(catalog)

	require.Equal(t, 1, out.Len())
	row := out.Rows[0]
	assert.Equal(t, "AR1", row.ArtistID)
	require.NotNil(t, row.Name)
	assert.Equal(t, "Elena", *row.Name)
	require.NotNil(t, row.Location)
	assert.Equal(t, "Dubai, UAE", *row.Location)
	require.NotNil(t, row.Longitude)
	assert.InDelta(t, 55.27, *row.Longitude, 1e-9)
}
