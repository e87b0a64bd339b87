package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-etl/internal/model"
)

func TestFilterPlays(t *testing.T) {
	pageView := play(1, goldenTs, "7", "free", "", "")
	pageView.Page = ptr("PageView")
	noTs := play(2, 0, "8", "free", "", "")
	noTs.Ts = nil
	noPage := play(3, goldenTs, "9", "free", "", "")
	noPage.Page = nil

	out := FilterPlays(eventsOf(play(0, goldenTs, "6", "free", "", ""), pageView, noTs, noPage))

	require.Equal(t, 1, out.Len())
	assert.Equal(t, "6", out.Rows[0].UserID.Value)
}

func TestExtractUsers_LatestLevelWins(t *testing.T) {
	plays := eventsOf(
		play(0, goldenTs+2000, "15", "paid", "", ""),
		play(1, goldenTs, "15", "free", "", ""),
		play(2, goldenTs+1000, "15", "free", "", ""),
	)

	out := ExtractUsers(plays)

	require.Equal(t, 1, out.Len())
	assert.Equal(t, model.TableUsers, out.Name)
	require.NotNil(t, out.Rows[0].Level)
	assert.Equal(t, "paid", *out.Rows[0].Level)
}

func TestExtractUsers_SameTsFallsBackToInputOrder(t *testing.T) {
	plays := eventsOf(
		play(0, goldenTs, "15", "free", "", ""),
		play(1, goldenTs, "15", "paid", "", ""),
	)

	out := ExtractUsers(plays)

	require.Equal(t, 1, out.Len())
	assert.Equal(t, "paid", *out.Rows[0].Level)
}

func TestExtractUsers_ExcludesMissingUserID(t *testing.T) {
	plays := eventsOf(
		play(0, goldenTs, "", "free", "", ""),
		play(1, goldenTs, "26", "free", "", ""),
	)

	out := ExtractUsers(plays)

	require.Equal(t, 1, out.Len())
	assert.Equal(t, "26", out.Rows[0].UserID)
}

func TestExtractUsers_PageViewNeverReachesUsers(t *testing.T) {
	pageView := play(0, goldenTs, "99", "paid", "", "")
	pageView.Page = ptr("PageView")

	out := ExtractUsers(FilterPlays(eventsOf(pageView, play(1, goldenTs, "1", "free", "", ""))))

	for _, r := range out.Rows {
		assert.NotEqual(t, "99", r.UserID)
	}
	assert.Equal(t, 1, out.Len())
}
