package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Text
	}{
		{name: "string", input: `"39"`, want: Text{Value: "39", Valid: true}},
		{name: "number", input: `39`, want: Text{Value: "39", Valid: true}},
		{name: "empty string", input: `""`, want: Text{}},
		{name: "null", input: `null`, want: Text{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_UnmarshalJSONRejectsObjects(t *testing.T) {
	var got Text
	err := json.Unmarshal([]byte(`{"id": 1}`), &got)
	require.Error(t, err)
	assert.False(t, got.Valid)
}

func TestEventRecord_Decode(t *testing.T) {
	raw := `{"artist":"Elena","auth":"Logged In","firstName":"Lily","gender":"F",
		"itemInSession":0,"lastName":"Koch","length":243.9,"level":"paid",
		"page":"NextSong","sessionId":818,"song":"Setanta matins","ts":1541990258796,
		"userAgent":"Mozilla/5.0","userId":"15"}`

	var ev EventRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	assert.True(t, ev.IsPlay())
	require.NotNil(t, ev.Ts)
	assert.Equal(t, int64(1541990258796), *ev.Ts)
	assert.Equal(t, "15", ev.UserID.Value)
	require.NotNil(t, ev.SessionID)
	assert.Equal(t, int64(818), *ev.SessionID)
	assert.NoError(t, ev.Validate())
}

func TestEventRecord_ValidateMissingTs(t *testing.T) {
	var ev EventRecord
	require.NoError(t, json.Unmarshal([]byte(`{"page":"NextSong","userId":""}`), &ev))

	err := ev.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRecord))
	assert.False(t, ev.UserID.Valid)
}

func TestRowValuesNulls(t *testing.T) {
	row := SongRow{SongID: "SOABC"}
	values := row.Values()

	require.Len(t, values, len(SongColumns))
	assert.Equal(t, "SOABC", values[0])
	for i := 1; i < len(values); i++ {
		assert.Nil(t, values[i], "column %s", SongColumns[i].Name)
	}
}

func TestColumnIndex(t *testing.T) {
	assert.Equal(t, 0, ColumnIndex(TimeColumns, "start_time"))
	assert.Equal(t, 5, ColumnIndex(TimeColumns, "year"))
	assert.Equal(t, -1, ColumnIndex(TimeColumns, "missing"))
}
