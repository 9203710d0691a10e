package auraxis

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCensusIntUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected int64
		wantErr  bool
	}{
		{name: "quoted decimal", data: `"5428010618035323201"`, expected: 5428010618035323201},
		{name: "bare decimal", data: `42`, expected: 42},
		{name: "negative", data: `"-1"`, expected: -1},
		{name: "empty string is zero", data: `""`, expected: 0},
		{name: "NULL is zero", data: `"NULL"`, expected: 0},
		{name: "json null is zero", data: `null`, expected: 0},
		{name: "not a number", data: `"emerald"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var i CensusInt
			err := json.Unmarshal([]byte(tt.data), &i)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrResponseFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, i.Int64())
		})
	}
}

func TestCensusIntString(t *testing.T) {
	assert.Equal(t, "17", CensusInt(17).String())
}

func TestCensusFloatUnmarshal(t *testing.T) {
	var f CensusFloat
	require.NoError(t, json.Unmarshal([]byte(`"40.5"`), &f))
	assert.InDelta(t, 40.5, f.Float64(), 0.0001)

	require.NoError(t, json.Unmarshal([]byte(`"NULL"`), &f))
	assert.Zero(t, f.Float64())

	err := json.Unmarshal([]byte(`"fast"`), &f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseFormat)
}

func TestCensusBoolUnmarshal(t *testing.T) {
	tests := []struct {
		data     string
		expected bool
		wantErr  bool
	}{
		{data: `"1"`, expected: true},
		{data: `"0"`, expected: false},
		{data: `"true"`, expected: true},
		{data: `"false"`, expected: false},
		{data: `""`, expected: false},
		{data: `"NULL"`, expected: false},
		{data: `"yes"`, wantErr: true},
	}

	for _, tt := range tests {
		var b CensusBool
		err := json.Unmarshal([]byte(tt.data), &b)
		if tt.wantErr {
			assert.Error(t, err, tt.data)
			continue
		}
		require.NoError(t, err, tt.data)
		assert.Equal(t, tt.expected, b.Bool(), tt.data)
	}
}

func TestCensusTimeUnmarshal(t *testing.T) {
	var ts CensusTime
	require.NoError(t, json.Unmarshal([]byte(`"1355442261"`), &ts))
	assert.Equal(t, time.Date(2012, 12, 13, 23, 44, 21, 0, time.UTC), ts.Time())
	assert.False(t, ts.IsZero())

	// The API sends "0" for never-set timestamps.
	require.NoError(t, json.Unmarshal([]byte(`"0"`), &ts))
	assert.True(t, ts.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestCensusTypesInStruct(t *testing.T) {
	var record struct {
		ID       CensusInt   `json:"item_id"`
		Percent  CensusFloat `json:"percent_to_next"`
		Vehicle  CensusBool  `json:"is_vehicle_weapon"`
		LastSave CensusTime  `json:"last_save"`
	}

	body := `{"item_id":"26001","percent_to_next":"12.25","is_vehicle_weapon":"1","last_save":"1650000000"}`
	require.NoError(t, json.Unmarshal([]byte(body), &record))

	assert.Equal(t, int64(26001), record.ID.Int64())
	assert.InDelta(t, 12.25, record.Percent.Float64(), 0.0001)
	assert.True(t, record.Vehicle.Bool())
	assert.Equal(t, int64(1650000000), record.LastSave.Time().Unix())
}

func TestPayloadErrorUnwrapsToResponseFormat(t *testing.T) {
	err := error(&PayloadError{Key: "count", Message: "missing key"})
	assert.True(t, errors.Is(err, ErrResponseFormat))
	assert.Contains(t, err.Error(), `key "count"`)
}
