package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalDateTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2022-01-03T00:10:00", time.Date(2022, 1, 3, 0, 10, 0, 0, time.UTC), true},
		{"2022-01-03T00:10", time.Date(2022, 1, 3, 0, 10, 0, 0, time.UTC), true},
		{"2022-01-03T00:10:00.5", time.Date(2022, 1, 3, 0, 10, 0, 500000000, time.UTC), true},
		{"2022-01-03", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocalDateTime(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %v", got.Time)
		})
	}
}

func TestLocalDateTimeJSON(t *testing.T) {
	d, err := ParseLocalDateTime("2022-01-01T00:00:00")
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2022-01-01T00:00:00"`, string(data))

	var back LocalDateTime
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back.Time))

	zero, err := json.Marshal(LocalDateTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(zero))

	require.NoError(t, json.Unmarshal([]byte("null"), &back))
	assert.True(t, back.IsZero())

	assert.Error(t, json.Unmarshal([]byte("20220101"), &back))
}

func TestLocalDateTimeScanValue(t *testing.T) {
	d, err := ParseLocalDateTime("2023-05-06T07:08:09")
	require.NoError(t, err)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2023-05-06T07:08:09", v)

	var scanned LocalDateTime
	require.NoError(t, scanned.Scan("2023-05-06T07:08:09"))
	assert.True(t, d.Equal(scanned.Time))

	require.NoError(t, scanned.Scan([]byte("2023-05-06T07:08:09")))
	assert.True(t, d.Equal(scanned.Time))

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	assert.Error(t, scanned.Scan(42))
}
