package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString_Validate(t *testing.T) {
	tests := []struct {
		name    string
		value   TimeString
		wantErr bool
	}{
		{name: "regular", value: "11:00"},
		{name: "end of day", value: "24:00"},
		{name: "midnight", value: "00:00"},
		{name: "missing leading zero", value: "9:30", wantErr: true},
		{name: "bad minutes", value: "10:61", wantErr: true},
		{name: "garbage", value: "noon", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.value.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeFormat)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("18:00").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("19:00"), got)

	got, err = TimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), got)

	_, err = TimeString("23:30").AddMinutes(31)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("11:00").IsBefore("11:30"))
	assert.False(t, TimeString("11:30").IsBefore("11:30"))
	assert.True(t, TimeString("24:00").IsAfter("23:59"))
	assert.Equal(t, 690, TimeString("11:30").Minutes())
}

func TestTimeString_On(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	date := time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)
	got := TimeString("14:30").On(date, loc)

	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 24, got.Day())
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, loc, got.Location())
}
