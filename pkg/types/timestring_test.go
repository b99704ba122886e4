package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "valid morning", input: "09:00", want: "09:00"},
		{name: "valid midnight", input: "00:00", want: "00:00"},
		{name: "valid end of day", input: "23:59", want: "23:59"},
		{name: "invalid hour", input: "24:00", wantErr: true},
		{name: "invalid format", input: "9am", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	tests := []struct {
		name    string
		start   TimeString
		minutes int
		want    TimeString
		wantErr bool
	}{
		{name: "within hour", start: "09:00", minutes: 30, want: "09:30"},
		{name: "across hour", start: "09:45", minutes: 30, want: "10:15"},
		{name: "zero", start: "12:00", minutes: 0, want: "12:00"},
		{name: "past midnight", start: "23:30", minutes: 60, wantErr: true},
		{name: "negative underflow", start: "00:10", minutes: -20, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.start.AddMinutes(tt.minutes)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Comparisons(t *testing.T) {
	a := TimeString("09:00")
	b := TimeString("17:30")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsBefore(a))
	assert.False(t, a.IsAfter(a))
}

func TestTimeString_At(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	date := time.Date(2025, 11, 3, 0, 0, 0, 0, loc)
	got := TimeString("14:30").At(date, loc)

	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, date.Day(), got.Day())
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("10:30:00"))
	assert.Equal(t, TimeString("10:30"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())
}
