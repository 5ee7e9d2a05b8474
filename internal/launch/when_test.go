package launch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		year int
		want time.Time
	}{
		{"numeric with clock", "4 January 2025 01:27", 0, time.Date(2025, 1, 4, 1, 27, 0, 0, time.UTC)},
		{"numeric date only", "18 March 2025", 0, time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)},
		{"day month with clock", "4 January 01:27", 2025, time.Date(2025, 1, 4, 1, 27, 0, 0, time.UTC)},
		{"day month seconds", "4 January 01:27:30", 2025, time.Date(2025, 1, 4, 1, 27, 30, 0, time.UTC)},
		{"month day with clock", "January 4 01:27", 2024, time.Date(2024, 1, 4, 1, 27, 0, 0, time.UTC)},
		{"month day comma year", "January 4, 2025", 0, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)},
		{"extra whitespace", "  4\u00a0January   01:27 ", 2025, time.Date(2025, 1, 4, 1, 27, 0, 0, time.UTC)},
		{"leap day", "29 February", 2024, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTime(tt.in, tt.year)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseTimeFailures(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"TBD", "NET March 2025", "Unknown", "5 June?", "Q3 2025"} {
		_, err := ParseTime(in, 2025)
		require.Error(t, err, in)
	}

	_, err := ParseTime("NET 4 January", 2025)
	require.ErrorIs(t, err, ErrPlaceholder)

	_, err = ParseTime("4 January 01:27", 0)
	require.ErrorIs(t, err, ErrUnparsedTime)
}

func TestHasDate(t *testing.T) {
	t.Parallel()

	assert.True(t, HasDate("4 January 01:27"))
	assert.True(t, HasDate("29 February"))
	assert.True(t, HasDate("4 January 2025 01:27"))
	assert.False(t, HasDate("4 January01:27"))
	assert.False(t, HasDate("TBD"))
}
