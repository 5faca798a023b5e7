package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// Monday
	now := time.Date(2025, 3, 10, 18, 30, 0, 0, ist)

	tests := []struct {
		text string
		want string
	}{
		{"flights tomorrow", "2025-03-11"},
		{"fly tmrw morning", "2025-03-11"},
		{"day after tomorrow please", "2025-03-12"},
		{"leaving today", "2025-03-10"},
		{"sometime next week", "2025-03-17"},
		{"next month", "2025-04-15"},
		{"this friday", "2025-03-14"},
		{"on monday", "2025-03-17"},
		{"march 5", "2026-03-05"},
		{"15th april", "2025-04-15"},
		{"1st of may", "2025-05-01"},
		{"on 2025-06-01", "2025-06-01"},
		{"tomorrow and back on friday", "2025-03-11"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m, ok := FindDate(tt.text, now)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Date.Format("2006-01-02"))
			assert.Equal(t, ist, m.Date.Location())
		})
	}
}

func TestFindDateNoMatch(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, text := range []string{"delhi to mumbai", "feb 30", "may i fly"} {
		_, ok := FindDate(text, now)
		assert.False(t, ok, text)
	}
}

func TestFindDatePosition(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	m, ok := FindDate("go on friday then sunday", now)
	require.True(t, ok)
	assert.Equal(t, "on friday", "go on friday then sunday"[m.Start:m.End])
}

func TestNextMonthDate(t *testing.T) {
	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), NextMonthDate(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), NextMonthDate(time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), NextMonthDate(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}
