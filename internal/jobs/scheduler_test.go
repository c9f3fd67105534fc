package jobs

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillforge/api/internal/models"
)

func TestLeadsCSV(t *testing.T) {
	contacted := time.Date(2026, 2, 20, 14, 30, 0, 0, time.UTC)
	leads := []models.Lead{
		{
			ID:              "lead-1",
			Timestamp:       time.Date(2026, 2, 19, 9, 0, 0, 0, time.UTC),
			FullName:        "Priya Sharma",
			Email:           "priya@example.com",
			Phone:           "+919876543210",
			Experience:      "beginner",
			CallStatus:      "Contacted",
			LastContactedAt: &contacted,
			UpdatedAt:       contacted,
		},
		{
			ID:        "lead-2",
			FullName:  "Notes, with commas",
			CallNotes: `said "maybe"`,
		},
	}

	records, err := csv.NewReader(strings.NewReader(string(leadsCSV(leads)))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "id", header[0])
	assert.Equal(t, "fullName", header[2])

	assert.Equal(t, "lead-1", records[1][0])
	assert.Equal(t, "priya@example.com", records[1][3])
	assert.Equal(t, "2026-02-20T14:30:00Z", records[1][18])

	// Quoting survives commas and quotes.
	assert.Equal(t, "Notes, with commas", records[2][2])
	assert.Equal(t, `said "maybe"`, records[2][17])
	assert.Equal(t, "", records[2][18], "nil lastContactedAt renders empty")
}

func TestSchedulerNoopWithoutDatabase(t *testing.T) {
	s := NewScheduler(nil, nil, zerolog.Nop())

	assert.NoError(t, s.Start())
	s.Stop()
}
