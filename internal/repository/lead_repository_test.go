package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateEmptyPatch(t *testing.T) {
	query, args := buildUpdate("lead-1", map[string]string{})

	// Even an empty patch bumps updated_at when the row exists.
	assert.Contains(t, query, "SET updated_at = NOW() WHERE id = $1")
	assert.Equal(t, []any{"lead-1"}, args)
}

func TestBuildUpdateOptionalField(t *testing.T) {
	query, args := buildUpdate("lead-1", map[string]string{"callStatus": "Contacted"})

	assert.Contains(t, query, "call_status = $2")
	assert.NotContains(t, query, "NULLIF")
	assert.Equal(t, []any{"lead-1", "Contacted"}, args)
}

func TestBuildUpdateRequiredFieldKeepsExistingOnEmpty(t *testing.T) {
	query, args := buildUpdate("lead-1", map[string]string{"email": ""})

	// Required fields can be replaced but never blanked.
	assert.Contains(t, query, "email = COALESCE(NULLIF($2, ''), email)")
	assert.Equal(t, []any{"lead-1", ""}, args)
}

func TestBuildUpdateOptionalFieldCanBeCleared(t *testing.T) {
	query, args := buildUpdate("lead-1", map[string]string{"callNotes": ""})

	assert.Contains(t, query, "call_notes = $2")
	assert.Equal(t, []any{"lead-1", ""}, args)
}

func TestBuildUpdateLastContactedAt(t *testing.T) {
	query, args := buildUpdate("lead-1", map[string]string{"lastContactedAt": "2026-03-01T10:00:00Z"})

	assert.Contains(t, query, "last_contacted_at = $2")
	require.Len(t, args, 2)
	ts, ok := args[1].(*time.Time)
	require.True(t, ok)
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), *ts)
}

func TestBuildUpdateLastContactedAtNull(t *testing.T) {
	for _, value := range []string{"", "not a date"} {
		_, args := buildUpdate("lead-1", map[string]string{"lastContactedAt": value})
		require.Len(t, args, 2)
		assert.Nil(t, args[1], "value %q should write NULL", value)
	}
}

func TestBuildUpdateArgOrderIsStable(t *testing.T) {
	patch := map[string]string{
		"callStatus": "Contacted",
		"email":      "new@example.com",
		"callNotes":  "spoke on phone",
	}

	// Fields are applied in whitelist order regardless of map iteration.
	query1, args1 := buildUpdate("lead-1", patch)
	for i := 0; i < 20; i++ {
		query2, args2 := buildUpdate("lead-1", patch)
		require.Equal(t, query1, query2)
		require.Equal(t, args1, args2)
	}

	assert.Equal(t, []any{"lead-1", "new@example.com", "Contacted", "spoke on phone"}, args1)
}

func TestBuildUpdateNormalizesFollowUpDate(t *testing.T) {
	query, args := buildUpdate("lead-1", map[string]string{"nextFollowUp": "2026-03-05T09:30:00Z"})

	assert.Contains(t, query, "next_follow_up = $2")
	assert.Equal(t, []any{"lead-1", "2026-03-05"}, args)
}

func TestNormalizeFollowUpDate(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"2026-03-05":           "2026-03-05",
		"2026/03/05":           "2026-03-05",
		"2026-03-05T09:30:00Z": "2026-03-05",
		"2026-03-05 09:30:00":  "2026-03-05",
		"after the webinar":    "after the webinar",
	}
	for value, want := range cases {
		assert.Equal(t, want, normalizeFollowUpDate(value), "value %q", value)
	}
}

func TestColumnNamesAvoidReservedWords(t *testing.T) {
	// CURRENT_ROLE and friends are reserved in PostgreSQL; an unquoted
	// column with one of these names breaks CREATE TABLE and SET clauses.
	reserved := map[string]bool{
		"current_role":      true,
		"current_user":      true,
		"current_date":      true,
		"current_time":      true,
		"current_timestamp": true,
		"session_user":      true,
		"user":              true,
		"table":             true,
		"select":            true,
	}

	for _, column := range strings.Split(leadColumns, ",") {
		column = strings.TrimSpace(column)
		assert.False(t, reserved[column], "column %q is a reserved key word", column)
	}
	for field, column := range patchColumns {
		assert.False(t, reserved[column], "field %q maps to reserved column %q", field, column)
	}
	assert.Equal(t, "role_title", patchColumns["currentRole"])
}

func TestParseContactTime(t *testing.T) {
	ts := parseContactTime("2026-03-01")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *ts)

	assert.Nil(t, parseContactTime(""))
	assert.Nil(t, parseContactTime("soon"))
}

func TestUnconfiguredRepository(t *testing.T) {
	repo := NewLeadRepository(nil)
	ctx := context.Background()

	assert.False(t, repo.Configured())
	assert.ErrorIs(t, repo.EnsureSchema(ctx), ErrNotConfigured)

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = repo.Count(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = repo.UpdateByID(ctx, "x", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	deleted, err := repo.DeleteByID(ctx, "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, deleted)
}

func TestPatchColumnsCoverWhitelist(t *testing.T) {
	// Every patchable field must map to a column, or buildUpdate would
	// emit broken SQL.
	for field := range patchColumns {
		assert.NotEmpty(t, patchColumns[field])
	}
	query, _ := buildUpdate("id", map[string]string{
		"fullName": "a", "email": "b", "phone": "c", "experience": "d",
		"currentRole": "e", "goal": "f", "action": "g", "leadSource": "h",
		"campaignName": "i", "callStatus": "j", "interestStatus": "k",
		"joinTimeline": "l", "joinStatus": "m", "nextFollowUp": "n",
		"callNotes": "o", "lastContactedAt": "2026-01-01",
	})
	assert.NotContains(t, query, " = $0")
	assert.Contains(t, query, "RETURNING")
}
