package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeIsIdempotent(t *testing.T) {
	in := LeadInput{
		FullName:   "  Priya Sharma ",
		Email:      " priya@example.com\t",
		Phone:      " +91 98765 43210 ",
		Experience: "beginner",
		Goal:       "  switch careers  ",
	}

	once := in.Sanitize()
	twice := once.Sanitize()

	assert.Equal(t, once, twice)
	assert.Equal(t, "Priya Sharma", once.FullName)
	assert.Equal(t, "priya@example.com", once.Email)
}

func TestValidate(t *testing.T) {
	valid := LeadInput{
		FullName:   "Priya Sharma",
		Email:      "priya@example.com",
		Phone:      "+919876543210",
		Experience: "beginner",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*LeadInput)
	}{
		{"missing fullName", func(in *LeadInput) { in.FullName = "" }},
		{"missing email", func(in *LeadInput) { in.Email = "" }},
		{"email without @", func(in *LeadInput) { in.Email = "priya.example.com" }},
		{"email with spaces", func(in *LeadInput) { in.Email = "priya @example.com" }},
		{"missing phone", func(in *LeadInput) { in.Phone = "" }},
		{"missing experience", func(in *LeadInput) { in.Experience = "" }},
		{"oversized goal", func(in *LeadInput) {
			goal := make([]byte, MaxGoalLength+1)
			for i := range goal {
				goal[i] = 'x'
			}
			in.Goal = string(goal)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.Error(t, in.Validate())
		})
	}
}

func TestBuildAppliesDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	lead := LeadInput{
		FullName:   "Priya Sharma",
		Email:      "priya@example.com",
		Phone:      "+919876543210",
		Experience: "beginner",
	}.Build(now)

	assert.Equal(t, DefaultCallStatus, lead.CallStatus)
	assert.Equal(t, DefaultInterestStatus, lead.InterestStatus)
	assert.Equal(t, DefaultJoinStatus, lead.JoinStatus)
	assert.Equal(t, DefaultLeadSource, lead.LeadSource)
	assert.Equal(t, DefaultSourcePage, lead.SourcePage)
	assert.Equal(t, DefaultAction, lead.Action)
	assert.Equal(t, DefaultProvenance, lead.ClientIP)
	assert.Equal(t, DefaultProvenance, lead.UserAgent)
	assert.Equal(t, now, lead.Timestamp)
	assert.Equal(t, now, lead.UpdatedAt)
	assert.Nil(t, lead.LastContactedAt)
	assert.Empty(t, lead.ID, "id belongs to the store, not the builder")
}

func TestBuildKeepsSuppliedValues(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	lead := LeadInput{
		FullName:   "Priya Sharma",
		Email:      "priya@example.com",
		Phone:      "+919876543210",
		Experience: "beginner",
		SourcePage: "/pricing",
		LeadSource: "Google Ads",
		Action:     "download_brochure",
		ClientIP:   "203.0.113.9",
		UserAgent:  "Mozilla/5.0",
		Timestamp:  "2026-02-28T09:30:00Z",
	}.Build(now)

	assert.Equal(t, "/pricing", lead.SourcePage)
	assert.Equal(t, "Google Ads", lead.LeadSource)
	assert.Equal(t, "download_brochure", lead.Action)
	assert.Equal(t, "203.0.113.9", lead.ClientIP)
	assert.Equal(t, time.Date(2026, 2, 28, 9, 30, 0, 0, time.UTC), lead.Timestamp)
}

func TestBuildFallsBackOnBadTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	lead := LeadInput{
		FullName:   "Priya Sharma",
		Email:      "priya@example.com",
		Phone:      "+919876543210",
		Experience: "beginner",
		Timestamp:  "yesterday-ish",
	}.Build(now)

	assert.Equal(t, now, lead.Timestamp)
}

func TestFilterPatch(t *testing.T) {
	patch := FilterPatch(map[string]any{
		"callStatus":      "  Contacted ",
		"lastContactedAt": nil,
		"email":           "new@example.com",
		"id":              "forged-id",
		"clientIp":        "10.0.0.1",
		"sourcePage":      "/elsewhere",
		"notAField":       "x",
	})

	assert.Equal(t, map[string]string{
		"callStatus":      "Contacted",
		"lastContactedAt": "",
		"email":           "new@example.com",
	}, patch)
}

func TestFilterPatchEmptyBody(t *testing.T) {
	assert.Empty(t, FilterPatch(map[string]any{}))
}
