package models

import (
	"fmt"
	"strings"
	"time"
)

// Lead is one submitted inquiry from the enrollment funnel. Provenance
// fields (utmSummary, sourcePage, clientIp, userAgent) are write-once; the
// follow-up sub-state is mutated by the dashboard.
type Lead struct {
	ID              string     `json:"id"`
	Timestamp       time.Time  `json:"timestamp"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Experience      string     `json:"experience"`
	CurrentRole     string     `json:"currentRole"`
	Goal            string     `json:"goal"`
	UTMSummary      string     `json:"utmSummary"`
	SourcePage      string     `json:"sourcePage"`
	ClientIP        string     `json:"clientIp"`
	UserAgent       string     `json:"userAgent"`
	Action          string     `json:"action"`
	LeadSource      string     `json:"leadSource"`
	CampaignName    string     `json:"campaignName"`
	CallStatus      string     `json:"callStatus"`
	InterestStatus  string     `json:"interestStatus"`
	JoinTimeline    string     `json:"joinTimeline"`
	JoinStatus      string     `json:"joinStatus"`
	NextFollowUp    string     `json:"nextFollowUp"`
	CallNotes       string     `json:"callNotes"`
	LastContactedAt *time.Time `json:"lastContactedAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Defaults applied when a submission omits optional fields.
const (
	DefaultCallStatus     = "Not Called"
	DefaultInterestStatus = "Not Assessed"
	DefaultJoinStatus     = "Pending"
	DefaultLeadSource     = "Meta Ads"
	DefaultSourcePage     = "/enroll"
	DefaultAction         = "request_callback"
	DefaultProvenance     = "unknown"
)

// MaxGoalLength bounds the one free-text field on the public form.
const MaxGoalLength = 2000

// LeadInput carries a raw submission before sanitization. Timestamp is the
// client-supplied creation instant; unparseable values fall back to now.
type LeadInput struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Experience   string `json:"experience"`
	CurrentRole  string `json:"currentRole"`
	Goal         string `json:"goal"`
	UTMSummary   string `json:"utmSummary"`
	SourcePage   string `json:"sourcePage"`
	ClientIP     string `json:"-"`
	UserAgent    string `json:"-"`
	Action       string `json:"action"`
	LeadSource   string `json:"leadSource"`
	CampaignName string `json:"campaignName"`
	Timestamp    string `json:"timestamp"`
}

// Sanitize trims every field. Idempotent: sanitizing sanitized input is a
// no-op.
func (in LeadInput) Sanitize() LeadInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Experience = strings.TrimSpace(in.Experience)
	in.CurrentRole = strings.TrimSpace(in.CurrentRole)
	in.Goal = strings.TrimSpace(in.Goal)
	in.UTMSummary = strings.TrimSpace(in.UTMSummary)
	in.SourcePage = strings.TrimSpace(in.SourcePage)
	in.ClientIP = strings.TrimSpace(in.ClientIP)
	in.UserAgent = strings.TrimSpace(in.UserAgent)
	in.Action = strings.TrimSpace(in.Action)
	in.LeadSource = strings.TrimSpace(in.LeadSource)
	in.CampaignName = strings.TrimSpace(in.CampaignName)
	in.Timestamp = strings.TrimSpace(in.Timestamp)
	return in
}

// Validate enforces the creation contract on an already-sanitized input.
func (in LeadInput) Validate() error {
	if in.FullName == "" {
		return fmt.Errorf("fullName is required")
	}
	if in.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(in.Email, "@") || strings.ContainsAny(in.Email, " \t") {
		return fmt.Errorf("email %q is not a valid address", in.Email)
	}
	if in.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if in.Experience == "" {
		return fmt.Errorf("experience is required")
	}
	if len(in.Goal) > MaxGoalLength {
		return fmt.Errorf("goal exceeds %d characters", MaxGoalLength)
	}
	return nil
}

// Build turns a sanitized input into a Lead with defaults applied. The id
// is assigned by the store at insert time, never by the caller.
func (in LeadInput) Build(now time.Time) Lead {
	lead := Lead{
		Timestamp:      now,
		FullName:       in.FullName,
		Email:          in.Email,
		Phone:          in.Phone,
		Experience:     in.Experience,
		CurrentRole:    in.CurrentRole,
		Goal:           in.Goal,
		UTMSummary:     in.UTMSummary,
		SourcePage:     defaultIfEmpty(in.SourcePage, DefaultSourcePage),
		ClientIP:       defaultIfEmpty(in.ClientIP, DefaultProvenance),
		UserAgent:      defaultIfEmpty(in.UserAgent, DefaultProvenance),
		Action:         defaultIfEmpty(in.Action, DefaultAction),
		LeadSource:     defaultIfEmpty(in.LeadSource, DefaultLeadSource),
		CampaignName:   in.CampaignName,
		CallStatus:     DefaultCallStatus,
		InterestStatus: DefaultInterestStatus,
		JoinStatus:     DefaultJoinStatus,
		UpdatedAt:      now,
	}

	if in.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, in.Timestamp); err == nil {
			lead.Timestamp = ts
		}
	}

	return lead
}

func defaultIfEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// patchableFields enumerates what the dashboard may change on an existing
// lead, in the order update statements are built. Keys outside this list
// are dropped silently, never rejected.
var patchableFields = []string{
	"fullName",
	"email",
	"phone",
	"experience",
	"currentRole",
	"goal",
	"action",
	"leadSource",
	"campaignName",
	"callStatus",
	"interestStatus",
	"joinTimeline",
	"joinStatus",
	"nextFollowUp",
	"callNotes",
	"lastContactedAt",
}

// requiredOnPatch marks fields an update may replace but never blank out:
// an empty patch value keeps the stored value.
var requiredOnPatch = map[string]bool{
	"fullName":   true,
	"email":      true,
	"phone":      true,
	"experience": true,
	"action":     true,
}

func PatchableFields() []string {
	return patchableFields
}

func RequiredOnPatch(field string) bool {
	return requiredOnPatch[field]
}

// FilterPatch reduces an arbitrary JSON object to the whitelisted patch
// fields, trimming string values. Null values map to the empty string,
// which clears optional fields and is a keep-existing no-op for required
// ones.
func FilterPatch(body map[string]any) map[string]string {
	patch := make(map[string]string, len(body))
	for _, field := range patchableFields {
		raw, ok := body[field]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case nil:
			patch[field] = ""
		case string:
			patch[field] = strings.TrimSpace(v)
		default:
			patch[field] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return patch
}
