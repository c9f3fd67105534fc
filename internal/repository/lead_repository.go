package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/ksuid"

	"skillforge/api/internal/models"
)

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrNotConfigured = errors.New("lead database not configured")
)

// maxListRows bounds the dashboard listing; the table is read in bulk,
// newest first, and never paginated beyond this cap.
const maxListRows = 5000

// role_title, not current_role: CURRENT_ROLE is reserved in PostgreSQL and
// cannot appear unquoted in DDL or SET clauses.
const leadColumns = `id, created_at, full_name, email, phone, experience, role_title, goal,
	utm_summary, source_page, client_ip, user_agent, action, lead_source, campaign_name,
	call_status, interest_status, join_timeline, join_status, next_follow_up, call_notes,
	last_contacted_at, updated_at`

type LeadRepository struct {
	pool *pgxpool.Pool

	mu          sync.Mutex
	schemaReady bool
}

func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

func (r *LeadRepository) Configured() bool {
	return r.pool != nil
}

// EnsureSchema provisions the lead table. Every statement is idempotent, so
// the ready flag is only an optimization; racing first calls are harmless.
func (r *LeadRepository) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return ErrNotConfigured
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schemaReady {
		return nil
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			experience TEXT NOT NULL DEFAULT '',
			role_title TEXT NOT NULL DEFAULT '',
			goal TEXT NOT NULL DEFAULT '',
			utm_summary TEXT NOT NULL DEFAULT '',
			source_page TEXT NOT NULL DEFAULT '/enroll',
			client_ip TEXT NOT NULL DEFAULT 'unknown',
			user_agent TEXT NOT NULL DEFAULT 'unknown',
			action TEXT NOT NULL DEFAULT 'request_callback',
			lead_source TEXT NOT NULL DEFAULT 'Meta Ads',
			campaign_name TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// Follow-up columns arrived after the first deployment; add them
		// individually so older tables converge without a migration runner.
		`ALTER TABLE leads ADD COLUMN IF NOT EXISTS call_status TEXT NOT NULL DEFAULT 'Not Called'`,
		`ALTER TABLE leads ADD COLUMN IF NOT EXISTS interest_status TEXT NOT NULL DEFAULT 'Not Assessed'`,
		`ALTER TABLE leads ADD COLUMN IF NOT EXISTS join_timeline TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE leads ADD COLUMN IF NOT EXISTS join_status TEXT NOT NULL DEFAULT 'Pending'`,
		`ALTER TABLE leads ADD COLUMN IF NOT EXISTS next_follow_up TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE leads ADD COLUMN IF NOT EXISTS call_notes TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE leads ADD COLUMN IF NOT EXISTS last_contacted_at TIMESTAMPTZ`,
		`CREATE INDEX IF NOT EXISTS leads_created_at_idx ON leads (created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure leads schema: %w", err)
		}
	}

	r.schemaReady = true
	return nil
}

// Create inserts a sanitized submission and returns the stored row. The id
// is generated here and never reassigned.
func (r *LeadRepository) Create(ctx context.Context, in models.LeadInput) (models.Lead, error) {
	if r.pool == nil {
		return models.Lead{}, ErrNotConfigured
	}
	if err := r.EnsureSchema(ctx); err != nil {
		return models.Lead{}, err
	}

	lead := in.Sanitize().Build(time.Now())
	lead.ID = ksuid.New().String()

	const query = `
		INSERT INTO leads (
			id, created_at, full_name, email, phone, experience, role_title, goal,
			utm_summary, source_page, client_ip, user_agent, action, lead_source,
			campaign_name, call_status, interest_status, join_timeline, join_status,
			next_follow_up, call_notes, last_contacted_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19,
			$20, $21, $22, $23
		)
	`

	_, err := r.pool.Exec(ctx, query,
		lead.ID,
		lead.Timestamp,
		lead.FullName,
		lead.Email,
		lead.Phone,
		lead.Experience,
		lead.CurrentRole,
		lead.Goal,
		lead.UTMSummary,
		lead.SourcePage,
		lead.ClientIP,
		lead.UserAgent,
		lead.Action,
		lead.LeadSource,
		lead.CampaignName,
		lead.CallStatus,
		lead.InterestStatus,
		lead.JoinTimeline,
		lead.JoinStatus,
		lead.NextFollowUp,
		lead.CallNotes,
		lead.LastContactedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return models.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}

// List returns leads newest first, capped at maxListRows.
func (r *LeadRepository) List(ctx context.Context) ([]models.Lead, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM leads ORDER BY created_at DESC LIMIT %d`, leadColumns, maxListRows)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]models.Lead, 0, 64)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// UpdateByID applies a whitelisted patch. updated_at is bumped whenever the
// row exists, even for an empty patch. Returns ErrLeadNotFound when the id
// does not match a row.
func (r *LeadRepository) UpdateByID(ctx context.Context, id string, patch map[string]string) (models.Lead, error) {
	if r.pool == nil {
		return models.Lead{}, ErrNotConfigured
	}
	if err := r.EnsureSchema(ctx); err != nil {
		return models.Lead{}, err
	}

	query, args := buildUpdate(id, patch)
	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Lead{}, ErrLeadNotFound
		}
		return models.Lead{}, fmt.Errorf("update lead %s: %w", id, err)
	}
	return lead, nil
}

func (r *LeadRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	if r.pool == nil {
		return false, ErrNotConfigured
	}
	if err := r.EnsureSchema(ctx); err != nil {
		return false, err
	}

	cmd, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete lead %s: %w", id, err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *LeadRepository) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, ErrNotConfigured
	}
	if err := r.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

// ListDueFollowUps returns still-pending leads whose next_follow_up date is
// on or before asOf. next_follow_up holds ISO dates, so text comparison
// orders correctly.
func (r *LeadRepository) ListDueFollowUps(ctx context.Context, asOf time.Time) ([]models.Lead, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE next_follow_up <> '' AND next_follow_up <= $1 AND join_status = $2
		ORDER BY next_follow_up ASC
		LIMIT %d`, leadColumns, maxListRows)

	rows, err := r.pool.Query(ctx, query, asOf.Format("2006-01-02"), models.DefaultJoinStatus)
	if err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

var patchColumns = map[string]string{
	"fullName":        "full_name",
	"email":           "email",
	"phone":           "phone",
	"experience":      "experience",
	"currentRole":     "role_title",
	"goal":            "goal",
	"action":          "action",
	"leadSource":      "lead_source",
	"campaignName":    "campaign_name",
	"callStatus":      "call_status",
	"interestStatus":  "interest_status",
	"joinTimeline":    "join_timeline",
	"joinStatus":      "join_status",
	"nextFollowUp":    "next_follow_up",
	"callNotes":       "call_notes",
	"lastContactedAt": "last_contacted_at",
}

// buildUpdate assembles the UPDATE statement for a filtered patch. Fields
// marked required keep their stored value when the patch value is empty;
// lastContactedAt is parsed as a timestamp or written as NULL; nextFollowUp
// is normalized to an ISO date when recognizable; everything else is written
// as given, empty included.
func buildUpdate(id string, patch map[string]string) (string, []any) {
	set := []string{"updated_at = NOW()"}
	args := []any{id}
	n := 2

	for _, field := range models.PatchableFields() {
		value, ok := patch[field]
		if !ok {
			continue
		}
		column := patchColumns[field]

		switch {
		case field == "lastContactedAt":
			set = append(set, fmt.Sprintf("%s = $%d", column, n))
			args = append(args, parseContactTime(value))
		case field == "nextFollowUp":
			set = append(set, fmt.Sprintf("%s = $%d", column, n))
			args = append(args, normalizeFollowUpDate(value))
		case models.RequiredOnPatch(field):
			set = append(set, fmt.Sprintf("%s = COALESCE(NULLIF($%d, ''), %s)", column, n, column))
			args = append(args, value)
		default:
			set = append(set, fmt.Sprintf("%s = $%d", column, n))
			args = append(args, value)
		}
		n++
	}

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), leadColumns)
	return query, args
}

// normalizeFollowUpDate rewrites recognizable date forms to YYYY-MM-DD so
// the due-date text comparison in ListDueFollowUps orders correctly. Text it
// cannot parse is stored as given.
func normalizeFollowUpDate(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006/01/02", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format("2006-01-02")
		}
	}
	return value
}

func parseContactTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts
		}
	}
	return nil
}

func scanLead(row pgx.Row) (models.Lead, error) {
	var lead models.Lead
	err := row.Scan(
		&lead.ID,
		&lead.Timestamp,
		&lead.FullName,
		&lead.Email,
		&lead.Phone,
		&lead.Experience,
		&lead.CurrentRole,
		&lead.Goal,
		&lead.UTMSummary,
		&lead.SourcePage,
		&lead.ClientIP,
		&lead.UserAgent,
		&lead.Action,
		&lead.LeadSource,
		&lead.CampaignName,
		&lead.CallStatus,
		&lead.InterestStatus,
		&lead.JoinTimeline,
		&lead.JoinStatus,
		&lead.NextFollowUp,
		&lead.CallNotes,
		&lead.LastContactedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return models.Lead{}, err
	}
	return lead, nil
}
