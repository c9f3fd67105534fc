package jobs

import (
	"context"
	"encoding/csv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"skillforge/api/internal/models"
	"skillforge/api/internal/repository"
	"skillforge/api/internal/storage"
)

// Scheduler runs the two background jobs: a daily report of leads whose
// follow-up date has passed, and a weekly CSV snapshot of the lead table.
type Scheduler struct {
	cron      *cron.Cron
	leads     *repository.LeadRepository
	snapshots *storage.SnapshotStore
	log       zerolog.Logger
}

func NewScheduler(leads *repository.LeadRepository, snapshots *storage.SnapshotStore, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		leads:     leads,
		snapshots: snapshots,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.leads == nil || !s.leads.Configured() {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 8 * * *", s.reportDueFollowUps); err != nil {
		return err
	}
	if s.snapshots != nil {
		if _, err := s.cron.AddFunc("0 0 6 * * 1", s.uploadSnapshot); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, up to a bound.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) reportDueFollowUps() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	due, err := s.leads.ListDueFollowUps(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("due follow-up scan failed")
		return
	}
	if len(due) == 0 {
		s.log.Debug().Msg("no overdue follow-ups")
		return
	}

	names := make([]string, 0, len(due))
	for _, lead := range due {
		names = append(names, lead.FullName)
	}
	s.log.Info().
		Int("count", len(due)).
		Str("leads", strings.Join(names, ", ")).
		Msg("overdue follow-ups")
}

func (s *Scheduler) uploadSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	leads, err := s.leads.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("snapshot listing failed")
		return
	}

	name := "leads-" + time.Now().Format("20060102") + ".csv"
	if err := s.snapshots.PutCSV(ctx, name, leadsCSV(leads)); err != nil {
		s.log.Error().Err(err).Msg("snapshot upload failed")
		return
	}
	s.log.Info().Str("object", name).Int("rows", len(leads)).Msg("lead snapshot uploaded")
}

func leadsCSV(leads []models.Lead) []byte {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{
		"id", "timestamp", "fullName", "email", "phone", "experience", "currentRole",
		"goal", "utmSummary", "sourcePage", "leadSource", "campaignName",
		"callStatus", "interestStatus", "joinTimeline", "joinStatus",
		"nextFollowUp", "callNotes", "lastContactedAt", "updatedAt",
	})

	for _, l := range leads {
		lastContacted := ""
		if l.LastContactedAt != nil {
			lastContacted = l.LastContactedAt.Format(time.RFC3339)
		}
		_ = w.Write([]string{
			l.ID,
			l.Timestamp.Format(time.RFC3339),
			l.FullName,
			l.Email,
			l.Phone,
			l.Experience,
			l.CurrentRole,
			l.Goal,
			l.UTMSummary,
			l.SourcePage,
			l.LeadSource,
			l.CampaignName,
			l.CallStatus,
			l.InterestStatus,
			l.JoinTimeline,
			l.JoinStatus,
			l.NextFollowUp,
			l.CallNotes,
			lastContacted,
			l.UpdatedAt.Format(time.RFC3339),
		})
	}

	w.Flush()
	return []byte(buf.String())
}
