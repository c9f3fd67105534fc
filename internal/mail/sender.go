package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"skillforge/api/internal/config"
	"skillforge/api/internal/models"
)

const leadNotificationTemplate = `<h2>New enrollment lead</h2>
<p><strong>{{.FullName}}</strong> ({{.Email}}, {{.Phone}})</p>
<ul>
  <li>Experience: {{.Experience}}</li>
  <li>Current role: {{.CurrentRole}}</li>
  <li>Goal: {{.Goal}}</li>
  <li>Source: {{.LeadSource}} / {{.SourcePage}}</li>
  <li>Campaign: {{.CampaignName}}</li>
</ul>
<p>Lead id {{.ID}}, received {{.Timestamp.Format "2006-01-02 15:04 MST"}}.</p>`

var leadTmpl = template.Must(template.New("lead").Parse(leadNotificationTemplate))

// Sender emails the enrollment team when a new lead arrives. Notification
// is best-effort; delivery failures never affect the submission response.
type Sender struct {
	cfg config.MailConfig
}

func NewSender(cfg config.MailConfig) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) Enabled() bool {
	return s != nil && s.cfg.Host != "" && s.cfg.NotifyTo != ""
}

func (s *Sender) SendLeadNotification(lead models.Lead) error {
	var body bytes.Buffer
	if err := leadTmpl.Execute(&body, lead); err != nil {
		return fmt.Errorf("render lead notification: %w", err)
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", s.cfg.NotifyTo)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %s (%s)", lead.FullName, lead.LeadSource))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}
	return nil
}
