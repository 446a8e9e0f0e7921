package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/mailer"
)

const DefaultAlertCooldown = 15 * time.Minute

const (
	alertSubject = "CyberXLTR sync failed: %s %s"

	alertTemplate = `
		<h2>Sync permanently failed</h2>
		<p>Entity: {{.EntityType}} {{.EntityID}}</p>
		<p>Action: {{.Action}}</p>
		<p>Endpoint: {{.Endpoint}}</p>
		<p>Attempts: {{.Attempts}}</p>
		{{if .StatusCode}}<p>Last status: {{.StatusCode}}</p>{{end}}
		{{if .Error}}<p>Last error: {{.Error}}</p>{{end}}
		<p>Event: {{.EventID}}</p>
		{{if .Suppressed}}<p>{{.Suppressed}} more {{.EntityType}} failures since the previous alert.</p>{{end}}
	`
)

// Alert is the mail body data: the failure plus the number of failures of the
// same entity type that were swallowed by the cooldown.
type Alert struct {
	Failure
	Suppressed int
}

// MailAlerter emails every recipient about a terminal dispatch failure, at
// most once per entity type per cooldown.
type MailAlerter struct {
	l          *zap.Logger
	mlr        mailer.Mailer
	recipients []string
	cooldown   time.Duration
	now        func() time.Time

	mu         sync.Mutex
	lastSent   map[string]time.Time
	suppressed map[string]int
}

func NewMailAlerter(l *zap.Logger, mlr mailer.Mailer, recipients []string, cooldown time.Duration) *MailAlerter {
	if cooldown < 0 {
		cooldown = DefaultAlertCooldown
	}

	return &MailAlerter{
		l:          l.With(zap.String("component", "sync_alerter")),
		mlr:        mlr,
		recipients: recipients,
		cooldown:   cooldown,
		now:        time.Now,
		lastSent:   make(map[string]time.Time),
		suppressed: make(map[string]int),
	}
}

func (a *MailAlerter) DispatchFailed(_ context.Context, failure Failure) {
	alert, ok := a.admit(failure)
	if !ok {
		return
	}

	subject := fmt.Sprintf(alertSubject, failure.EntityType, failure.Action)

	for _, to := range a.recipients {
		if err := a.mlr.SendHTML(to, subject, alertTemplate, alert); err != nil {
			a.l.Error("failed to send sync failure alert", zap.Error(err), zap.String("to", to))
		}
	}
}

// admit reports whether failure opens a new cooldown window for its entity type.
func (a *MailAlerter) admit(failure Failure) (Alert, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()

	if last, ok := a.lastSent[failure.EntityType]; ok && now.Sub(last) < a.cooldown {
		a.suppressed[failure.EntityType]++
		a.l.Debug("sync failure alert suppressed",
			zap.String("entity_type", failure.EntityType),
			zap.String("entity_id", failure.EntityID),
		)

		return Alert{}, false
	}

	alert := Alert{Failure: failure, Suppressed: a.suppressed[failure.EntityType]}

	a.lastSent[failure.EntityType] = now
	delete(a.suppressed, failure.EntityType)

	return alert, true
}
