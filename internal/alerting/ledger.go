package alerting

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

var (
	ErrAlertNotFound       = errors.New("alert not found")
	ErrAlreadyAcknowledged = errors.New("alert already acknowledged")
)

// Notifier is the external collaborator invoked on CRITICAL alert creation.
// Delivery is best-effort; the ledger never waits on it.
type Notifier interface {
	Notify(alert models.Alert)
}

// Ledger creates, debounces, stores, and acknowledges alerts. All alerts are
// retained for the life of the process; acknowledged ones move out of the
// active view and into history. A single mutex serializes mutation.
type Ledger struct {
	mu         sync.Mutex
	alerts     []*models.Alert
	debounce   time.Duration
	displayCap int
	notifier   Notifier
	logger     *logging.Logger
}

// NewLedger constructs a Ledger. notifier may be nil.
func NewLedger(debounce time.Duration, displayCap int, notifier Notifier, logger *logging.Logger) *Ledger {
	return &Ledger{
		alerts:     make([]*models.Alert, 0),
		debounce:   debounce,
		displayCap: displayCap,
		notifier:   notifier,
		logger:     logger,
	}
}

// Record applies the debounce rule and creates a new alert when it passes:
// no alert is created while an unacknowledged alert for the same channel
// exists inside the debounce window. Acknowledging the previous alert (or
// letting it age out) re-arms the channel immediately. Returns the created
// alert and true, or the suppressing alert and false.
//
// Only CRITICAL creation triggers the notifier. WARNING is visual-only, a
// deliberate protocol distinction.
func (l *Ledger) Record(channelID string, sev models.Severity, msg string, now time.Time) (models.Alert, bool) {
	l.mu.Lock()

	for i := len(l.alerts) - 1; i >= 0; i-- {
		a := l.alerts[i]
		if a.ChannelID != channelID || a.Acknowledged {
			continue
		}
		if now.UnixMilli()-a.Timestamp < l.debounce.Milliseconds() {
			suppressor := *a
			l.mu.Unlock()
			return suppressor, false
		}
	}

	alert := &models.Alert{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		Message:   msg,
		Severity:  sev,
		Timestamp: now.UnixMilli(),
	}
	l.alerts = append(l.alerts, alert)
	created := *alert
	l.mu.Unlock()

	l.logger.Infof("Alert created: id=%s channel=%s severity=%s", created.ID, channelID, sev)
	if sev == models.SeverityCritical && l.notifier != nil {
		go l.notifier.Notify(created)
	}
	return created, true
}

// Acknowledge flips an alert to acknowledged, exactly once.
func (l *Ledger) Acknowledge(id string) (models.Alert, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, a := range l.alerts {
		if a.ID != id {
			continue
		}
		if a.Acknowledged {
			return *a, ErrAlreadyAcknowledged
		}
		a.Acknowledged = true
		l.logger.Infof("Alert acknowledged: id=%s channel=%s", a.ID, a.ChannelID)
		return *a, nil
	}
	return models.Alert{}, ErrAlertNotFound
}

// Active returns unacknowledged alerts, CRITICAL before WARNING, then
// most-recent-first.
func (l *Ledger) Active() []models.Alert {
	l.mu.Lock()
	out := make([]models.Alert, 0)
	for _, a := range l.alerts {
		if !a.Acknowledged {
			out = append(out, *a)
		}
	}
	l.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity == models.SeverityCritical
		}
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// History returns acknowledged alerts most-recent-first. limit <= 0 applies
// the configured display cap; the full history stays retained regardless.
func (l *Ledger) History(limit int) []models.Alert {
	if limit <= 0 {
		limit = l.displayCap
	}

	l.mu.Lock()
	out := make([]models.Alert, 0)
	for _, a := range l.alerts {
		if a.Acknowledged {
			out = append(out, *a)
		}
	}
	l.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
