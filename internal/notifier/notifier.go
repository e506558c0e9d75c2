package notifier

import (
	"context"
	"time"

	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

// Provider delivers a critical alert over one channel (telegram, websocket).
type Provider interface {
	Name() string
	Send(ctx context.Context, alert models.Alert) error
}

// Dispatcher fans a critical alert out to all configured providers.
// Delivery is best-effort: failures are logged and never propagated back to
// the alert ledger.
type Dispatcher struct {
	providers []Provider
	logger    *logging.Logger
	timeout   time.Duration
}

// NewDispatcher constructs a Dispatcher over the given providers.
func NewDispatcher(logger *logging.Logger, providers ...Provider) *Dispatcher {
	return &Dispatcher{providers: providers, logger: logger, timeout: 10 * time.Second}
}

// Notify implements alerting.Notifier.
func (d *Dispatcher) Notify(alert models.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, p := range d.providers {
		if err := p.Send(ctx, alert); err != nil {
			d.logger.Errorf("Notify via %s failed for alert %s: %v", p.Name(), alert.ID, err)
			continue
		}
		d.logger.Infof("Notified via %s: alert=%s", p.Name(), alert.ID)
	}
}
