package alerting

import (
	"fmt"
	"strconv"

	"telemetry-service/internal/models"
)

// criticalMultiplier is the hysteresis factor: a value must exceed the
// warning threshold by 20% to escalate from WARNING to CRITICAL.
const criticalMultiplier = 1.2

// Result is a non-null threshold evaluation outcome.
type Result struct {
	Severity models.Severity
	Message  string
}

// Evaluate maps one channel reading against its channel configuration.
// Returns nil when the value does not warrant an alert or the reading
// carries a sensor fault.
//
// The warning boundary is asymmetric on purpose: methane alerts at or above
// the threshold, every other channel type only strictly above it.
func Evaluate(cr models.ChannelReading, cfg models.ChannelConfig) *Result {
	if cr.Fault != "" {
		return nil
	}

	w := cfg.WarningThreshold
	value := cr.Value

	switch {
	case value > w*criticalMultiplier:
		return &Result{
			Severity: models.SeverityCritical,
			Message:  message(models.SeverityCritical, cr, cfg),
		}
	case cfg.Type == models.Methane && value >= w:
		return &Result{
			Severity: models.SeverityWarning,
			Message:  message(models.SeverityWarning, cr, cfg),
		}
	case cfg.Type != models.Methane && value > w:
		return &Result{
			Severity: models.SeverityWarning,
			Message:  message(models.SeverityWarning, cr, cfg),
		}
	}
	return nil
}

// message renders the fixed, channel-type-specific alert text. Downstream
// consumers categorize history entries by keyword, so the structure is
// load-bearing and must stay stable.
func message(sev models.Severity, cr models.ChannelReading, cfg models.ChannelConfig) string {
	value := strconv.FormatFloat(cr.Value, 'f', -1, 64)
	if cfg.Type == models.Methane {
		if sev == models.SeverityCritical {
			return fmt.Sprintf("CRITICAL METHANE LEAK at %s: %s%s", cfg.Location, value, cfg.Unit)
		}
		return fmt.Sprintf("Elevated Methane levels at %s: %s%s", cfg.Location, value, cfg.Unit)
	}
	return fmt.Sprintf("%s High at %s: %s%s", cfg.Type, cfg.Location, value, cfg.Unit)
}
