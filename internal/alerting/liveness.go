package alerting

import (
	"time"

	"telemetry-service/internal/models"
)

// Classify derives a channel's liveness from its latest reading. now is
// threaded in explicitly so staleness transitions are deterministic under
// test; classification can flip to OFFLINE purely from wall-clock advance.
func Classify(latest *models.ChannelReading, now time.Time, offline time.Duration) models.Status {
	if latest == nil {
		return models.StatusOffline
	}
	if now.UnixMilli()-latest.Timestamp > offline.Milliseconds() {
		return models.StatusOffline
	}
	if latest.Fault != "" {
		return models.StatusError
	}
	return models.StatusOnline
}
