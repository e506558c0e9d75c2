package models

// Severity of an alert. CRITICAL additionally triggers the external notifier;
// WARNING is visual-only.
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Alert records one threshold deviation on a channel. Acknowledged flips
// exactly once, false to true, and never back.
type Alert struct {
	ID           string   `json:"id"`
	ChannelID    string   `json:"sensor_channel_id"`
	Message      string   `json:"message"`
	Severity     Severity `json:"severity"`
	Timestamp    int64    `json:"timestamp"`
	Acknowledged bool     `json:"acknowledged"`
}
