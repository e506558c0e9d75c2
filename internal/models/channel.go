package models

// MeasurementType names one of the three physical quantities a node reports.
type MeasurementType string

const (
	Methane     MeasurementType = "METHANE"
	Temperature MeasurementType = "TEMPERATURE"
	Humidity    MeasurementType = "HUMIDITY"
)

// ChannelConfig is the static configuration of one sensor channel, a
// (location, measurement type) pair. Channels are defined once at startup
// and never mutated at runtime.
type ChannelConfig struct {
	ID               string          `json:"id"`
	Location         string          `json:"location"`
	Type             MeasurementType `json:"type"`
	Unit             string          `json:"unit"`
	Label            string          `json:"label"`
	SafeMin          float64         `json:"safe_min"`
	SafeMax          float64         `json:"safe_max"`
	WarningThreshold float64         `json:"warning_threshold"`
}

// Status is the liveness classification of one channel.
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
	StatusError   Status = "ERROR"
)
