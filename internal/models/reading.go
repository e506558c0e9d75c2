package models

// Reading is one telemetry sample pushed by a sensor node. Timestamps are
// milliseconds since epoch, assigned by the node; the store never re-stamps.
// A non-empty Error marks a sensor fault; the numeric fields still store as
// reported (zero when the node could not read), so zero with no error is a
// legitimate reading.
type Reading struct {
	DeviceID    string  `json:"device_id"`
	Location    string  `json:"location"`
	Methane     float64 `json:"methane"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   int64   `json:"timestamp"`
	Error       string  `json:"error,omitempty"`
}

// ValueFor returns the measurement for the given channel type.
func (r Reading) ValueFor(t MeasurementType) float64 {
	switch t {
	case Methane:
		return r.Methane
	case Temperature:
		return r.Temperature
	case Humidity:
		return r.Humidity
	}
	return 0
}

// ChannelReading is a Reading projected onto a single sensor channel. The
// polling reconciler expands each raw reading into one ChannelReading per
// configured channel at its location.
type ChannelReading struct {
	ChannelID string          `json:"channel_id"`
	Location  string          `json:"location"`
	Type      MeasurementType `json:"type"`
	Value     float64         `json:"value"`
	Timestamp int64           `json:"timestamp"`
	Fault     string          `json:"fault,omitempty"`
}

// EntryKey identifies a ChannelReading for deduplication across overlapping
// poll windows.
type EntryKey struct {
	ChannelID string
	Timestamp int64
}

// Key returns the deduplication key for this entry.
func (c ChannelReading) Key() EntryKey {
	return EntryKey{ChannelID: c.ChannelID, Timestamp: c.Timestamp}
}
