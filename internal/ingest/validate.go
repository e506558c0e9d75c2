package ingest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"telemetry-service/internal/models"
)

// ErrInvalidPayload marks a malformed ingestion record. It is rejected at the
// boundary, never stored, and never retried by the engine.
var ErrInvalidPayload = errors.New("invalid payload")

const (
	defaultDeviceID = "esp32-001"
	defaultLocation = "Ward A"
)

// ReadingInput is the inbound wire record. Measurement fields are pointers so
// an absent field is distinguishable from an explicit zero: absent without an
// error string is rejected, absent alongside an error defaults to zero.
type ReadingInput struct {
	DeviceID    string   `json:"device_id"`
	Location    string   `json:"location"`
	Methane     *float64 `json:"methane"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Timestamp   *int64   `json:"timestamp"`
	Error       string   `json:"error"`
}

// Validate normalizes in into a storable Reading. Missing identity fields are
// defaulted; missing or non-finite measurements without an accompanying error
// string fail with ErrInvalidPayload. now supplies the receipt time used when
// the sender omitted a timestamp.
func Validate(in ReadingInput, now time.Time) (models.Reading, error) {
	r := models.Reading{
		DeviceID: in.DeviceID,
		Location: in.Location,
		Error:    in.Error,
	}
	if r.DeviceID == "" {
		r.DeviceID = defaultDeviceID
	}
	if r.Location == "" {
		r.Location = defaultLocation
	}
	if in.Timestamp != nil && *in.Timestamp > 0 {
		r.Timestamp = *in.Timestamp
	} else {
		r.Timestamp = now.UnixMilli()
	}

	fields := []struct {
		name string
		val  *float64
		dst  *float64
	}{
		{"methane", in.Methane, &r.Methane},
		{"temperature", in.Temperature, &r.Temperature},
		{"humidity", in.Humidity, &r.Humidity},
	}
	for _, f := range fields {
		if f.val == nil {
			if in.Error == "" {
				return models.Reading{}, fmt.Errorf("%w: missing %s", ErrInvalidPayload, f.name)
			}
			// Sensor fault: field stores as zero. Zero with no error stays a
			// legitimate reading, so the fault flag is the only discriminator.
			continue
		}
		if math.IsNaN(*f.val) || math.IsInf(*f.val, 0) {
			return models.Reading{}, fmt.Errorf("%w: %s is not a finite number", ErrInvalidPayload, f.name)
		}
		*f.dst = *f.val
	}
	return r, nil
}
