package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestValidateDefaultsIdentityFields(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	r, err := Validate(ReadingInput{Methane: f(420), Temperature: f(22), Humidity: f(55)}, now)
	require.NoError(t, err)

	assert.Equal(t, "esp32-001", r.DeviceID)
	assert.Equal(t, "Ward A", r.Location)
	assert.Equal(t, now.UnixMilli(), r.Timestamp)
	assert.Equal(t, 420.0, r.Methane)
	assert.Equal(t, 22.0, r.Temperature)
	assert.Equal(t, 55.0, r.Humidity)
}

func TestValidateKeepsSenderFields(t *testing.T) {
	ts := int64(1_700_000_000_000)
	r, err := Validate(ReadingInput{
		DeviceID:    "esp32-007",
		Location:    "ICU",
		Methane:     f(0),
		Temperature: f(21.5),
		Humidity:    f(48),
		Timestamp:   &ts,
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "esp32-007", r.DeviceID)
	assert.Equal(t, "ICU", r.Location)
	assert.Equal(t, ts, r.Timestamp)
	// Zero with no error flag is a legitimate reading.
	assert.Equal(t, 0.0, r.Methane)
	assert.Empty(t, r.Error)
}

func TestValidateRejectsMissingMeasurement(t *testing.T) {
	_, err := Validate(ReadingInput{Methane: f(420), Temperature: f(22)}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestValidateMissingMeasurementWithErrorDefaultsToZero(t *testing.T) {
	r, err := Validate(ReadingInput{Error: "DHT read failed"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.Methane)
	assert.Equal(t, 0.0, r.Temperature)
	assert.Equal(t, 0.0, r.Humidity)
	assert.Equal(t, "DHT read failed", r.Error)
}

func TestValidateRejectsNonFiniteValues(t *testing.T) {
	_, err := Validate(ReadingInput{Methane: f(math.NaN()), Temperature: f(22), Humidity: f(50)}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Validate(ReadingInput{Methane: f(400), Temperature: f(math.Inf(1)), Humidity: f(50)}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
