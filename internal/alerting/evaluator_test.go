package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"telemetry-service/internal/models"
)

var methaneChannel = models.ChannelConfig{
	ID:               "ward-a-methane",
	Location:         "Ward A",
	Type:             models.Methane,
	Unit:             "ppm",
	WarningThreshold: 800,
}

var temperatureChannel = models.ChannelConfig{
	ID:               "ward-a-temperature",
	Location:         "Ward A",
	Type:             models.Temperature,
	Unit:             "°C",
	WarningThreshold: 26,
}

func entry(ch models.ChannelConfig, value float64) models.ChannelReading {
	return models.ChannelReading{
		ChannelID: ch.ID,
		Location:  ch.Location,
		Type:      ch.Type,
		Value:     value,
		Timestamp: 1000,
	}
}

func TestEvaluateMethaneBoundaryIsInclusive(t *testing.T) {
	res := Evaluate(entry(methaneChannel, 800), methaneChannel)
	require.NotNil(t, res)
	assert.Equal(t, models.SeverityWarning, res.Severity)
}

func TestEvaluateNonMethaneBoundaryIsExclusive(t *testing.T) {
	assert.Nil(t, Evaluate(entry(temperatureChannel, 26), temperatureChannel))

	res := Evaluate(entry(temperatureChannel, 26.01), temperatureChannel)
	require.NotNil(t, res)
	assert.Equal(t, models.SeverityWarning, res.Severity)
}

func TestEvaluateCriticalMultiplier(t *testing.T) {
	ch := methaneChannel
	ch.WarningThreshold = 200

	res := Evaluate(entry(ch, 241), ch)
	require.NotNil(t, res)
	assert.Equal(t, models.SeverityCritical, res.Severity)

	// 240 is not strictly above 200*1.2, so it stays a warning.
	res = Evaluate(entry(ch, 240), ch)
	require.NotNil(t, res)
	assert.Equal(t, models.SeverityWarning, res.Severity)
}

func TestEvaluateMethaneWarningMessage(t *testing.T) {
	res := Evaluate(entry(methaneChannel, 950), methaneChannel)
	require.NotNil(t, res)
	assert.Equal(t, models.SeverityWarning, res.Severity)
	assert.Equal(t, "Elevated Methane levels at Ward A: 950ppm", res.Message)
}

func TestEvaluateMethaneCriticalMessage(t *testing.T) {
	res := Evaluate(entry(methaneChannel, 961), methaneChannel)
	require.NotNil(t, res)
	assert.Equal(t, models.SeverityCritical, res.Severity)
	assert.Equal(t, "CRITICAL METHANE LEAK at Ward A: 961ppm", res.Message)
}

func TestEvaluateOtherChannelMessage(t *testing.T) {
	res := Evaluate(entry(temperatureChannel, 28), temperatureChannel)
	require.NotNil(t, res)
	assert.Equal(t, "TEMPERATURE High at Ward A: 28°C", res.Message)
}

func TestEvaluateBelowThreshold(t *testing.T) {
	assert.Nil(t, Evaluate(entry(methaneChannel, 400), methaneChannel))
	assert.Nil(t, Evaluate(entry(temperatureChannel, 24), temperatureChannel))
}

func TestEvaluateSkipsFaultedReadings(t *testing.T) {
	e := entry(methaneChannel, 5000)
	e.Fault = "sensor read failed"
	assert.Nil(t, Evaluate(e, methaneChannel))
}

func TestEvaluateZeroIsALegitimateReading(t *testing.T) {
	// Zero with no fault flag is a valid reading, never an alert.
	assert.Nil(t, Evaluate(entry(methaneChannel, 0), methaneChannel))
}
