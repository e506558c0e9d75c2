package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"telemetry-service/internal/models"
)

func TestDefaultChannels(t *testing.T) {
	channels := DefaultChannels()
	require.Len(t, channels, 9)

	byID := make(map[string]models.ChannelConfig)
	for _, ch := range channels {
		byID[ch.ID] = ch
	}

	methane, ok := byID["ward-a-methane"]
	require.True(t, ok)
	assert.Equal(t, "Ward A", methane.Location)
	assert.Equal(t, models.Methane, methane.Type)
	assert.Equal(t, "ppm", methane.Unit)
	assert.Equal(t, 800.0, methane.WarningThreshold)

	temp, ok := byID["icu-temperature"]
	require.True(t, ok)
	assert.Equal(t, "ICU", temp.Location)
	assert.Equal(t, 26.0, temp.WarningThreshold)
}

func TestLoadChannelsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
        {"id": "lab-methane", "location": "Lab", "type": "METHANE", "unit": "ppm", "warning_threshold": 500}
    ]`), 0644))
	t.Setenv("CHANNELS_FILE", path)

	channels, err := LoadChannels()
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "lab-methane", channels[0].ID)
	assert.Equal(t, 500.0, channels[0].WarningThreshold)
}

func TestLoadChannelsRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))
	t.Setenv("CHANNELS_FILE", path)

	_, err := LoadChannels()
	assert.Error(t, err)
}
