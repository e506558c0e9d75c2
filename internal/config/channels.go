package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"telemetry-service/internal/models"
)

// DefaultLocations are the monitored zones of the default deployment.
var DefaultLocations = []string{"Ward A", "Ward B", "ICU"}

// DefaultChannels returns the static channel table for the default
// deployment: three locations, three measurement types each.
func DefaultChannels() []models.ChannelConfig {
	var out []models.ChannelConfig
	for _, loc := range DefaultLocations {
		out = append(out,
			models.ChannelConfig{
				ID:               channelID(loc, "methane"),
				Location:         loc,
				Type:             models.Methane,
				Unit:             "ppm",
				Label:            "Methane",
				SafeMin:          0,
				SafeMax:          800,
				WarningThreshold: 800,
			},
			models.ChannelConfig{
				ID:               channelID(loc, "temperature"),
				Location:         loc,
				Type:             models.Temperature,
				Unit:             "°C",
				Label:            "Temperature",
				SafeMin:          18,
				SafeMax:          26,
				WarningThreshold: 26,
			},
			models.ChannelConfig{
				ID:               channelID(loc, "humidity"),
				Location:         loc,
				Type:             models.Humidity,
				Unit:             "%",
				Label:            "Humidity",
				SafeMin:          30,
				SafeMax:          70,
				WarningThreshold: 70,
			},
		)
	}
	return out
}

// LoadChannels returns the channel table, reading CHANNELS_FILE when set.
// The table is fixed for the life of the process.
func LoadChannels() ([]models.ChannelConfig, error) {
	path := os.Getenv("CHANNELS_FILE")
	if path == "" {
		return DefaultChannels(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels file %s: %w", path, err)
	}
	var channels []models.ChannelConfig
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, fmt.Errorf("invalid channels file %s: %w", path, err)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("channels file %s defines no channels", path)
	}
	return channels, nil
}

func channelID(location, kind string) string {
	loc := strings.ToLower(strings.ReplaceAll(location, " ", "-"))
	return loc + "-" + kind
}
