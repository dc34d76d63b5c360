package highway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

// TestLoadConfigOverrides checks that a config file overrides only the
// fields it names, leaving the rest at their defaults.
func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte("lanes_count: 3\npolicy_frequency: 10\n" +
		"vehicles_count: 0\nduration: 20\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, config.LanesCount)
	assert.Equal(t, 10.0, config.PolicyFrequency)
	assert.Equal(t, 0, config.VehiclesCount)
	assert.Equal(t, 20.0, config.Duration)

	// Untouched fields keep their defaults
	assert.Equal(t, 4.0, config.LaneWidth)
	assert.Equal(t, [2]float64{20, 30}, config.RewardSpeedRange)
	assert.True(t, config.NormalizeReward)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	require.NoError(t, valid.validate())

	for name, mutate := range map[string]func(*Config){
		"no lanes":              func(c *Config) { c.LanesCount = 0 },
		"zero lane width":       func(c *Config) { c.LaneWidth = 0 },
		"zero frequency":        func(c *Config) { c.PolicyFrequency = 0 },
		"sim slower than policy": func(c *Config) {
			c.SimulationFrequency = c.PolicyFrequency / 2
		},
		"inverted speed bounds": func(c *Config) { c.MinSpeed = c.MaxSpeed },
		"inverted reward range": func(c *Config) {
			c.RewardSpeedRange = [2]float64{30, 20}
		},
		"no observed vehicles": func(c *Config) { c.ObservedVehicles = 0 },
		"starting lane off road": func(c *Config) {
			c.InitialLaneID = c.LanesCount
		},
	} {
		config := DefaultConfig()
		mutate(&config)
		assert.Error(t, config.validate(), name)
	}
}
