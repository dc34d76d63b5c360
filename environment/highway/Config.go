package highway

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r1"
	"gopkg.in/yaml.v2"
)

// Config enumerates the static simulation parameters that the highway
// environment and the goal controllers built on top of it read. It
// replaces the free-form configuration dictionaries of similar
// simulators with a fixed, typed surface.
type Config struct {
	// Road geometry
	LanesCount int     `yaml:"lanes_count"`
	LaneWidth  float64 `yaml:"lane_width"`

	// Control frequencies in Hz. The environment accepts one action
	// per policy period and integrates the physics at the simulation
	// frequency, so each Step() runs one or more physics substeps.
	PolicyFrequency     float64 `yaml:"policy_frequency"`
	SimulationFrequency float64 `yaml:"simulation_frequency"`

	// Traffic
	VehiclesCount  int     `yaml:"vehicles_count"`
	VehicleSpacing float64 `yaml:"vehicle_spacing"`
	InitialLaneID  int     `yaml:"initial_lane_id"` // -1 samples a lane

	// Episode
	Duration        float64 `yaml:"duration"` // seconds
	OffroadTerminal bool    `yaml:"offroad_terminal"`

	// Speed bounds on the controlled vehicle in m/s
	MinSpeed float64 `yaml:"min_speed"`
	MaxSpeed float64 `yaml:"max_speed"`

	// Reward structure
	CollisionReward  float64    `yaml:"collision_reward"`
	RightLaneReward  float64    `yaml:"right_lane_reward"`
	HighSpeedReward  float64    `yaml:"high_speed_reward"`
	RewardSpeedRange [2]float64 `yaml:"reward_speed_range"`
	NormalizeReward  bool       `yaml:"normalize_reward"`

	// Observation: number of vehicle rows, controlled vehicle included
	ObservedVehicles int `yaml:"observed_vehicles"`
}

// DefaultConfig returns the default highway configuration: a five lane
// road at 15 Hz with twenty IDM vehicles and the usual
// collision/right-lane/high-speed reward structure.
func DefaultConfig() Config {
	return Config{
		LanesCount:          5,
		LaneWidth:           4.0,
		PolicyFrequency:     15.0,
		SimulationFrequency: 15.0,
		VehiclesCount:       20,
		VehicleSpacing:      25.0,
		InitialLaneID:       -1,
		Duration:            40.0,
		OffroadTerminal:     true,
		MinSpeed:            -40.0,
		MaxSpeed:            40.0,
		CollisionReward:     -1.0,
		RightLaneReward:     0.1,
		HighSpeedReward:     0.4,
		RewardSpeedRange:    [2]float64{20.0, 30.0},
		NormalizeReward:     true,
		ObservedVehicles:    5,
	}
}

// LoadConfig reads a YAML configuration file, filling any omitted
// fields with their defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not read config "+
			"file: %v", err)
	}

	if err := yaml.Unmarshal(file, &config); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not parse config "+
			"file: %v", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v", err)
	}
	return config, nil
}

// validate checks the configuration for values the simulation cannot
// run with
func (c Config) validate() error {
	if c.LanesCount < 1 {
		return fmt.Errorf("validate: lanes_count must be positive, "+
			"got %v", c.LanesCount)
	}
	if c.LaneWidth <= 0 {
		return fmt.Errorf("validate: lane_width must be positive, got %v",
			c.LaneWidth)
	}
	if c.PolicyFrequency <= 0 || c.SimulationFrequency <= 0 {
		return fmt.Errorf("validate: frequencies must be positive, "+
			"got policy %v and simulation %v Hz", c.PolicyFrequency,
			c.SimulationFrequency)
	}
	if c.SimulationFrequency < c.PolicyFrequency {
		return fmt.Errorf("validate: simulation_frequency (%v Hz) must be "+
			"at least policy_frequency (%v Hz)", c.SimulationFrequency,
			c.PolicyFrequency)
	}
	if c.MinSpeed >= c.MaxSpeed {
		return fmt.Errorf("validate: min_speed %v must be below max_speed %v",
			c.MinSpeed, c.MaxSpeed)
	}
	if c.RewardSpeedRange[0] >= c.RewardSpeedRange[1] {
		return fmt.Errorf("validate: reward_speed_range %v must be "+
			"increasing", c.RewardSpeedRange)
	}
	if c.ObservedVehicles < 1 {
		return fmt.Errorf("validate: observed_vehicles must be positive, "+
			"got %v", c.ObservedVehicles)
	}
	if c.InitialLaneID >= c.LanesCount {
		return fmt.Errorf("validate: initial_lane_id %v outside road with "+
			"%v lanes", c.InitialLaneID, c.LanesCount)
	}
	return nil
}

// speedBounds returns the controlled vehicle's speed bounds as an
// interval
func (c Config) speedBounds() r1.Interval {
	return r1.Interval{Min: c.MinSpeed, Max: c.MaxSpeed}
}

// RewardSpeedBounds returns the speed range that earns speed reward as
// an interval
func (c Config) RewardSpeedBounds() r1.Interval {
	return r1.Interval{Min: c.RewardSpeedRange[0], Max: c.RewardSpeedRange[1]}
}
