package hrl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gohighway/environment"
	ts "github.com/samuelfneumann/gohighway/timestep"
	"github.com/samuelfneumann/gohighway/utils/floatutils"
)

// Info keys for the individual shaped reward components
const (
	InfoRightLaneReward = "right_lane_reward"
	InfoHighSpeedReward = "high_speed_reward"
	InfoOnRoad          = "on_road"
)

// ShapedRewardConfig holds the parameters of the shaped reward
type ShapedRewardConfig struct {
	// RightLaneWeight and HighSpeedWeight weigh the two components
	RightLaneWeight float64 `yaml:"right_lane_weight"`
	HighSpeedWeight float64 `yaml:"high_speed_weight"`

	// LaneTolerance is the factor deriving the lane-centering margin
	// from the simulator's policy frequency
	LaneTolerance float64 `yaml:"lane_tolerance"`

	// Normalize rescales each tick's reward to [0, 1] using the
	// theoretical bounds of the weighted sum
	Normalize bool `yaml:"normalize"`
}

// DefaultShapedRewardConfig returns the default shaped reward
// configuration
func DefaultShapedRewardConfig() ShapedRewardConfig {
	return ShapedRewardConfig{
		RightLaneWeight: 0.1,
		HighSpeedWeight: 0.4,
		LaneTolerance:   1.5,
		Normalize:       true,
	}
}

// ShapedReward wraps a Simulator and replaces the reward of every
// primitive tick with one recomputed from the vehicle's state:
//
// The lane-centering component grows toward the rightmost lane,
// lane / max(laneCount-1, 1), and is paid only while the lateral
// offset is within tolerance of the lane center.
//
// The speed component maps the forward speed, speed * cos(heading),
// linearly from the simulator's reward speed range onto [0, 1].
// Exceeding the top of the range earns nothing, not a bonus.
//
// The weighted sum is optionally normalized to [0, 1] and is zeroed
// on any tick where the vehicle is off the road or crashed.
//
// Each returned timestep carries the individual components in its
// info map. ShapedReward itself implements Simulator, so it slots
// between the simulator and any wrapper above it.
type ShapedReward struct {
	Simulator
	config ShapedRewardConfig

	// tolerance is the lane-centering margin in meters
	tolerance float64

	currentStep ts.TimeStep
}

// NewShapedReward returns a new ShapedReward wrapper around sim
func NewShapedReward(sim Simulator, config ShapedRewardConfig) (*ShapedReward,
	ts.TimeStep, error) {
	if config.RightLaneWeight < 0 || config.HighSpeedWeight < 0 {
		return nil, ts.TimeStep{}, fmt.Errorf("newShapedReward: component "+
			"weights must be non-negative, got %v and %v",
			config.RightLaneWeight, config.HighSpeedWeight)
	}
	if config.LaneTolerance <= 0 {
		return nil, ts.TimeStep{}, fmt.Errorf("newShapedReward: lane "+
			"tolerance factor must be positive, got %v", config.LaneTolerance)
	}

	s := &ShapedReward{
		Simulator:   sim,
		config:      config,
		tolerance:   config.LaneTolerance / sim.PolicyFrequency(),
		currentStep: sim.CurrentTimeStep(),
	}
	return s, s.currentStep, nil
}

// Reset resets the wrapped simulator
func (s *ShapedReward) Reset() (ts.TimeStep, error) {
	step, err := s.Simulator.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	s.currentStep = step
	return step, nil
}

// Step takes one primitive step in the wrapped simulator and replaces
// the resulting reward with the shaped reward
func (s *ShapedReward) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	step, last, err := s.Simulator.Step(action)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}

	rightLane := s.rightLaneReward()
	highSpeed := s.highSpeedReward()

	reward := s.config.RightLaneWeight*rightLane +
		s.config.HighSpeedWeight*highSpeed
	if s.config.Normalize {
		max := s.config.RightLaneWeight + s.config.HighSpeedWeight
		reward = floatutils.LinearMap(reward, r1.Interval{Min: 0, Max: max},
			r1.Interval{Min: 0, Max: 1})
	}
	if !s.OnRoad() || s.Crashed() {
		reward = 0
	}

	step.Reward = reward
	step.SetInfo(InfoRightLaneReward, rightLane)
	step.SetInfo(InfoHighSpeedReward, highSpeed)
	step.SetInfo(InfoOnRoad, boolToFloat(s.OnRoad()))

	s.currentStep = step
	return step, last, nil
}

// CurrentTimeStep returns the last timestep of the wrapper
func (s *ShapedReward) CurrentTimeStep() ts.TimeStep {
	return s.currentStep
}

// rightLaneReward computes the lane-centering component
func (s *ShapedReward) rightLaneReward() float64 {
	if math.Abs(s.LaneOffset()) >= s.tolerance {
		return 0
	}

	denom := floatutils.Max(float64(s.LaneCount()-1), 1.0)
	return float64(s.Lane()) / denom
}

// highSpeedReward computes the speed component
func (s *ShapedReward) highSpeedReward() float64 {
	forwardSpeed := s.Speed() * math.Cos(s.Heading())
	scaled := floatutils.LinearMap(forwardSpeed, s.RewardSpeedRange(),
		r1.Interval{Min: 0, Max: 1})
	if scaled > 1 {
		return 0
	}
	return floatutils.Clip(scaled, 0, 1)
}

// RewardSpec returns the reward specification of the wrapper
func (s *ShapedReward) RewardSpec() env.Spec {
	rewardSpec := s.Simulator.RewardSpec()
	rewardSpec.LowerBound = mat.NewVecDense(1, []float64{s.Min()})
	rewardSpec.UpperBound = mat.NewVecDense(1, []float64{s.Max()})
	return rewardSpec
}

// Min returns the minimum attainable shaped reward
func (s *ShapedReward) Min() float64 {
	return 0.0
}

// Max returns the maximum attainable shaped reward
func (s *ShapedReward) Max() float64 {
	if s.config.Normalize {
		return 1.0
	}
	return s.config.RightLaneWeight + s.config.HighSpeedWeight
}

// String returns a string representation of the wrapper
func (s *ShapedReward) String() string {
	return fmt.Sprintf("ShapedReward: %v", s.Simulator)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
