package hrl

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gohighway/environment"
	ts "github.com/samuelfneumann/gohighway/timestep"
)

// High-level actions. MaintainSpeed exists only when the wrapper is
// configured with it; otherwise the action space ends at SpeedUp.
const (
	Forward int = iota // hold the lane and move forward
	ChangeLeft
	ChangeRight
	SlowDown
	SpeedUp
	MaintainSpeed
)

// Info keys injected into each macro-step's returned timestep
const (
	// InfoHLSteps and InfoLLSteps count the high-level and low-level
	// steps taken in the current episode
	InfoHLSteps = "HL_step_count"
	InfoLLSteps = "LL_step_count"

	// InfoLLStepsTotal counts low-level steps across all episodes
	InfoLLStepsTotal = "LL_step_count_total"

	// InfoPosX and InfoPosY hold the controlled vehicle's position
	InfoPosX = "pos_x"
	InfoPosY = "pos_y"

	// InfoEpisode counts completed calls to Reset
	InfoEpisode = "episode"
)

// Config holds the parameters of the macro-action wrapper. Tolerances
// are factors later divided by the simulator's policy frequency, never
// absolute margins, so that the controllers converge within one
// control tick at any configured frequency.
type Config struct {
	// ForwardDistance is the distance in meters covered by the
	// Forward action
	ForwardDistance float64 `yaml:"forward_distance"`

	// SpeedDelta is the speed change in m/s requested by the SlowDown
	// and SpeedUp actions
	SpeedDelta float64 `yaml:"speed_delta"`

	// LaneTolerance and SpeedTolerance are the goal tolerance factors
	LaneTolerance  float64 `yaml:"lane_tolerance"`
	SpeedTolerance float64 `yaml:"speed_tolerance"`

	// MinSteerSpeed clamps the speed dividing the steering command
	MinSteerSpeed float64 `yaml:"min_steer_speed"`

	// MaintainSpeed adds a sixth hold-speed action
	MaintainSpeed bool `yaml:"maintain_speed"`
}

// DefaultConfig returns the default macro-action configuration:
// forward movements of 10 m, speed changes of 1 m/s, and no
// maintain-speed action.
func DefaultConfig() Config {
	return Config{
		ForwardDistance: 10.0,
		SpeedDelta:      1.0,
		LaneTolerance:   1.5,
		SpeedTolerance:  1.0,
		MinSteerSpeed:   1.0,
	}
}

// validate checks the configuration for values the controllers cannot
// run with
func (c Config) validate() error {
	if c.ForwardDistance < 0 {
		return fmt.Errorf("validate: forward_distance must be "+
			"non-negative, got %v", c.ForwardDistance)
	}
	if c.LaneTolerance <= 0 || c.SpeedTolerance <= 0 {
		return fmt.Errorf("validate: tolerance factors must be positive, "+
			"got lane %v and speed %v", c.LaneTolerance, c.SpeedTolerance)
	}
	if c.MinSteerSpeed <= 0 {
		return fmt.Errorf("validate: min_steer_speed must be positive, "+
			"got %v", c.MinSteerSpeed)
	}
	return nil
}

// MacroActions wraps a Simulator, replacing its continuous primitive
// action space with the discrete high-level goals. Each call to Step
// selects a goal controller, drives it to completion against the
// simulator, and returns one aggregated transition: the observation,
// termination flags, and info of the final primitive tick, with the
// rewards of all ticks summed.
//
// Exactly one controller is active at a time. A macro-step is
// synchronous and blocking: the controller is created when Step is
// called, ticked at least once, and discarded before Step returns, so
// no controller survives across macro-steps. If the episode ends
// mid-execution the loop stops immediately with whatever the simulator
// produced on that tick.
//
// Goals that would leave the road or the vehicle's speed bounds are
// not errors: the wrapper substitutes a zero-change controller of the
// same kind, so a macro-action always executes something.
//
// MacroActions itself implements environment.Environment.
type MacroActions struct {
	Simulator
	config Config

	hlSteps      int
	llSteps      int
	llStepsTotal int
	episodes     int

	currentStep ts.TimeStep
}

// NewMacroActions returns a new MacroActions wrapper around sim
func NewMacroActions(sim Simulator, config Config) (*MacroActions,
	ts.TimeStep, error) {
	if err := config.validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newMacroActions: %v", err)
	}

	m := &MacroActions{
		Simulator:   sim,
		config:      config,
		currentStep: sim.CurrentTimeStep(),
	}
	return m, m.currentStep, nil
}

// NumActions returns the size of the discrete high-level action space
func (m *MacroActions) NumActions() int {
	if m.config.MaintainSpeed {
		return MaintainSpeed + 1
	}
	return SpeedUp + 1
}

// Reset resets the wrapped simulator and the per-episode step counters
func (m *MacroActions) Reset() (ts.TimeStep, error) {
	step, err := m.Simulator.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	m.hlSteps = 0
	m.llSteps = 0
	m.episodes++

	m.currentStep = step
	return step, nil
}

// Step executes one high-level action to completion and returns the
// aggregated transition. The action is 1-dimensional: the discrete
// action id.
func (m *MacroActions) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action == nil || action.Len() != 1 {
		return ts.TimeStep{}, true, fmt.Errorf("step: high-level actions " +
			"must be 1-dimensional")
	}

	id := int(action.AtVec(0))
	if id < 0 || id >= m.NumActions() {
		return ts.TimeStep{}, true, fmt.Errorf("step: no high-level "+
			"action %v ∉ [0, %v]", id, m.NumActions()-1)
	}

	goal := m.newChanger(id)

	// Tick at least once, then continue until the goal is reached or
	// the episode ends, whichever comes first
	step, last, err := goal.Tick()
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}
	cumulativeReward := step.Reward

	for !goal.Done() && !last {
		step, last, err = goal.Tick()
		if err != nil {
			return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
		}
		cumulativeReward += step.Reward
	}

	m.hlSteps++
	m.llSteps += goal.Steps()
	m.llStepsTotal += goal.Steps()

	step.Reward = cumulativeReward
	step.SetInfo(InfoHLSteps, float64(m.hlSteps))
	step.SetInfo(InfoLLSteps, float64(m.llSteps))
	step.SetInfo(InfoLLStepsTotal, float64(m.llStepsTotal))
	step.SetInfo(InfoPosX, m.PositionX())
	step.SetInfo(InfoPosY, m.PositionY())
	step.SetInfo(InfoEpisode, float64(m.episodes))

	m.currentStep = step
	return step, last, nil
}

// CurrentTimeStep returns the last aggregated timestep of the wrapper
func (m *MacroActions) CurrentTimeStep() ts.TimeStep {
	return m.currentStep
}

// newChanger constructs the goal controller for a high-level action,
// substituting a zero-change controller of the same kind when the
// requested goal is infeasible
func (m *MacroActions) newChanger(id int) changer {
	switch id {
	case Forward:
		return NewLaneChanger(m.Simulator, 0, m.config.ForwardDistance,
			m.config.LaneTolerance, m.config.MinSteerSpeed)

	case ChangeLeft, ChangeRight:
		change := -1
		if id == ChangeRight {
			change = 1
		}
		if !m.laneChangePossible(change) {
			change = 0
		}
		return NewLaneChanger(m.Simulator, change, 0, m.config.LaneTolerance,
			m.config.MinSteerSpeed)

	case SlowDown, SpeedUp:
		delta := -m.config.SpeedDelta
		if id == SpeedUp {
			delta = m.config.SpeedDelta
		}
		if !m.speedChangePossible(delta) {
			delta = 0
		}
		return NewSpeedChanger(m.Simulator, delta, m.config.SpeedTolerance)

	default: // MaintainSpeed
		return NewSpeedChanger(m.Simulator, 0, m.config.SpeedTolerance)
	}
}

// laneChangePossible returns whether a lane change keeps the vehicle
// on the road
func (m *MacroActions) laneChangePossible(change int) bool {
	destination := m.Lane() + change
	return destination >= 0 && destination <= m.LaneCount()-1
}

// speedChangePossible returns whether a speed change keeps the vehicle
// within its speed bounds
func (m *MacroActions) speedChangePossible(delta float64) bool {
	destination := m.Speed() + delta
	bounds := m.SpeedBounds()
	return destination >= bounds.Min && destination <= bounds.Max
}

// ActionSpec returns the action specification of the wrapper: a
// 1-dimensional discrete action in [0, NumActions()-1]
func (m *MacroActions) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, nil)
	upperBound := mat.NewVecDense(1, []float64{float64(m.NumActions() - 1)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

// RewardSpec returns the reward specification of the wrapper. Rewards
// are per-tick rewards summed over a macro-step of unbounded length,
// so no bounds can be given.
func (m *MacroActions) RewardSpec() env.Spec {
	rewardSpec := m.Simulator.RewardSpec()
	rewardSpec.LowerBound = nil
	rewardSpec.UpperBound = nil
	return rewardSpec
}

// String returns a string representation of the wrapper
func (m *MacroActions) String() string {
	return fmt.Sprintf("MacroActions: %v", m.Simulator)
}
