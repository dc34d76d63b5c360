package hrl

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/gohighway/timestep"
)

// SpeedCommand is the fixed acceleration magnitude in m/s^2 that the
// speed controller commands while adjusting speed
const SpeedCommand float64 = 0.1

// SpeedChanger drives the controlled vehicle's speed toward a desired
// speed with a fixed-magnitude acceleration command. The desired speed
// is computed once at construction as the current speed plus the
// requested delta and never adapts, even if the simulator changes the
// vehicle's speed for external reasons mid-execution.
//
// The goal is complete when the current speed lies in the half-open
// interval (desired - tolerance, desired]; on completion the in-flight
// acceleration command is forced to zero so that the next external
// step does not overshoot the reached speed.
type SpeedChanger struct {
	sim          Simulator
	desiredSpeed float64

	// tolerance is the half-width below the desired speed inside
	// which the goal counts as reached, derived from the policy
	// frequency so that the per-tick speed change cannot step over it
	tolerance float64

	steps int
}

// NewSpeedChanger returns a controller adjusting the vehicle's speed
// by delta m/s. The tolerance is toleranceFactor / policy frequency. A
// delta of 0 makes the goal complete immediately, so the controller
// degenerates to a hold-speed no-op that still consumes one tick.
func NewSpeedChanger(sim Simulator, delta, toleranceFactor float64) *SpeedChanger {
	return &SpeedChanger{
		sim:          sim,
		desiredSpeed: sim.Speed() + delta,
		tolerance:    toleranceFactor / sim.PolicyFrequency(),
	}
}

// Kind returns SpeedGoal
func (s *SpeedChanger) Kind() GoalKind {
	return SpeedGoal
}

// Tick accelerates toward the desired speed for one primitive step.
// The steering command passes through from the simulator's in-flight
// action pair unchanged.
func (s *SpeedChanger) Tick() (ts.TimeStep, bool, error) {
	acceleration, steering := s.sim.Command()

	switch speed := s.sim.Speed(); {
	case speed < s.desiredSpeed:
		acceleration = SpeedCommand
	case speed > s.desiredSpeed:
		acceleration = -SpeedCommand
	default:
		acceleration = 0
	}

	s.steps++
	return s.sim.Step(mat.NewVecDense(2, []float64{acceleration, steering}))
}

// Done returns whether the desired speed is reached. On completion the
// in-flight acceleration command is zeroed as a side effect.
func (s *SpeedChanger) Done() bool {
	speed := s.sim.Speed()
	done := speed > s.desiredSpeed-s.tolerance && speed <= s.desiredSpeed

	if done {
		_, steering := s.sim.Command()
		s.sim.SetCommand(0, steering)
	}
	return done
}

// Steps returns the number of ticks taken since construction
func (s *SpeedChanger) Steps() int {
	return s.steps
}
