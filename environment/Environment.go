// Package environment outlines the interfaces and structs needed to implement
// concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/gohighway/timestep"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when and how episodes end. Enders modify the final
// TimeStep of an episode in-place, setting its StepType to
// timestep.Last and recording the appropriate timestep.EndType.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme and episode ending scheme for
// acting in some environment
type Task interface {
	Starter
	Ender

	// GetReward returns the reward for taking an action in a state,
	// resulting in a next state
	GetReward(state, action, nextState mat.Vector) float64

	// AtGoal returns whether the argument state is a goal state
	AtGoal(state mat.Matrix) bool

	RewardSpec() Spec

	// Min and Max return the minimum and maximum attainable rewards
	// over all timesteps
	Min() float64
	Max() float64
}

// Environment implements a simulated environment, which includes a
// Task to complete
type Environment interface {
	Task

	// Reset resets the environment between episodes and returns the
	// first timestep of the new episode
	Reset() (ts.TimeStep, error)

	// Step takes one environmental step given an action and returns
	// the next timestep and whether the episode has ended
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)

	// CurrentTimeStep returns the last timestep of the environment
	CurrentTimeStep() ts.TimeStep

	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
}
