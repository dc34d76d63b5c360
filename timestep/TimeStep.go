// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either a first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes the way in which an episode ended, distinguishing
// true environmental termination (e.g. a crash) from a timeout, which
// cuts an episode short without the final state being terminal.
type EndType int

const (
	// NoEnd denotes a TimeStep which did not end its episode
	NoEnd EndType = iota

	// TerminalStateReached denotes an episode ended by reaching a
	// terminal state
	TerminalStateReached

	// Timeout denotes an episode cut off at a step limit
	Timeout
)

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int

	endType EndType

	// Info is a side channel for per-step metadata that is not part
	// of the observation, such as step counters or reward components
	// injected by environment wrappers. It is nil until SetInfo is
	// called.
	Info map[string]float64
}

// New constructs a new TimeStep with no ending type and no Info
func New(t StepType, reward, discount float64, obs mat.Vector,
	number int) TimeStep {
	return TimeStep{
		StepType:    t,
		Reward:      reward,
		Discount:    discount,
		Observation: obs,
		Number:      number,
		endType:     NoEnd,
	}
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd records the way in which the episode ended at this TimeStep
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// End returns the way in which the episode ended at this TimeStep,
// which is NoEnd for any TimeStep that is not the last in its episode
func (t *TimeStep) End() EndType {
	return t.endType
}

// TerminalEnd returns whether the TimeStep ended its episode by
// reaching a terminal state
func (t *TimeStep) TerminalEnd() bool {
	return t.endType == TerminalStateReached
}

// TimeoutEnd returns whether the TimeStep ended its episode by
// reaching a step limit
func (t *TimeStep) TimeoutEnd() bool {
	return t.endType == Timeout
}

// SetInfo records a metadata value on the TimeStep, allocating the
// Info map on first use
func (t *TimeStep) SetInfo(key string, value float64) {
	if t.Info == nil {
		t.Info = make(map[string]float64)
	}
	t.Info[key] = value
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
