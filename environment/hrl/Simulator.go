// Package hrl implements temporally-extended driving actions on top of
// a highway simulator. Discrete high-level goals (change lane, adjust
// speed, go forward) are expanded by goal controllers into sequences
// of primitive [acceleration, steering] commands, and the MacroActions
// environment wrapper drives one controller to completion per external
// step, presenting each completed goal to the caller as a single
// transition.
package hrl

import (
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gohighway/environment"
	ts "github.com/samuelfneumann/gohighway/timestep"
)

// Simulator is the surface the goal controllers consume from the
// underlying driving environment: the usual Environment contract plus
// queries on the controlled vehicle's live state and the static
// simulation parameters the controllers derive their tolerances from.
//
// SetHeading and SetCommand are the only mutations. They exist for the
// controllers' completion side effects: straightening the vehicle
// after a lane change and zeroing the acceleration command after a
// speed change. The active controller holds this write privilege only
// for the duration of its macro-step, granted by MacroActions.
//
// *highway.Highway implements Simulator, as does ShapedReward, so the
// reward shaper can sit between the simulator and MacroActions.
type Simulator interface {
	env.Environment

	// Live vehicle state
	Lane() int
	LaneOffset() float64
	PositionX() float64
	PositionY() float64
	Heading() float64
	Speed() float64
	OnRoad() bool
	Crashed() bool

	// In-flight primitive command pair [acceleration, steering]
	Command() (float64, float64)

	// Completion side effects
	SetHeading(float64)
	SetCommand(acceleration, steering float64)

	// Static simulation parameters
	LaneCount() int
	LaneWidth() float64
	PolicyFrequency() float64
	SpeedBounds() r1.Interval
	RewardSpeedRange() r1.Interval
}

// GoalKind tags the two kinds of goal controller
type GoalKind int

const (
	// LaneGoal controllers steer toward a destination lane or hold
	// the lane while covering a forward distance
	LaneGoal GoalKind = iota

	// SpeedGoal controllers accelerate toward a desired speed
	SpeedGoal
)

func (g GoalKind) String() string {
	switch g {
	case LaneGoal:
		return "LaneGoal"
	default:
		return "SpeedGoal"
	}
}

// changer is the capability shared by the goal controllers: advance
// the simulator by one primitive command toward the goal, and report
// goal completion. A changer is created at the start of a macro-step,
// ticked until Done or episode end, and discarded before the
// macro-step returns.
type changer interface {
	// Kind returns the tag of the controller's goal
	Kind() GoalKind

	// Tick issues one primitive command to the simulator and advances
	// it one step
	Tick() (ts.TimeStep, bool, error)

	// Done returns whether the goal has been reached. Done may mutate
	// the simulator's heading or command pair as a completion side
	// effect.
	Done() bool

	// Steps returns the number of ticks taken since construction
	Steps() int
}
