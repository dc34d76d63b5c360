package hrl

import (
	"math"

	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/gohighway/timestep"
)

// laneSteeringGain scales the lane-change steering command. The
// command is divided by the current speed so that the lateral rate is
// roughly independent of how fast the vehicle is travelling.
const laneSteeringGain float64 = 0.5

// LaneChanger drives the controlled vehicle toward a destination lane,
// or straight ahead over a target forward distance when the lane
// change amount is zero. The destination lane and the starting
// longitudinal position are fixed at construction and never adapt,
// even if the simulator moves the vehicle for external reasons.
//
// A lane change is complete when the vehicle is in the destination
// lane with its lateral offset inside the alignment tolerance; on
// completion the vehicle's heading and steering command are reset to
// zero so that no residual steering drifts it out of the goal lane. A
// forward movement additionally requires the target distance to be
// covered, and alignment alone never completes it.
type LaneChanger struct {
	sim             Simulator
	change          int
	destinationLane int
	startX          float64
	targetDistance  float64

	// tolerance is the alignment half-width around the lane center,
	// derived from the policy frequency so that the per-tick lateral
	// motion cannot step over the aligned band
	tolerance float64

	// minSteerSpeed clamps the speed used in the steering command's
	// denominator, which is otherwise unbounded as speed approaches 0
	minSteerSpeed float64

	steps int
}

// NewLaneChanger returns a controller moving the vehicle change lanes
// to the side (negative left, positive right), or, when change is 0,
// straight ahead for distance meters. The alignment tolerance is
// toleranceFactor / policy frequency.
func NewLaneChanger(sim Simulator, change int, distance, toleranceFactor,
	minSteerSpeed float64) *LaneChanger {
	return &LaneChanger{
		sim:             sim,
		change:          change,
		destinationLane: sim.Lane() + change,
		startX:          sim.PositionX(),
		targetDistance:  distance,
		tolerance:       toleranceFactor / sim.PolicyFrequency(),
		minSteerSpeed:   minSteerSpeed,
	}
}

// Kind returns LaneGoal
func (l *LaneChanger) Kind() GoalKind {
	return LaneGoal
}

// Tick steers toward the destination lane for one primitive step. The
// acceleration command passes through from the simulator's in-flight
// action pair unchanged.
func (l *LaneChanger) Tick() (ts.TimeStep, bool, error) {
	acceleration, steering := l.sim.Command()

	speed := math.Max(l.sim.Speed(), l.minSteerSpeed)
	switch difference := l.destinationLane - l.sim.Lane(); {
	case difference > 0:
		steering = laneSteeringGain / speed
	case difference < 0:
		steering = -laneSteeringGain / speed
	default:
		steering = 0
	}

	l.steps++
	return l.sim.Step(mat.NewVecDense(2, []float64{acceleration, steering}))
}

// Done returns whether the goal is reached. Completing an actual lane
// change straightens the vehicle as a side effect: heading and the
// in-flight steering command are reset to zero.
func (l *LaneChanger) Done() bool {
	offset := l.sim.LaneOffset()
	aligned := l.sim.Lane() == l.destinationLane &&
		offset < l.tolerance && offset > -l.tolerance

	if l.change == 0 {
		// Forward movement: alignment is trivially true in the
		// starting lane, so completion is governed by distance alone
		return aligned &&
			l.sim.PositionX()-l.startX >= l.targetDistance
	}

	if aligned {
		l.sim.SetHeading(0)
		acceleration, _ := l.sim.Command()
		l.sim.SetCommand(acceleration, 0)
	}
	return aligned
}

// Steps returns the number of ticks taken since construction
func (l *LaneChanger) Steps() int {
	return l.steps
}
