// Package heuristic implements a rule-based driving agent.
//
// The agent keeps to the rightmost lane, accelerates toward the top of
// the rewarded speed range when the road ahead is clear, and evades a
// slower leading vehicle by moving into a free adjacent lane, slowing
// down only when boxed in. It learns nothing; its Learner methods are
// no-ops.
package heuristic

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gohighway/environment/highway"
	"github.com/samuelfneumann/gohighway/environment/hrl"
	ts "github.com/samuelfneumann/gohighway/timestep"
)

const (
	// distanceWanted is the desired gap in meters to a leading vehicle
	distanceWanted float64 = 10.0

	// timeToChangeLane is the time horizon in seconds over which
	// nearby vehicles are projected forward before deciding whether a
	// lane is free
	timeToChangeLane float64 = 2.0

	// speedMargin widens the target band below the top of the
	// rewarded speed range
	speedMargin float64 = 5.0
)

// Heuristic is a rule-based agent for the highway macro-action space
type Heuristic struct {
	sim  hrl.Simulator
	eval bool
}

// New returns a new Heuristic agent acting in sim
func New(sim hrl.Simulator) *Heuristic {
	return &Heuristic{sim: sim}
}

// SelectAction chooses the next high-level action from the timestep's
// observation and the simulator's live state
func (h *Heuristic) SelectAction(t ts.TimeStep) *mat.VecDense {
	rightmost := h.sim.LaneCount() - 1
	topSpeed := h.sim.RewardSpeedRange().Max
	lane := h.sim.Lane()
	speed := h.sim.Speed()

	inFront := h.vehicleInFront(t.Observation)
	onLeft := h.vehicleBeside(t.Observation, -1)
	onRight := h.vehicleBeside(t.Observation, 1)

	action := hrl.Forward
	switch {
	case lane < rightmost && !onRight:
		action = hrl.ChangeRight

	case speed < topSpeed-speedMargin && speed <= topSpeed && !inFront:
		action = hrl.SpeedUp

	case inFront:
		switch {
		case !onRight && lane != rightmost:
			action = hrl.ChangeRight

		case !onLeft && lane != 0:
			action = hrl.ChangeLeft

		default:
			action = hrl.SlowDown
		}
	}

	return mat.NewVecDense(1, []float64{float64(action)})
}

// vehicleInFront returns whether a vehicle in the agent's lane will be
// closer than the desired gap within the lane-change time horizon.
// Observations list vehicles row by row as [presence, x, y, vx, vy];
// the controlled vehicle's absolute state occupies the first row and
// the remaining rows are relative to it.
func (h *Heuristic) vehicleInFront(obs mat.Vector) bool {
	halfWidth := h.sim.LaneWidth() / 2

	for i := 1; i < obs.Len()/highway.ObservationFeatures; i++ {
		presence, x, y, vx := vehicleRow(obs, i)
		if presence != 1.0 {
			continue
		}

		if x+vx*timeToChangeLane <= distanceWanted &&
			y >= -halfWidth && y <= halfWidth {
			return true
		}
	}
	return false
}

// vehicleBeside returns whether the adjacent lane in the given
// direction (-1 left, +1 right) is occupied within the desired gap
func (h *Heuristic) vehicleBeside(obs mat.Vector, direction int) bool {
	halfWidth := h.sim.LaneWidth() / 2
	near := float64(direction) * halfWidth
	far := float64(direction) * 3 * halfWidth

	low, high := near, far
	if direction < 0 {
		low, high = far, near
	}

	for i := 1; i < obs.Len()/highway.ObservationFeatures; i++ {
		presence, x, y, vx := vehicleRow(obs, i)
		if presence != 1.0 {
			continue
		}

		projected := x + vx*timeToChangeLane
		if y > low && y < high && projected >= -distanceWanted &&
			projected <= distanceWanted {
			return true
		}
	}
	return false
}

// vehicleRow extracts the presence flag, relative position, and
// relative longitudinal velocity of observation row i
func vehicleRow(obs mat.Vector, i int) (presence, x, y, vx float64) {
	offset := i * highway.ObservationFeatures
	return obs.AtVec(offset), obs.AtVec(offset + 1), obs.AtVec(offset + 2),
		obs.AtVec(offset + 3)
}

// Step performs a single update to the learner. Heuristic agents do
// not learn.
func (h *Heuristic) Step() error { return nil }

// Observe records that an action lead to some timestep
func (h *Heuristic) Observe(_ mat.Vector, _ ts.TimeStep) error { return nil }

// ObserveFirst records the first timestep in an episode
func (h *Heuristic) ObserveFirst(_ ts.TimeStep) error { return nil }

// EndEpisode performs cleanup at the end of an episode
func (h *Heuristic) EndEpisode() {}

// Eval sets the policy to evaluation mode
func (h *Heuristic) Eval() { h.eval = true }

// Train sets the policy to training mode
func (h *Heuristic) Train() { h.eval = false }

// IsEval indicates if the policy is in evaluation mode
func (h *Heuristic) IsEval() bool { return h.eval }
