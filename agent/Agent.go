// Package agent defines an agent interface
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gohighway/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns from experience, and
// a Policy which chooses actions in each state. The Policy chooses
// which actions are taken, and the Learner uses the resulting
// transitions to improve the Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how an agent
// improves from experience. Agents that select actions without
// learning, such as heuristic or random policies, implement Learner
// with no-ops.
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions.
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}
