// Package random implements an agent that selects uniformly random
// discrete actions. It is useful as a baseline and for smoke-testing
// environments.
package random

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gohighway/environment"
	ts "github.com/samuelfneumann/gohighway/timestep"
)

// Random selects actions uniformly at random from a discrete action
// space
type Random struct {
	numActions int
	rng        *rand.Rand
	eval       bool
}

// New returns a new Random agent acting in an environment with the
// given discrete action specification
func New(actionSpec env.Spec, seed uint64) (*Random, error) {
	if actionSpec.Cardinality != env.Discrete {
		return nil, fmt.Errorf("new: random agent requires a discrete " +
			"action space")
	}
	if actionSpec.Shape.Len() != 1 {
		return nil, fmt.Errorf("new: actions must be 1-dimensional, got "+
			"%v dimensions", actionSpec.Shape.Len())
	}

	numActions := int(actionSpec.UpperBound.AtVec(0)) + 1
	return &Random{
		numActions: numActions,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// SelectAction returns a uniformly random action
func (r *Random) SelectAction(_ ts.TimeStep) *mat.VecDense {
	action := float64(r.rng.Intn(r.numActions))
	return mat.NewVecDense(1, []float64{action})
}

// Step performs a single update to the learner. Random agents do not
// learn.
func (r *Random) Step() error { return nil }

// Observe records that an action lead to some timestep
func (r *Random) Observe(_ mat.Vector, _ ts.TimeStep) error { return nil }

// ObserveFirst records the first timestep in an episode
func (r *Random) ObserveFirst(_ ts.TimeStep) error { return nil }

// EndEpisode performs cleanup at the end of an episode
func (r *Random) EndEpisode() {}

// Eval sets the policy to evaluation mode
func (r *Random) Eval() { r.eval = true }

// Train sets the policy to training mode
func (r *Random) Train() { r.eval = false }

// IsEval indicates if the policy is in evaluation mode
func (r *Random) IsEval() bool { return r.eval }
