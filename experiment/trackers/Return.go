package trackers

import (
	ts "github.com/samuelfneumann/gohighway/timestep"
)

// Return tracks and saves the episodic return in an experiment. When
// an environment returns a TimeStep, this Tracker will extract the
// reward and accumulate the return for each episode in the experiment.
//
// Note: If an environment is wrapped by some environment wrapper
// which modifies rewards, then this Tracker tracks the modified
// rewards returned by the wrapped environment. An experiment run on a
// macro-action environment therefore tracks the sum of the aggregated
// macro-step rewards, which equals the sum of the underlying per-tick
// rewards.
//
// Note: An episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// return will not be saved.
type Return struct {
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) Tracker {
	return &Return{filename: filename}
}

// Track tracks the rewards seen on a timestep. By calling this method
// on every timestep, the Tracker accumulates the episodic return, and
// caches it when the episode's final timestep is tracked.
func (r *Return) Track(step ts.TimeStep) {
	r.currentReturn += step.Reward

	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0.0
	}
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() {
	saveGob(r.filename, r.episodeReturns)
}
