package trackers

import (
	env "github.com/samuelfneumann/gohighway/environment"
	ts "github.com/samuelfneumann/gohighway/timestep"
)

// registeredTracker registers an Environment with some Tracker so
// that the Tracker tracks data from the registered Environment only.
// registeredTracker itself is a Tracker.
//
// The Track() and Save() methods of a registeredTracker call those of
// the embedded Tracker. The only difference is that registeredTracker
// calls the Track() method of the embedded Tracker using the most
// recent TimeStep of the registered Environment, and the argument to
// registeredTracker.Track() is ignored.
//
// This may be useful if an experiment is run using an environment
// wrapper but the data of the wrapped environment is what should be
// tracked. For example, when an experiment runs on a reward-shaping
// wrapper, registering the wrapped environment with a Return tracker
// records the unshaped returns instead of the shaped ones.
type registeredTracker struct {
	Tracker
	env env.Environment
}

// Register registers a Tracker with an Environment, to track data
// from the registered Environment only
func Register(t Tracker, env env.Environment) Tracker {
	return &registeredTracker{t, env}
}

// Track tracks the most recent timestep of the registered Environment
func (r *registeredTracker) Track(_ ts.TimeStep) {
	r.Tracker.Track(r.env.CurrentTimeStep())
}
