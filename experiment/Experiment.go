// Package experiment implements functionality for running an
// experiment
package experiment

import (
	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/gohighway/experiment/trackers"
	ts "github.com/samuelfneumann/gohighway/timestep"
)

var log = logrus.WithField("module", "experiment")

// Interface Experiment outlines structs that can run experiments.
// Experiments track environment TimeSteps, caching data from each
// TimeStep in RAM to be later saved to disk. The Save() function
// takes all cached data and saves it to disk, usually after the
// experiment has been run. The Run() method runs episodes until the
// experiment's step limit is reached. The RunEpisode() function runs
// a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send each TimeStep to Trackers using the Tracker's Track() method.
// New Trackers can be registered with an Experiment through the
// constructor or through an Experiment's Register() function.
type Experiment interface {
	Run() error

	// RunEpisode runs a single episode, returning whether the
	// experiment's step limit has been reached
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save()

	// Register adds a new Tracker to the (possibly already running)
	// experiment. Useful if data should be tracked only after a
	// specified event.
	Register(t trackers.Tracker)
}

// track sends the current timestep to each Tracker
func track(t []trackers.Tracker, step ts.TimeStep) {
	for _, tracker := range t {
		tracker.Track(step)
	}
}
