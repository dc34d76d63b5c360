package experiment

import (
	"fmt"
	"time"

	"github.com/samuelfneumann/progressbar"

	"github.com/samuelfneumann/gohighway/agent"
	env "github.com/samuelfneumann/gohighway/environment"
	"github.com/samuelfneumann/gohighway/experiment/trackers"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps     uint
	currentSteps uint
	trackers     []trackers.Tracker

	pbar *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many environmental steps the experiment is run for, and the t
// parameter is a slice of Trackers which determine what data is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t ...trackers.Tracker) *Online {
	pbar := progressbar.New(50, int(steps), time.Second, false)

	return &Online{
		Environment: e,
		Agent:       a,
		maxSteps:    steps,
		trackers:    t,
		pbar:        pbar,
	}
}

// Register registers a Tracker with the Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment, returning
// whether the experiment's step limit has been reached
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return true, fmt.Errorf("runEpisode: could not reset "+
			"environment: %v", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return true, fmt.Errorf("runEpisode: %v", err)
	}
	track(o.trackers, step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++
		o.pbar.Increment()

		// Select action, step in environment
		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return true, fmt.Errorf("runEpisode: could not step "+
				"environment: %v", err)
		}

		// Cache the environment step in each Tracker
		track(o.trackers, step)

		// Observe the timestep and step the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
		if err := o.Agent.Step(); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
	}
	o.Agent.EndEpisode()

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	o.pbar.Display()
	defer o.pbar.Close()

	ended := false
	for !ended {
		var err error
		ended, err = o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}

	log.WithField("steps", o.currentSteps).Info("experiment finished")
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() {
	for _, tracker := range o.trackers {
		tracker.Save()
	}
}
