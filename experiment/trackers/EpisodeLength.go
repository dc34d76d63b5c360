package trackers

import (
	ts "github.com/samuelfneumann/gohighway/timestep"
)

// EpisodeLength tracks and saves the number of environmental steps in
// each episode of an experiment. On a macro-action environment each
// tracked step is one high-level decision, regardless of how many
// primitive ticks ran inside it.
type EpisodeLength struct {
	currentLength  int
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength creates and returns a new *EpisodeLength Tracker
func NewEpisodeLength(filename string) Tracker {
	return &EpisodeLength{filename: filename}
}

// Track increments the current episode's length, caching the total
// when the episode's final timestep is tracked
func (e *EpisodeLength) Track(step ts.TimeStep) {
	if step.First() {
		e.currentLength = 0
		return
	}

	e.currentLength++
	if step.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(e.currentLength))
		e.currentLength = 0
	}
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() {
	saveGob(e.filename, e.episodeLengths)
}
