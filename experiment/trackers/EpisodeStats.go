package trackers

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/samuelfneumann/gohighway/environment/hrl"
	ts "github.com/samuelfneumann/gohighway/timestep"
)

// EpisodeStats tracks per-episode aggregates of a macro-action
// experiment and saves them as a CSV file. It reads the counters the
// macro-action environment injects into each timestep's info map:
// high-level and low-level step counts and the vehicle's final
// position. Episodes that do not finish are not recorded.
type EpisodeStats struct {
	currentReturn float64
	rows          [][]string
	filename      string
}

// NewEpisodeStats creates and returns a new *EpisodeStats Tracker
func NewEpisodeStats(filename string) Tracker {
	return &EpisodeStats{
		rows: [][]string{{
			"episode", "return", "hl_steps", "ll_steps", "pos_x", "pos_y",
		}},
		filename: filename,
	}
}

// Track accumulates the return and, on an episode's final timestep,
// caches a row of that episode's aggregates
func (e *EpisodeStats) Track(step ts.TimeStep) {
	e.currentReturn += step.Reward

	if !step.Last() {
		return
	}

	e.rows = append(e.rows, []string{
		formatFloat(step.Info[hrl.InfoEpisode]),
		strconv.FormatFloat(e.currentReturn, 'g', -1, 64),
		formatFloat(step.Info[hrl.InfoHLSteps]),
		formatFloat(step.Info[hrl.InfoLLSteps]),
		strconv.FormatFloat(step.Info[hrl.InfoPosX], 'g', -1, 64),
		strconv.FormatFloat(step.Info[hrl.InfoPosY], 'g', -1, 64),
	})
	e.currentReturn = 0.0
}

// Save writes the cached episode rows to disk as CSV
func (e *EpisodeStats) Save() {
	file, err := os.Create(e.filename)
	if err != nil {
		log.Fatalf("could not create stats file: %v", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(e.rows); err != nil {
		log.Fatalf("could not write stats file: %v", err)
	}
}

// formatFloat formats an integral counter stored as a float64
func formatFloat(f float64) string {
	return strconv.FormatInt(int64(f), 10)
}
