// Package trackers implements Trackers, which track and save data
// generated during an experiment
package trackers

import (
	"encoding/gob"
	"os"

	"github.com/sirupsen/logrus"

	ts "github.com/samuelfneumann/gohighway/timestep"
)

var log = logrus.WithField("module", "trackers")

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save()
}

// LoadData loads and returns the data saved by a gob-encoding Tracker
func LoadData(filename string) []float64 {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var data []float64

	err = dec.Decode(&data)
	if err != nil {
		log.Fatalf("could not decode data: %v", err)
	}

	return data
}

// saveGob writes a float64 slice to disk as a gob stream, suitable for
// later loading with LoadData
func saveGob(filename string, data []float64) {
	file, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create data file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(data); err != nil {
		log.Fatalf("could not encode data: %v", err)
	}
}
