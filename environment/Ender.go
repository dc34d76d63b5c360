package environment

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	ts "github.com/samuelfneumann/gohighway/timestep"
)

// StepLimit ends episodes once they reach a fixed number of timesteps.
// Episodes ended by a StepLimit are cut off rather than terminated, so
// the ending type is timestep.Timeout.
type StepLimit struct {
	maxSteps int
}

// NewStepLimit returns an Ender cutting episodes off after maxSteps
// timesteps
func NewStepLimit(maxSteps int) StepLimit {
	return StepLimit{maxSteps}
}

// End checks whether t reaches the step limit, adjusting t in-place if
// so and returning whether the episode ended
func (s StepLimit) End(t *ts.TimeStep) bool {
	if t.Number >= s.maxSteps {
		t.StepType = ts.Last
		t.SetEnd(ts.Timeout)
		return true
	}
	return false
}

// IntervalLimit ends episodes whenever any of a set of observation
// features leaves its legal interval
type IntervalLimit struct {
	intervals []r1.Interval
	indices   []int
	endType   ts.EndType
}

// NewIntervalLimit returns an Ender ending episodes with ending type
// endType whenever observation feature indices[i] leaves limits[i] for
// any i
func NewIntervalLimit(limits []r1.Interval, indices []int,
	endType ts.EndType) Ender {
	if len(limits) != len(indices) {
		panic("newIntervalLimit: one interval needed per feature index")
	}

	return &IntervalLimit{limits, indices, endType}
}

// End checks whether any tracked feature of t's observation left its
// interval, adjusting t in-place if so and returning whether the
// episode ended
func (i *IntervalLimit) End(t *ts.TimeStep) bool {
	for j, feature := range i.indices {
		value := t.Observation.AtVec(feature)
		if value < i.intervals[j].Min || value > i.intervals[j].Max {
			t.StepType = ts.Last
			t.SetEnd(i.endType)
			return true
		}
	}
	return false
}

// FunctionEnder ends episodes whenever a predicate of the observation
// vector returns true. The predicate may also ignore its argument and
// close over external state instead.
type FunctionEnder struct {
	end     func(mat.Vector) bool
	endType ts.EndType
}

// NewFunctionEnder returns an Ender ending episodes with ending type
// endType whenever f returns true
func NewFunctionEnder(f func(mat.Vector) bool, endType ts.EndType) Ender {
	return &FunctionEnder{f, endType}
}

// End checks whether the predicate holds for t's observation,
// adjusting t in-place if so and returning whether the episode ended
func (f *FunctionEnder) End(t *ts.TimeStep) bool {
	if f.end(t.Observation) {
		t.StepType = ts.Last
		t.SetEnd(f.endType)
		return true
	}
	return false
}
