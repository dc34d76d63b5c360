package highway

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gohighway/environment"
)

// driveStarter samples the controlled vehicle's starting state
// [lane, speed]: the lane uniformly from the road's lanes and the
// speed uniformly from a fixed interval
type driveStarter struct {
	lane  env.CategoricalStarter
	speed env.UniformStarter
}

// NewStarter returns a Starter producing starting states for the Drive
// task with a uniformly random lane in [0, lanes-1] and a starting
// speed drawn uniformly from speedRange
func NewStarter(lanes int, speedRange r1.Interval, seed uint64) env.Starter {
	return &driveStarter{
		lane:  env.NewCategoricalStarter([]int{lanes}, seed),
		speed: env.NewUniformStarter([]r1.Interval{speedRange}, seed+1),
	}
}

// Start returns a starting state vector [lane, speed]
func (d *driveStarter) Start() *mat.VecDense {
	return mat.NewVecDense(2, []float64{
		d.lane.Start().AtVec(0),
		d.speed.Start().AtVec(0),
	})
}
