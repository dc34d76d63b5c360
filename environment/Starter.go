package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// UniformStarter samples starting state vectors componentwise from
// fixed real intervals
type UniformStarter struct {
	dims int
	dist *distmv.Uniform
}

// NewUniformStarter returns a UniformStarter drawing component i of
// each starting state uniformly from bounds[i]
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	return UniformStarter{
		dims: len(bounds),
		dist: distmv.NewUniform(bounds, rand.NewSource(seed)),
	}
}

// Start samples a starting state vector
func (u UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(u.dims, u.dist.Rand(nil))
}

// CategoricalStarter samples starting state vectors whose components
// are integer-valued, drawing component i uniformly from
// {0, 1, ..., N_i - 1}
type CategoricalStarter struct {
	dists []distuv.Categorical
}

// NewCategoricalStarter returns a CategoricalStarter drawing component
// i of each starting state from {0, 1, ..., bounds[i] - 1} with equal
// probability
func NewCategoricalStarter(bounds []int, seed uint64) CategoricalStarter {
	source := rand.NewSource(seed)

	dists := make([]distuv.Categorical, len(bounds))
	for i, n := range bounds {
		weights := make([]float64, n)
		for j := range weights {
			weights[j] = 1
		}
		dists[i] = distuv.NewCategorical(weights, source)
	}

	return CategoricalStarter{dists}
}

// Start samples a starting state vector
func (c CategoricalStarter) Start() *mat.VecDense {
	start := make([]float64, len(c.dists))
	for i := range start {
		start[i] = c.dists[i].Rand()
	}

	return mat.NewVecDense(len(start), start)
}
