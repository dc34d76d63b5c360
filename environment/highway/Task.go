package highway

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gohighway/environment"
	ts "github.com/samuelfneumann/gohighway/timestep"
	"github.com/samuelfneumann/gohighway/utils/floatutils"
)

// Drive implements the built-in highway driving task: stay alive, keep
// right, and drive within the rewarded speed range. Rewards combine a
// collision penalty, a right-lane component growing linearly toward
// the rightmost lane, and a high-speed component mapping forward speed
// linearly from the rewarded speed range onto [0, 1]. With
// normalization enabled, the combination is mapped onto [0, 1] using
// its theoretical extremes. Off-road driving earns nothing.
//
// Episodes end on collision, on leaving the road when the environment
// is configured with OffroadTerminal, and at the configured duration.
//
// Drive reads the live vehicle state, so it must be registered with a
// Highway before use. Highway.New registers the task automatically.
type Drive struct {
	env.Starter

	sim        *Highway
	stepLimit  env.Ender
	offroad    env.Ender
	crash      env.Ender
	registered bool
}

// NewDrive returns a new Drive task. The starter samples the
// controlled vehicle's starting [lane, speed].
func NewDrive(starter env.Starter) *Drive {
	return &Drive{Starter: starter}
}

// Register registers the task with the Highway whose vehicle state it
// rewards and ends
func (d *Drive) Register(h *Highway) {
	d.sim = h
	d.stepLimit = env.NewStepLimit(int(h.config.Duration *
		h.config.PolicyFrequency))

	// The controlled vehicle's lateral position is feature 2 of the
	// observation, so leaving the road can be detected from the
	// observation alone.
	half := h.config.LaneWidth / 2
	d.offroad = env.NewIntervalLimit(
		[]r1.Interval{{
			Min: -half,
			Max: float64(h.config.LanesCount-1)*h.config.LaneWidth + half,
		}},
		[]int{2},
		ts.TerminalStateReached,
	)

	// Crashes are not observable from the observation vector, so the
	// ender closes over the live vehicle state instead.
	d.crash = env.NewFunctionEnder(func(mat.Vector) bool {
		return h.Crashed()
	}, ts.TerminalStateReached)

	d.registered = true
}

// GetReward returns the reward for the transition to the current
// vehicle state. The arguments are ignored: the reward is a function
// of live vehicle state that the observation does not carry (lane
// offset, crash flag).
func (d *Drive) GetReward(_, _, _ mat.Vector) float64 {
	if !d.registered {
		panic("getReward: task not registered with a Highway")
	}
	h := d.sim
	c := h.config

	laneReward := float64(h.Lane()) /
		math.Max(float64(c.LanesCount-1), 1)

	forwardSpeed := h.Speed() * math.Cos(h.Heading())
	scaledSpeed := floatutils.LinearMap(forwardSpeed, c.RewardSpeedBounds(),
		r1.Interval{Min: 0, Max: 1})
	speedReward := floatutils.Clip(scaledSpeed, 0, 1)

	var collision float64
	if h.Crashed() {
		collision = 1
	}

	reward := c.CollisionReward*collision +
		c.RightLaneReward*laneReward +
		c.HighSpeedReward*speedReward

	if c.NormalizeReward {
		reward = floatutils.LinearMap(reward,
			r1.Interval{
				Min: c.CollisionReward,
				Max: c.RightLaneReward + c.HighSpeedReward,
			},
			r1.Interval{Min: 0, Max: 1})
	}

	if !h.OnRoad() {
		reward = 0
	}
	return reward
}

// End determines whether a timestep ends its episode, adjusting the
// TimeStep's StepType and EndType accordingly
func (d *Drive) End(t *ts.TimeStep) bool {
	if !d.registered {
		panic("end: task not registered with a Highway")
	}

	if d.crash.End(t) {
		return true
	}

	if d.sim.config.OffroadTerminal && d.offroad.End(t) {
		return true
	}

	return d.stepLimit.End(t)
}

// AtGoal always returns false: driving is a continuing task with no
// goal state
func (d *Drive) AtGoal(mat.Matrix) bool {
	return false
}

// Min returns the minimum attainable reward over all timesteps
func (d *Drive) Min() float64 {
	if !d.registered {
		panic("min: task not registered with a Highway")
	}
	if d.sim.config.NormalizeReward {
		return 0
	}
	return d.sim.config.CollisionReward
}

// Max returns the maximum attainable reward over all timesteps
func (d *Drive) Max() float64 {
	if !d.registered {
		panic("max: task not registered with a Highway")
	}
	if d.sim.config.NormalizeReward {
		return 1
	}
	return d.sim.config.RightLaneReward + d.sim.config.HighSpeedReward
}

// RewardSpec returns the reward specification of the task
func (d *Drive) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{d.Min()})
	upperBound := mat.NewVecDense(1, []float64{d.Max()})

	return env.NewSpec(shape, env.Reward, lowerBound, upperBound,
		env.Continuous)
}
