package hrl

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gohighway/environment"
	ts "github.com/samuelfneumann/gohighway/timestep"
)

// fakeSimulator is a scripted Simulator for exercising the goal
// controllers with exactly known per-tick behaviour. Its kinematics
// are deliberately coarse: each tick moves the vehicle laterally at a
// fixed rate set by the last nonzero steering command (modelling the
// momentum of a real turn), advances it longitudinally by a fixed
// amount, and scales the acceleration command into a speed change.
type fakeSimulator struct {
	laneWidth float64
	laneCount int
	frequency float64

	x       float64
	y       float64
	heading float64
	speed   float64
	onRoad  bool
	crashed bool

	accel float64
	steer float64

	// lateralRate persists after the steering command returns to
	// zero, until the heading is explicitly reset
	lateralRate float64

	// advance is the longitudinal movement per tick
	advance float64

	// accelGain converts the commanded acceleration into a per-tick
	// speed change
	accelGain float64

	// rewards holds the per-tick rewards to return, cycled; nil means
	// all zero
	rewards []float64

	// terminateAt ends the episode on the given tick; 0 never ends it
	terminateAt int

	ticks int
	step  ts.TimeStep
}

var _ Simulator = (*fakeSimulator)(nil)

func newFakeSimulator() *fakeSimulator {
	f := &fakeSimulator{
		laneWidth: 4.0,
		laneCount: 5,
		frequency: 5.0,
		speed:     10.0,
		onRoad:    true,
		accelGain: 2.5,
	}
	f.step = ts.New(ts.First, 0, 1, f.observe(), 0)
	return f
}

func (f *fakeSimulator) observe() *mat.VecDense {
	return mat.NewVecDense(2, []float64{f.x, f.y})
}

func (f *fakeSimulator) Reset() (ts.TimeStep, error) {
	f.ticks = 0
	f.step = ts.New(ts.First, 0, 1, f.observe(), 0)
	return f.step, nil
}

func (f *fakeSimulator) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	f.accel, f.steer = a.AtVec(0), a.AtVec(1)
	if f.steer != 0 {
		f.lateralRate = f.steer * f.speed
		f.heading = f.steer
	}

	f.ticks++
	f.x += f.advance
	f.y += f.lateralRate
	f.speed += f.accel * f.accelGain

	var reward float64
	if len(f.rewards) > 0 {
		reward = f.rewards[(f.ticks-1)%len(f.rewards)]
	}

	stepType := ts.Mid
	if f.terminateAt > 0 && f.ticks >= f.terminateAt {
		stepType = ts.Last
	}

	f.step = ts.New(stepType, reward, 1, f.observe(), f.ticks)
	if stepType == ts.Last {
		f.step.SetEnd(ts.TerminalStateReached)
	}
	return f.step, f.step.Last(), nil
}

func (f *fakeSimulator) CurrentTimeStep() ts.TimeStep { return f.step }

func (f *fakeSimulator) Lane() int {
	lane := int(math.Round(f.y / f.laneWidth))
	if lane < 0 {
		lane = 0
	}
	if lane > f.laneCount-1 {
		lane = f.laneCount - 1
	}
	return lane
}

func (f *fakeSimulator) LaneOffset() float64 {
	return f.y - float64(f.Lane())*f.laneWidth
}

func (f *fakeSimulator) PositionX() float64 { return f.x }
func (f *fakeSimulator) PositionY() float64 { return f.y }
func (f *fakeSimulator) Heading() float64   { return f.heading }
func (f *fakeSimulator) Speed() float64     { return f.speed }
func (f *fakeSimulator) OnRoad() bool       { return f.onRoad }
func (f *fakeSimulator) Crashed() bool      { return f.crashed }

func (f *fakeSimulator) Command() (float64, float64) {
	return f.accel, f.steer
}

func (f *fakeSimulator) SetHeading(heading float64) {
	f.heading = heading
	if heading == 0 {
		f.lateralRate = 0
	}
}

func (f *fakeSimulator) SetCommand(acceleration, steering float64) {
	f.accel, f.steer = acceleration, steering
}

func (f *fakeSimulator) LaneCount() int           { return f.laneCount }
func (f *fakeSimulator) LaneWidth() float64       { return f.laneWidth }
func (f *fakeSimulator) PolicyFrequency() float64 { return f.frequency }

func (f *fakeSimulator) SpeedBounds() r1.Interval {
	return r1.Interval{Min: -40, Max: 40}
}

func (f *fakeSimulator) RewardSpeedRange() r1.Interval {
	return r1.Interval{Min: 20, Max: 30}
}

func (f *fakeSimulator) Start() *mat.VecDense       { return f.observe() }
func (f *fakeSimulator) End(*ts.TimeStep) bool      { return false }
func (f *fakeSimulator) AtGoal(mat.Matrix) bool     { return false }
func (f *fakeSimulator) Min() float64               { return 0 }
func (f *fakeSimulator) Max() float64               { return 1 }
func (f *fakeSimulator) GetReward(_, _, _ mat.Vector) float64 { return 0 }

func (f *fakeSimulator) RewardSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(1, nil), env.Reward,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{1}),
		env.Continuous)
}

func (f *fakeSimulator) ObservationSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(2, nil), env.Observation,
		mat.NewVecDense(2, []float64{math.Inf(-1), math.Inf(-1)}),
		mat.NewVecDense(2, []float64{math.Inf(1), math.Inf(1)}),
		env.Continuous)
}

func (f *fakeSimulator) ActionSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(2, nil), env.Action,
		mat.NewVecDense(2, []float64{-5, -1}),
		mat.NewVecDense(2, []float64{5, 1}), env.Continuous)
}

func (f *fakeSimulator) DiscountSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(1, nil), env.Discount,
		mat.NewVecDense(1, []float64{1}), mat.NewVecDense(1, []float64{1}),
		env.Continuous)
}
