// Package highway implements a continuous-control multi-lane highway
// driving environment. The controlled vehicle follows a kinematic
// bicycle model driven by [acceleration, steering] actions, while the
// surrounding traffic follows the Intelligent Driver Model in fixed
// lanes. Episodes end on collision, on leaving the road when so
// configured, and at a duration limit.
//
// Beyond the environment.Environment interface, Highway exposes the
// live-state queries and the narrow command surface (heading and
// in-flight action pair) that the goal controllers in package hrl
// consume.
package highway

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gohighway/environment"
	ts "github.com/samuelfneumann/gohighway/timestep"
	"github.com/samuelfneumann/gohighway/utils/floatutils"
)

const (
	// ActionDims is the dimensionality of the primitive continuous
	// action [acceleration, steering]
	ActionDims int = 2

	// ObservationFeatures is the number of features per observed
	// vehicle row: [presence, x, y, vx, vy]
	ObservationFeatures int = 5
)

var log = logrus.WithField("module", "highway")

// Highway implements the environment.Environment interface for
// multi-lane highway driving. Lane centers sit at y = i*LaneWidth for
// lane indices i in [0, LanesCount-1], with x running along the road.
type Highway struct {
	env.Task
	config   Config
	discount float64

	ego     *vehicle
	traffic []*vehicle

	// action is the in-flight [acceleration, steering] command pair.
	// It is replaced on every Step and may be overridden between steps
	// through SetCommand.
	action [2]float64

	rng         *rand.Rand
	currentStep ts.TimeStep
}

// New creates a new Highway environment with the argument task. The
// task's Start() must produce two features: the starting lane index
// and the starting speed of the controlled vehicle.
func New(t env.Task, config Config, discount float64,
	seed uint64) (*Highway, ts.TimeStep, error) {
	if err := config.validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	highway := &Highway{
		Task:     t,
		config:   config,
		discount: discount,
		rng:      rand.New(rand.NewSource(seed)),
	}

	if drive, ok := t.(*Drive); ok {
		drive.Register(highway)
	}

	firstStep, err := highway.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not reset: %v", err)
	}

	return highway, firstStep, nil
}

// Reset resets the environment, drawing the controlled vehicle's
// starting lane and speed from the Starter and repopulating traffic
func (h *Highway) Reset() (ts.TimeStep, error) {
	start := h.Start()
	if start.Len() != 2 {
		return ts.TimeStep{}, fmt.Errorf("reset: starting states must "+
			"have two features [lane, speed], got %v", start.Len())
	}

	lane := int(start.AtVec(0))
	if h.config.InitialLaneID >= 0 {
		lane = h.config.InitialLaneID
	}
	if lane < 0 || lane >= h.config.LanesCount {
		return ts.TimeStep{}, fmt.Errorf("reset: illegal starting lane "+
			"%v ∉ [0, %v]", lane, h.config.LanesCount-1)
	}

	h.ego = &vehicle{
		y:     float64(lane) * h.config.LaneWidth,
		speed: floatutils.ClipInterval(start.AtVec(1), h.config.speedBounds()),
	}
	h.action = [2]float64{}
	h.spawnTraffic()

	step := ts.New(ts.First, 0, h.discount, h.observe(), 0)
	h.currentStep = step

	return step, nil
}

// spawnTraffic places the uncontrolled vehicles ahead of the
// controlled vehicle with jittered spacing and random lanes
func (h *Highway) spawnTraffic() {
	h.traffic = make([]*vehicle, h.config.VehiclesCount)
	for i := range h.traffic {
		targetSpeed := 18.0 + 8.0*h.rng.Float64()
		h.traffic[i] = &vehicle{
			x: h.config.VehicleSpacing*float64(i+1) +
				(h.rng.Float64()-0.5)*h.config.VehicleSpacing/2,
			y:           float64(h.rng.Intn(h.config.LanesCount)) * h.config.LaneWidth,
			speed:       targetSpeed,
			targetSpeed: targetSpeed,
		}
	}
}

// Step takes one environmental step given the primitive action
// [acceleration, steering] and returns the next timestep and a bool
// indicating whether the episode has ended. Commands outside the legal
// acceleration and steering ranges are clipped.
func (h *Highway) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a == nil || a.Len() != ActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: actions must be "+
			"%v-dimensional", ActionDims)
	}

	h.action = [2]float64{
		floatutils.Clip(a.AtVec(0), -MaxAcceleration, MaxAcceleration),
		floatutils.Clip(a.AtVec(1), -MaxSteering, MaxSteering),
	}

	substeps := int(h.config.SimulationFrequency/h.config.PolicyFrequency +
		0.5)
	if substeps < 1 {
		substeps = 1
	}
	dt := 1.0 / h.config.SimulationFrequency

	trafficBounds := r1.Interval{Min: 0, Max: h.config.MaxSpeed}
	for i := 0; i < substeps; i++ {
		if !h.ego.crashed {
			h.ego.step(h.action[0], h.action[1], dt, h.config.speedBounds())
		}
		for _, v := range h.traffic {
			if v.crashed {
				continue
			}
			v.step(v.idmAcceleration(h.leader(v)), 0, dt, trafficBounds)
		}
		h.detectCollisions()
	}

	observation := h.observe()
	reward := h.GetReward(h.currentStep.Observation, a, observation)
	nextStep := ts.New(ts.Mid, reward, h.discount, observation,
		h.currentStep.Number+1)

	h.End(&nextStep)

	h.currentStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// CurrentTimeStep returns the current timestep of the environment
func (h *Highway) CurrentTimeStep() ts.TimeStep {
	return h.currentStep
}

// leader returns the nearest vehicle ahead of v in v's lane, or nil if
// the lane is free ahead
func (h *Highway) leader(v *vehicle) *vehicle {
	lane := h.laneIndex(v.y)
	all := append([]*vehicle{h.ego}, h.traffic...)

	ahead := lo.Filter(all, func(other *vehicle, _ int) bool {
		return other != v && h.laneIndex(other.y) == lane && other.x > v.x
	})
	if len(ahead) == 0 {
		return nil
	}

	return lo.MinBy(ahead, func(a, b *vehicle) bool {
		return a.x < b.x
	})
}

// detectCollisions marks the controlled vehicle and any traffic
// vehicle it overlaps as crashed. Traffic vehicles do not collide with
// each other: their lane keeping and car following make such
// collisions irrelevant to the controlled vehicle's episode.
func (h *Highway) detectCollisions() {
	if h.ego.crashed {
		return
	}
	for _, v := range h.traffic {
		if h.ego.overlaps(v) {
			h.ego.crashed = true
			v.crashed = true
			log.Debugf("collision at x=%.1f, lane %v", h.ego.x, h.Lane())
			return
		}
	}
}

// observe builds the Kinematics observation: one row per observed
// vehicle, the controlled vehicle first in absolute coordinates, then
// the nearest traffic vehicles relative to it, padded with
// zero-presence rows.
func (h *Highway) observe() *mat.VecDense {
	rows := h.config.ObservedVehicles
	data := make([]float64, rows*ObservationFeatures)

	egoVx := h.ego.speed * math.Cos(h.ego.heading)
	egoVy := h.ego.speed * math.Sin(h.ego.heading)
	copy(data, []float64{1, h.ego.x, h.ego.y, egoVx, egoVy})

	nearest := make([]*vehicle, len(h.traffic))
	copy(nearest, h.traffic)
	sort.Slice(nearest, func(i, j int) bool {
		return math.Abs(nearest[i].x-h.ego.x) < math.Abs(nearest[j].x-h.ego.x)
	})

	for i := 1; i < rows && i-1 < len(nearest); i++ {
		v := nearest[i-1]
		vx := v.speed * math.Cos(v.heading)
		vy := v.speed * math.Sin(v.heading)
		copy(data[i*ObservationFeatures:], []float64{
			1,
			v.x - h.ego.x,
			v.y - h.ego.y,
			vx - egoVx,
			vy - egoVy,
		})
	}

	return mat.NewVecDense(len(data), data)
}

// laneIndex returns the index of the lane whose center is nearest to
// lateral position y, clamped to the road
func (h *Highway) laneIndex(y float64) int {
	lane := int(math.Round(y / h.config.LaneWidth))
	if lane < 0 {
		return 0
	}
	if lane >= h.config.LanesCount {
		return h.config.LanesCount - 1
	}
	return lane
}

// Lane returns the lane index of the controlled vehicle
func (h *Highway) Lane() int {
	return h.laneIndex(h.ego.y)
}

// LaneOffset returns the lateral offset of the controlled vehicle from
// the center of its current lane in meters
func (h *Highway) LaneOffset() float64 {
	return h.ego.y - float64(h.Lane())*h.config.LaneWidth
}

// PositionX returns the longitudinal position of the controlled
// vehicle in meters
func (h *Highway) PositionX() float64 {
	return h.ego.x
}

// PositionY returns the lateral position of the controlled vehicle in
// meters
func (h *Highway) PositionY() float64 {
	return h.ego.y
}

// Heading returns the heading of the controlled vehicle in radians
func (h *Highway) Heading() float64 {
	return h.ego.heading
}

// SetHeading overrides the heading of the controlled vehicle. It
// exists so that a goal controller can straighten the vehicle after
// completing a lane change.
func (h *Highway) SetHeading(heading float64) {
	h.ego.heading = heading
}

// Speed returns the scalar speed of the controlled vehicle in m/s
func (h *Highway) Speed() float64 {
	return h.ego.speed
}

// OnRoad returns whether the controlled vehicle is within the lateral
// extent of the road
func (h *Highway) OnRoad() bool {
	half := h.config.LaneWidth / 2
	return h.ego.y >= -half &&
		h.ego.y <= float64(h.config.LanesCount-1)*h.config.LaneWidth+half
}

// Crashed returns whether the controlled vehicle has collided
func (h *Highway) Crashed() bool {
	return h.ego.crashed
}

// Command returns the in-flight [acceleration, steering] command pair
func (h *Highway) Command() (float64, float64) {
	return h.action[0], h.action[1]
}

// SetCommand overrides the in-flight command pair. It exists so that a
// goal controller can zero a command after reaching its goal.
func (h *Highway) SetCommand(acceleration, steering float64) {
	h.action = [2]float64{acceleration, steering}
}

// LaneCount returns the number of lanes on the road
func (h *Highway) LaneCount() int {
	return h.config.LanesCount
}

// LaneWidth returns the width of each lane in meters
func (h *Highway) LaneWidth() float64 {
	return h.config.LaneWidth
}

// PolicyFrequency returns the frequency in Hz at which the environment
// accepts actions
func (h *Highway) PolicyFrequency() float64 {
	return h.config.PolicyFrequency
}

// SpeedBounds returns the speed bounds of the controlled vehicle
func (h *Highway) SpeedBounds() r1.Interval {
	return h.config.speedBounds()
}

// RewardSpeedRange returns the speed range rewarded by the driving task
func (h *Highway) RewardSpeedRange() r1.Interval {
	return h.config.RewardSpeedBounds()
}

// ObservationSpec returns the observation specification of the
// environment
func (h *Highway) ObservationSpec() env.Spec {
	length := h.config.ObservedVehicles * ObservationFeatures
	shape := mat.NewVecDense(length, nil)

	lowerBound := mat.NewVecDense(length, nil)
	upperBound := mat.NewVecDense(length, nil)
	for i := 0; i < length; i++ {
		lowerBound.SetVec(i, math.Inf(-1))
		upperBound.SetVec(i, math.Inf(1))
	}

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Continuous)
}

// ActionSpec returns the action specification of the environment
func (h *Highway) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{-MaxAcceleration, -MaxSteering})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{MaxAcceleration, MaxSteering})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (h *Highway) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{h.discount})

	return env.NewSpec(shape, env.Discount, bound, bound, env.Continuous)
}

// String returns a string representation of the environment
func (h *Highway) String() string {
	return fmt.Sprintf("Highway  |  Lane: %v  |  x: %.1f  |  Speed: %.1f",
		h.Lane(), h.ego.x, h.ego.speed)
}
