package highway

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gohighway/utils/floatutils"
)

const (
	// VehicleLength and VehicleWidth are the dimensions of every
	// vehicle on the road in meters
	VehicleLength float64 = 5.0
	VehicleWidth  float64 = 2.0

	// MaxAcceleration bounds the acceleration command in m/s^2
	MaxAcceleration float64 = 5.0

	// MaxSteering bounds the steering command in radians
	MaxSteering float64 = math.Pi / 4.0

	// IDM parameters for the uncontrolled traffic
	idmMaxAcceleration float64 = 3.0
	idmComfortBraking  float64 = 3.0
	idmDistanceWanted  float64 = 10.0
	idmTimeWanted      float64 = 1.5
	idmDelta           float64 = 4.0
)

// vehicle holds the physical state of a single vehicle. Positions are
// in meters with x pointing along the road and y across it, headings
// in radians, speeds in m/s.
type vehicle struct {
	x       float64
	y       float64
	heading float64
	speed   float64

	// targetSpeed is the cruising speed an uncontrolled vehicle's IDM
	// controller accelerates toward. Unused for the controlled vehicle.
	targetSpeed float64

	crashed bool
}

// step integrates the vehicle's kinematic bicycle model for dt seconds
// under an acceleration and steering command. The slip angle sits
// halfway between heading and steering, as for a vehicle steered by
// its front axle.
func (v *vehicle) step(acceleration, steering, dt float64,
	speedBounds r1.Interval) {
	slip := math.Atan(0.5 * math.Tan(steering))

	v.x += v.speed * math.Cos(v.heading+slip) * dt
	v.y += v.speed * math.Sin(v.heading+slip) * dt
	v.heading += v.speed * math.Sin(slip) / VehicleLength * dt
	v.speed = floatutils.ClipInterval(v.speed+acceleration*dt, speedBounds)
}

// overlaps returns whether the bounding boxes of two vehicles
// intersect. Boxes are axis-aligned: at highway headings the
// difference to oriented boxes is negligible.
func (v *vehicle) overlaps(other *vehicle) bool {
	return math.Abs(v.x-other.x) < VehicleLength &&
		math.Abs(v.y-other.y) < VehicleWidth
}

// idmAcceleration returns the acceleration chosen by the Intelligent
// Driver Model for a vehicle with a leader gap meters ahead closing at
// closingSpeed m/s. A nil leader gives free-road acceleration.
func (v *vehicle) idmAcceleration(leader *vehicle) float64 {
	free := 1 - math.Pow(math.Max(v.speed, 0)/v.targetSpeed, idmDelta)
	if leader == nil {
		return idmMaxAcceleration * free
	}

	gap := leader.x - v.x - VehicleLength
	if gap < 1e-2 {
		gap = 1e-2
	}
	closingSpeed := v.speed - leader.speed
	desiredGap := idmDistanceWanted + v.speed*idmTimeWanted +
		v.speed*closingSpeed/
			(2*math.Sqrt(idmMaxAcceleration*idmComfortBraking))

	interaction := math.Pow(desiredGap/gap, 2)
	return idmMaxAcceleration * (free - interaction)
}
