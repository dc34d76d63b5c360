package hrl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gohighway/environment"
)

func macroAction(id int) *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(id)})
}

func newTestMacroActions(t *testing.T, f *fakeSimulator) *MacroActions {
	t.Helper()
	m, _, err := NewMacroActions(f, DefaultConfig())
	require.NoError(t, err)
	return m
}

func TestMacroActionsActionSpec(t *testing.T) {
	m := newTestMacroActions(t, newFakeSimulator())

	spec := m.ActionSpec()
	assert.Equal(t, env.Discrete, spec.Cardinality)
	assert.Equal(t, 1, spec.Shape.Len())
	assert.Equal(t, float64(SpeedUp), spec.UpperBound.AtVec(0))

	config := DefaultConfig()
	config.MaintainSpeed = true
	withMaintain, _, err := NewMacroActions(newFakeSimulator(), config)
	require.NoError(t, err)
	assert.Equal(t, MaintainSpeed+1, withMaintain.NumActions())
}

func TestMacroActionsRejectsUnknownAction(t *testing.T) {
	m := newTestMacroActions(t, newFakeSimulator())

	_, _, err := m.Step(macroAction(SpeedUp + 1))
	assert.Error(t, err)

	_, _, err = m.Step(macroAction(-1))
	assert.Error(t, err)
}

// TestMacroActionsLaneChange runs a full change-right macro-step and
// checks the aggregated transition: final lane, alignment, and the
// straightened heading and steering.
func TestMacroActionsLaneChange(t *testing.T) {
	f := newFakeSimulator()
	m := newTestMacroActions(t, f)

	step, last, err := m.Step(macroAction(ChangeRight))
	require.NoError(t, err)
	assert.False(t, last)

	assert.Equal(t, 1, f.Lane())
	assert.Less(t, math.Abs(f.LaneOffset()), 0.3)
	assert.Zero(t, f.Heading())
	_, steering := f.Command()
	assert.Zero(t, steering)

	assert.Equal(t, 1.0, step.Info[InfoHLSteps])
	assert.Equal(t, 8.0, step.Info[InfoLLSteps])
}

// TestMacroActionsInfeasibleLaneChange checks that a lane change off
// the edge of the road is replaced by a hold-lane controller.
func TestMacroActionsInfeasibleLaneChange(t *testing.T) {
	f := newFakeSimulator() // lane 0
	m := newTestMacroActions(t, f)

	step, _, err := m.Step(macroAction(ChangeLeft))
	require.NoError(t, err)

	assert.Equal(t, 0, f.Lane())
	assert.Equal(t, 1.0, step.Info[InfoLLSteps])
}

// TestMacroActionsInfeasibleSpeedChange checks that a speed change
// beyond the vehicle's speed bounds is replaced by a hold-speed
// controller.
func TestMacroActionsInfeasibleSpeedChange(t *testing.T) {
	f := newFakeSimulator()
	f.speed = 39.5 // bounds reach 40, default delta is 1
	m := newTestMacroActions(t, f)

	step, _, err := m.Step(macroAction(SpeedUp))
	require.NoError(t, err)

	assert.Equal(t, 39.5, f.Speed())
	assert.Equal(t, 1.0, step.Info[InfoLLSteps])
}

// TestMacroActionsSpeedUp checks that a speed macro-action ends with
// the speed inside the half-open goal interval and the acceleration
// command forced to zero.
func TestMacroActionsSpeedUp(t *testing.T) {
	f := newFakeSimulator()
	m := newTestMacroActions(t, f)

	step, _, err := m.Step(macroAction(SpeedUp))
	require.NoError(t, err)

	assert.Greater(t, f.Speed(), 11.0-0.2)
	assert.LessOrEqual(t, f.Speed(), 11.0)
	acceleration, _ := f.Command()
	assert.Zero(t, acceleration)
	assert.Equal(t, 4.0, step.Info[InfoLLSteps])
}

// TestMacroActionsForward checks that the forward macro-action runs
// until the target distance is covered.
func TestMacroActionsForward(t *testing.T) {
	f := newFakeSimulator()
	f.advance = 3.0
	m := newTestMacroActions(t, f)

	step, _, err := m.Step(macroAction(Forward))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, f.PositionX(), 10.0)
	assert.Equal(t, 4.0, step.Info[InfoLLSteps])
	assert.Equal(t, 0, f.Lane())
}

// TestMacroActionsCumulativeReward checks that the aggregated reward
// is the exact sum of the per-tick rewards seen during the macro-step.
func TestMacroActionsCumulativeReward(t *testing.T) {
	f := newFakeSimulator()
	f.advance = 4.0 // forward target reached on the third tick
	f.rewards = []float64{0.1, 0.2, 0.15}
	m := newTestMacroActions(t, f)

	step, _, err := m.Step(macroAction(Forward))
	require.NoError(t, err)

	assert.Equal(t, 3.0, step.Info[InfoLLSteps])
	assert.InDelta(t, 0.45, step.Reward, 1e-12)
}

// TestMacroActionsStepCounters checks that the high-level counter
// increments by exactly one per macro-step while the low-level counter
// accumulates ticks.
func TestMacroActionsStepCounters(t *testing.T) {
	f := newFakeSimulator()
	m := newTestMacroActions(t, f)

	step, _, err := m.Step(macroAction(ChangeRight)) // 8 ticks
	require.NoError(t, err)
	assert.Equal(t, 1.0, step.Info[InfoHLSteps])
	assert.Equal(t, 8.0, step.Info[InfoLLSteps])

	step, _, err = m.Step(macroAction(SpeedUp)) // 4 ticks
	require.NoError(t, err)
	assert.Equal(t, 2.0, step.Info[InfoHLSteps])
	assert.Equal(t, 12.0, step.Info[InfoLLSteps])
	assert.Equal(t, 12.0, step.Info[InfoLLStepsTotal])
}

// TestMacroActionsReset checks that Reset zeroes the per-episode
// counters, increments the episode counter, and keeps the lifetime
// low-level count.
func TestMacroActionsReset(t *testing.T) {
	f := newFakeSimulator()
	m := newTestMacroActions(t, f)

	_, _, err := m.Step(macroAction(ChangeRight))
	require.NoError(t, err)

	_, err = m.Reset()
	require.NoError(t, err)

	step, _, err := m.Step(macroAction(SpeedUp))
	require.NoError(t, err)
	assert.Equal(t, 1.0, step.Info[InfoHLSteps])
	assert.Equal(t, 4.0, step.Info[InfoLLSteps])
	assert.Equal(t, 12.0, step.Info[InfoLLStepsTotal])
}

// TestMacroActionsTerminationMidExecution checks that episode
// termination inside a macro-step returns immediately with the tick
// count reflecting only the executed ticks.
func TestMacroActionsTerminationMidExecution(t *testing.T) {
	f := newFakeSimulator()
	f.terminateAt = 2 // a full lane change would need 8 ticks
	m := newTestMacroActions(t, f)

	step, last, err := m.Step(macroAction(ChangeRight))
	require.NoError(t, err)

	assert.True(t, last)
	assert.True(t, step.Last())
	assert.True(t, step.TerminalEnd())
	assert.Equal(t, 2.0, step.Info[InfoLLSteps])
	assert.NotEqual(t, 1, f.Lane())
}

// TestMacroActionsPositionInfo checks that the vehicle's position is
// injected into the aggregated timestep's info.
func TestMacroActionsPositionInfo(t *testing.T) {
	f := newFakeSimulator()
	f.advance = 3.0
	m := newTestMacroActions(t, f)

	step, _, err := m.Step(macroAction(Forward))
	require.NoError(t, err)

	assert.Equal(t, f.PositionX(), step.Info[InfoPosX])
	assert.Equal(t, f.PositionY(), step.Info[InfoPosY])
}

func TestMacroActionsConfigValidation(t *testing.T) {
	config := DefaultConfig()
	config.SpeedTolerance = 0
	_, _, err := NewMacroActions(newFakeSimulator(), config)
	assert.Error(t, err)

	config = DefaultConfig()
	config.ForwardDistance = -1
	_, _, err = NewMacroActions(newFakeSimulator(), config)
	assert.Error(t, err)

	config = DefaultConfig()
	config.MinSteerSpeed = 0
	_, _, err = NewMacroActions(newFakeSimulator(), config)
	assert.Error(t, err)
}
