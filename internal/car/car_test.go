package car

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

func init() {
	monitoring.SetLogger(nil)
}

const sample = "(angle 0.00872665)(curLapTime 12.5)(damage 0)(distFromStart 1520.3)" +
	"(distRaced 250.75)(fuel 94)(gear 3)(lastLapTime 0)" +
	"(opponents 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200 200)" +
	"(racePos 1)(rpm 6543.2)(speedX 90)(speedY -3.6)(speedZ 0)" +
	"(track 4.1 4.3 4.8 5.6 7 8.7 10.1 12.2 16.5 25.3 40.1 30 20 14 9 7 5.5 4.9 4.6)" +
	"(trackPos -0.25)(wheelSpinVel 3.14159265 3.14159265 3.2 3.2)(z 0.34)(focus -1 -1 -1 -1 -1)"

func TestNewState(t *testing.T) {
	frame, err := wire.Decode([]byte(sample))
	require.NoError(t, err)

	s, err := NewState(frame)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, s.Angle, 1e-3, "angle converted to degrees")
	assert.Equal(t, 12.5, s.CurrentLapTime)
	assert.Equal(t, 1520.3, s.DistanceFromStart)
	assert.Equal(t, 250.75, s.DistanceRaced)
	assert.Equal(t, 3, s.Gear)
	assert.Equal(t, 1, s.RacePosition)
	assert.InDelta(t, 25.0, s.SpeedX, 1e-9, "speed converted to m/s")
	assert.InDelta(t, -1.0, s.SpeedY, 1e-9)
	assert.Len(t, s.Opponents, OpponentCount)
	assert.Len(t, s.DistancesFromEdge, RangeFinderCount)
	assert.Equal(t, -0.25, s.DistanceFromCenter)
	require.Len(t, s.WheelVelocities, WheelCount)
	assert.InDelta(t, 180.0, s.WheelVelocities[0], 1e-4)
	assert.Len(t, s.FocusedDistancesFromEdge, FocusCount)
	assert.Contains(t, s.String(), "gear=3")
}

func TestNewState_Lenient(t *testing.T) {
	frame, _ := wire.Decode([]byte("(trackPos 0.95)(speedX oops)(gear 2"))

	s, err := NewState(frame)
	require.NotNil(t, s)
	assert.Error(t, err, "missing and invalid fields are reported")
	assert.Equal(t, 0.95, s.DistanceFromCenter)
	assert.Zero(t, s.SpeedX)
	assert.Zero(t, s.Gear)
	assert.Nil(t, s.DistancesFromEdge)
}

func TestCommand_ActuatorFields(t *testing.T) {
	cmd := &Command{Accelerator: 1, Brake: 0, Gear: 2, Steering: -0.125, Clutch: 0.5, Meta: 1}

	got := string(wire.Encode(cmd.ActuatorFields(), ""))
	want := "(accel 1)(brake 0)(gear 2)(steer -0.125)(clutch 0.5)(focus 0)(meta 1)"
	assert.Equal(t, want, got)

	frame, err := wire.Decode([]byte(got))
	require.NoError(t, err)
	steer, err := frame.Float("steer")
	require.NoError(t, err)
	assert.False(t, math.IsNaN(steer))
	assert.Equal(t, -0.125, steer)
	assert.Contains(t, cmd.String(), "gear=2")
}
