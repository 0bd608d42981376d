package driver

import (
	"math"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/car"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/units"
)

// GearShift configures the gearbox logic of Simple.
type GearShift struct {
	// Delay is the number of ticks to hold a gear after shifting.
	Delay int
	// UpRPM and DownRPM are the shift points.
	UpRPM   float64
	DownRPM float64
	TopGear int
}

// DefaultGearShift returns conservative shift points.
func DefaultGearShift() GearShift {
	return GearShift{Delay: 25, UpRPM: 7500, DownRPM: 2000, TopGear: 6}
}

// SteerLock is the steering angle, in radians, reached at full lock.
const SteerLock = 0.366519

// Simple keeps the car on the track axis at a modest speed. It is the policy
// the client binary runs when no other is plugged in.
type Simple struct {
	angles     []float64
	shift      GearShift
	sinceShift int

	// TrackPosGain weights the lateral offset against the heading error.
	TrackPosGain float64
}

// NewSimple creates the reference policy.
func NewSimple() *Simple {
	return &Simple{
		angles:       DefaultAngles(),
		shift:        DefaultGearShift(),
		TrackPosGain: 0.5,
	}
}

// RangeFinderAngles implements Driver.
func (d *Simple) RangeFinderAngles() []float64 {
	return d.angles
}

// Drive implements Driver.
func (d *Simple) Drive(s *car.State) *car.Command {
	cmd := &car.Command{
		Steering:    d.steer(s),
		Accelerator: accelerate(units.MPSToKMH(s.SpeedX)),
		Gear:        d.shiftGear(s.Gear, s.RPM),
	}
	// ease off while outside the track so the car can be brought back
	if math.Abs(s.DistanceFromCenter) > 1 {
		cmd.Accelerator = math.Min(cmd.Accelerator, 0.3)
	}
	return cmd
}

// OnShutdown implements Driver.
func (d *Simple) OnShutdown() {
	monitoring.Logger.Debug("Simple driver shut down")
}

// OnRestart implements Driver.
func (d *Simple) OnRestart() {
	d.sinceShift = 0
	monitoring.Logger.Debug("Simple driver restarted")
}

func (d *Simple) steer(s *car.State) float64 {
	target := units.Radians(s.Angle) - s.DistanceFromCenter*d.TrackPosGain
	return clamp(target/SteerLock, -1, 1)
}

// accelerate gives full throttle below 20 km/h, then tapers linearly and
// never exceeds 0.2.
func accelerate(speedKMH float64) float64 {
	if speedKMH < 20 {
		return 1
	}
	return clamp(math.Min(0.2, -0.02*speedKMH+1.8), 0, 1)
}

func (d *Simple) shiftGear(previous int, rpm float64) int {
	var next int
	switch {
	case previous <= 0:
		next = 1
	case d.sinceShift < d.shift.Delay:
		next = previous
	case rpm > d.shift.UpRPM:
		next = min(previous+1, d.shift.TopGear)
	case rpm < d.shift.DownRPM:
		next = max(previous-1, 1)
	default:
		next = previous
	}

	if next != previous {
		d.sinceShift = 0
	} else {
		d.sinceShift++
	}
	return next
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
