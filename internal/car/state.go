// Package car holds the structured per-tick views exchanged with driving
// policies: the telemetry State decoded from the server and the Command sent
// back.
package car

import (
	"errors"
	"fmt"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/units"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

// Sensor counts fixed by the server protocol.
const (
	RangeFinderCount = 19
	OpponentCount    = 36
	WheelCount       = 4
	FocusCount       = 5
)

// State is the telemetry snapshot for one tick. Angles are in degrees and
// speeds in m/s; distances are in metres.
type State struct {
	// Angle between the car direction and the track axis.
	Angle float64
	// CurrentLapTime is the time elapsed in the current lap, in seconds.
	CurrentLapTime float64
	Damage         int
	// DistanceFromStart is measured along the track line from the start line.
	DistanceFromStart float64
	// DistanceRaced is the distance covered since the race start.
	DistanceRaced float64
	Fuel          float64
	Gear          int
	// LastLapTime is zero until the first lap completes.
	LastLapTime  float64
	Opponents    []float64
	RacePosition int
	RPM          float64
	SpeedX       float64
	SpeedY       float64
	SpeedZ       float64
	// DistancesFromEdge holds the range finder readings, one per configured
	// angle.
	DistancesFromEdge []float64
	// DistanceFromCenter is 0 on the axis, ±1 at the track edges.
	DistanceFromCenter float64
	// WheelVelocities are wheel spin rates in degrees per second.
	WheelVelocities []float64
	// Z is the height of the car above the track surface.
	Z                        float64
	FocusedDistancesFromEdge []float64
}

// NewState builds a State from a decoded frame. Decoding is lenient: fields
// that are missing or do not parse are left at their zero value and
// reported in the returned error, which callers may treat as diagnostic.
func NewState(frame wire.Frame) (*State, error) {
	p := fieldParser{frame: frame}
	s := &State{
		Angle:                    units.Degrees(p.float("angle")),
		CurrentLapTime:           p.float("curLapTime"),
		Damage:                   p.int("damage"),
		DistanceFromStart:        p.float("distFromStart"),
		DistanceRaced:            p.float("distRaced"),
		Fuel:                     p.float("fuel"),
		Gear:                     p.int("gear"),
		LastLapTime:              p.float("lastLapTime"),
		Opponents:                p.floats("opponents"),
		RacePosition:             p.int("racePos"),
		RPM:                      p.float("rpm"),
		SpeedX:                   units.KMHToMPS(p.float("speedX")),
		SpeedY:                   units.KMHToMPS(p.float("speedY")),
		SpeedZ:                   units.KMHToMPS(p.float("speedZ")),
		DistancesFromEdge:        p.floats("track"),
		DistanceFromCenter:       p.float("trackPos"),
		WheelVelocities:          p.floats("wheelSpinVel"),
		Z:                        p.float("z"),
		FocusedDistancesFromEdge: p.floats("focus"),
	}
	for i, v := range s.WheelVelocities {
		s.WheelVelocities[i] = units.Degrees(v)
	}
	return s, errors.Join(p.errs...)
}

func (s *State) String() string {
	return fmt.Sprintf("State(lap=%.2fs raced=%.1fm speed=%.1fm/s pos=%.3f angle=%.1f° gear=%d rpm=%.0f)",
		s.CurrentLapTime, s.DistanceRaced, s.SpeedX, s.DistanceFromCenter, s.Angle, s.Gear, s.RPM)
}

// fieldParser collects parse failures instead of stopping at the first.
type fieldParser struct {
	frame wire.Frame
	errs  []error
}

func (p *fieldParser) float(key string) float64 {
	v, err := p.frame.Float(key)
	if err != nil {
		p.errs = append(p.errs, err)
	}
	return v
}

func (p *fieldParser) int(key string) int {
	v, err := p.frame.Int(key)
	if err != nil {
		p.errs = append(p.errs, err)
	}
	return v
}

func (p *fieldParser) floats(key string) []float64 {
	v, err := p.frame.Floats(key)
	if err != nil {
		p.errs = append(p.errs, err)
	}
	return v
}
