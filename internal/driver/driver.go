// Package driver defines the capabilities a driving policy must offer to be
// plugged into the client, and ships a simple reference policy.
package driver

import (
	"errors"
	"fmt"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/car"
)

// ErrAngleCount is returned when a policy does not supply exactly
// car.RangeFinderCount range finder angles.
var ErrAngleCount = errors.New("inconsistent range finder angle count")

// Driver is a driving policy. The client calls it from a single goroutine,
// so implementations need no locking for that use.
type Driver interface {
	// RangeFinderAngles returns the directions, in degrees, of the 19 range
	// finders. It is read once during the handshake.
	RangeFinderAngles() []float64

	// Drive maps the telemetry of one tick to an actuator command.
	Drive(s *car.State) *car.Command

	// OnShutdown is called once when the client stops.
	OnShutdown()

	// OnRestart is called whenever the server restarts the race.
	OnRestart()
}

// CheckAngles returns the policy's angles, or ErrAngleCount when there are
// not exactly car.RangeFinderCount of them.
func CheckAngles(d Driver) ([]float64, error) {
	angles := d.RangeFinderAngles()
	if len(angles) != car.RangeFinderCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrAngleCount, len(angles), car.RangeFinderCount)
	}
	return angles, nil
}

// DefaultAngles returns the standard range finder layout: dense straight
// ahead, sparse towards the sides.
func DefaultAngles() []float64 {
	return []float64{-90, -75, -60, -45, -30, -20, -15, -10, -5, 0, 5, 10, 15, 20, 30, 45, 60, 75, 90}
}
