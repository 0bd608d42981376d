// Package units provides the conversions between the simulator's native
// telemetry units and the ones exposed to driving policies.
package units

import "math"

const (
	// MPSPerKMH is the number of metres per second in one kilometre per hour.
	MPSPerKMH = 1000.0 / 3600.0
	// DegreesPerRadian converts radians to degrees.
	DegreesPerRadian = 180.0 / math.Pi
)

// KMHToMPS converts a speed in km/h to m/s.
func KMHToMPS(kmh float64) float64 {
	return kmh * MPSPerKMH
}

// MPSToKMH converts a speed in m/s to km/h.
func MPSToKMH(mps float64) float64 {
	return mps / MPSPerKMH
}

// Degrees converts an angle (or angular velocity) in radians to degrees.
func Degrees(rad float64) float64 {
	return rad * DegreesPerRadian
}

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 {
	return deg / DegreesPerRadian
}
