package replay

import (
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/car"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/units"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

// tickSeconds is the simulated time between two server messages.
const tickSeconds = 0.02

// Straight synthesizes a recording of a car cruising along the centre line
// of a straight at speedKMH, one line per tick.
func Straight(ticks int, speedKMH float64) [][]byte {
	track := make([]float64, car.RangeFinderCount)
	for i := range track {
		track[i] = 200
	}
	wheels := make([]float64, car.WheelCount)

	lines := make([][]byte, 0, ticks)
	for i := 1; i <= ticks; i++ {
		lapTime := float64(i) * tickSeconds
		dist := units.KMHToMPS(speedKMH) * lapTime
		lines = append(lines, wire.Encode(wire.Fields{
			{Key: "angle", Values: []float64{0}},
			{Key: "curLapTime", Values: []float64{lapTime}},
			{Key: "damage", Values: []float64{0}},
			{Key: "distFromStart", Values: []float64{dist}},
			{Key: "distRaced", Values: []float64{dist}},
			{Key: "fuel", Values: []float64{94}},
			{Key: "gear", Values: []float64{3}},
			{Key: "lastLapTime", Values: []float64{0}},
			{Key: "racePos", Values: []float64{1}},
			{Key: "rpm", Values: []float64{5000}},
			{Key: "speedX", Values: []float64{speedKMH}},
			{Key: "speedY", Values: []float64{0}},
			{Key: "speedZ", Values: []float64{0}},
			{Key: "track", Values: track},
			{Key: "trackPos", Values: []float64{0}},
			{Key: "wheelSpinVel", Values: wheels},
			{Key: "z", Values: []float64{0.35}},
		}, ""))
	}
	return lines
}
