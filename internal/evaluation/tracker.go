// Package evaluation scores a driving run incrementally, one tick at a time.
package evaluation

import (
	"fmt"
	"math"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/car"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

const (
	// CrashThreshold is the |DistanceFromCenter| beyond which the car is off
	// the track.
	CrashThreshold = 0.9
	// StuckSpeed and StuckAfter define a stuck car: slower than StuckSpeed
	// once the lap clock has passed StuckAfter seconds.
	StuckSpeed = 5.0
	StuckAfter = 10.0
)

// Weights are the fitness priorities, fixed for the life of a run.
type Weights struct {
	Speed           float64 `yaml:"speed" json:"speed"`
	Distance        float64 `yaml:"distance" json:"distance"`
	SteeringPenalty float64 `yaml:"steering_penalty" json:"steering_penalty"`
}

// DefaultWeights favour distance covered and fast laps while punishing a
// nervous steering hand.
func DefaultWeights() Weights {
	return Weights{Speed: 5, Distance: 1, SteeringPenalty: 100}
}

// Validate rejects weights that would make fitness meaningless.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"speed":            w.Speed,
		"distance":         w.Distance,
		"steering_penalty": w.SteeringPenalty,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s must be finite, got %v", name, v)
		}
	}
	return nil
}

// Metrics is the running state of an evaluation.
type Metrics struct {
	Crashed     bool `json:"crashed"`
	Stuck       bool `json:"stuck"`
	LapComplete bool `json:"lap_complete"`
	// AvgSpeed is progress over lap time, see Tracker.Observe.
	AvgSpeed float64 `json:"avg_speed"`
	// Distance is the distance raced so far.
	Distance float64 `json:"distance"`
	// SteeringEffort is the mean of |steering| over all processed ticks.
	SteeringEffort float64 `json:"steering_effort"`
	// Iteration counts fully processed ticks.
	Iteration    int     `json:"iteration"`
	LapTime      float64 `json:"lap_time"`
	LastLapTime  float64 `json:"last_lap_time"`
	RacePosition int     `json:"race_position"`
	Fitness      float64 `json:"fitness"`
}

// Tracker maintains Metrics across ticks. It only observes; deciding when a
// run ends is up to its owner. A Tracker is not safe for concurrent use.
type Tracker struct {
	weights Weights
	m       Metrics
}

// NewTracker creates a tracker scoring with w.
func NewTracker(w Weights) *Tracker {
	return &Tracker{weights: w}
}

// Weights returns the configured priorities.
func (t *Tracker) Weights() Weights {
	return t.weights
}

// Observe folds a new telemetry snapshot into the metrics and recomputes
// fitness.
func (t *Tracker) Observe(s *car.State) {
	t.m.Crashed = math.Abs(s.DistanceFromCenter) > CrashThreshold
	t.m.Stuck = s.SpeedX < StuckSpeed && s.CurrentLapTime > StuckAfter
	t.m.LapComplete = s.LastLapTime > 0
	t.m.LapTime = s.CurrentLapTime
	t.m.LastLapTime = s.LastLapTime
	t.m.RacePosition = s.RacePosition
	t.m.Distance = s.DistanceRaced

	// distFromStart bounds the progress credited inside a lap
	if s.CurrentLapTime <= 0 || s.DistanceFromStart <= 0 {
		t.m.AvgSpeed = 0
	} else {
		t.m.AvgSpeed = math.Min(s.DistanceRaced, s.DistanceFromStart) / s.CurrentLapTime
	}

	t.m.Fitness = t.fitness()
}

// RecordSteering folds the steering of the command just produced into the
// steering effort and completes the tick.
func (t *Tracker) RecordSteering(cmd *car.Command) {
	t.m.SteeringEffort = wire.RollingAverage(t.m.SteeringEffort, t.m.Iteration, math.Abs(cmd.Steering))
	t.m.Iteration++
	t.m.Fitness = t.fitness()
}

// Metrics returns a copy of the current metrics.
func (t *Tracker) Metrics() Metrics {
	return t.m
}

// Fitness returns the current score.
func (t *Tracker) Fitness() float64 {
	return t.m.Fitness
}

// Reset clears all metrics, keeping the weights.
func (t *Tracker) Reset() {
	t.m = Metrics{}
}

func (t *Tracker) fitness() float64 {
	return t.weights.Speed*t.m.AvgSpeed +
		t.weights.Distance*t.m.Distance -
		t.weights.SteeringPenalty*t.m.SteeringEffort
}
