package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/car"
)

func TestObserve_Crashed(t *testing.T) {
	tests := []struct {
		name   string
		pos    float64
		expect bool
	}{
		{"off track right", 0.95, true},
		{"off track left", -0.95, true},
		{"on track", 0.5, false},
		{"at threshold", 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(DefaultWeights())
			tr.Observe(&car.State{DistanceFromCenter: tt.pos})
			if got := tr.Metrics().Crashed; got != tt.expect {
				t.Errorf("Crashed = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestObserve_StuckAndLap(t *testing.T) {
	tests := []struct {
		name      string
		state     car.State
		wantStuck bool
		wantLap   bool
	}{
		{"slow early", car.State{SpeedX: 1, CurrentLapTime: 5}, false, false},
		{"slow late", car.State{SpeedX: 4.9, CurrentLapTime: 10.5}, true, false},
		{"fast late", car.State{SpeedX: 30, CurrentLapTime: 60}, false, false},
		{"lap done", car.State{SpeedX: 30, CurrentLapTime: 3, LastLapTime: 81.2}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(DefaultWeights())
			tr.Observe(&tt.state)
			m := tr.Metrics()
			if m.Stuck != tt.wantStuck {
				t.Errorf("Stuck = %v, want %v", m.Stuck, tt.wantStuck)
			}
			if m.LapComplete != tt.wantLap {
				t.Errorf("LapComplete = %v, want %v", m.LapComplete, tt.wantLap)
			}
		})
	}
}

func TestObserve_AvgSpeed(t *testing.T) {
	tests := []struct {
		name  string
		state car.State
		want  float64
	}{
		{"no lap time", car.State{CurrentLapTime: 0, DistanceFromStart: 100, DistanceRaced: 100}, 0},
		{"negative lap time", car.State{CurrentLapTime: -0.5, DistanceFromStart: 100, DistanceRaced: 100}, 0},
		{"before start line", car.State{CurrentLapTime: 2, DistanceFromStart: 0, DistanceRaced: 5}, 0},
		{"raced bounds", car.State{CurrentLapTime: 10, DistanceFromStart: 3000, DistanceRaced: 200}, 20},
		{"start distance bounds", car.State{CurrentLapTime: 10, DistanceFromStart: 150, DistanceRaced: 4000}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(DefaultWeights())
			tr.Observe(&tt.state)
			assert.InDelta(t, tt.want, tr.Metrics().AvgSpeed, 1e-12)
		})
	}
}

func TestRecordSteering_RunningMean(t *testing.T) {
	tr := NewTracker(DefaultWeights())

	steering := []float64{0.5, -0.25, 0, -1}
	for i, s := range steering {
		tr.Observe(&car.State{})
		tr.RecordSteering(&car.Command{Steering: s})
		require.Equal(t, i+1, tr.Metrics().Iteration)
	}

	assert.InDelta(t, (0.5+0.25+0+1)/4, tr.Metrics().SteeringEffort, 1e-12)
}

func TestFitness(t *testing.T) {
	w := Weights{Speed: 5, Distance: 1, SteeringPenalty: 100}
	tr := NewTracker(w)

	tr.Observe(&car.State{CurrentLapTime: 10, DistanceFromStart: 200, DistanceRaced: 200})
	// speed 20, distance 200, no steering yet
	assert.InDelta(t, 5*20+200, tr.Fitness(), 1e-9)

	tr.RecordSteering(&car.Command{Steering: -0.1})
	assert.InDelta(t, 5*20+200-100*0.1, tr.Fitness(), 1e-9)

	// recomputed, not accumulated
	tr.Observe(&car.State{CurrentLapTime: 20, DistanceFromStart: 300, DistanceRaced: 300})
	tr.RecordSteering(&car.Command{Steering: 0.3})
	want := 5*15.0 + 300 - 100*0.2
	assert.InDelta(t, want, tr.Fitness(), 1e-9)
	assert.Equal(t, tr.Fitness(), tr.Metrics().Fitness)

	tr.Reset()
	assert.Equal(t, Metrics{}, tr.Metrics())
	assert.Equal(t, w, tr.Weights())
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.Error(t, Weights{Speed: math.NaN()}.Validate())
	assert.Error(t, Weights{SteeringPenalty: math.Inf(1)}.Validate())
}
