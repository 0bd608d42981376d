package client

import (
	"fmt"
	"strings"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/evaluation"
)

// StopCondition names an evaluation outcome that ends a run early.
type StopCondition string

const (
	StopOnCrash StopCondition = "crashed"
	StopOnStuck StopCondition = "stuck"
	StopOnLap   StopCondition = "lap"
)

// StopConditions is the set of conditions a client watches. The zero value
// never stops.
type StopConditions []StopCondition

// ParseStopConditions validates condition names, ignoring blanks and case.
func ParseStopConditions(names []string) (StopConditions, error) {
	var out StopConditions
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		switch cond := StopCondition(name); cond {
		case StopOnCrash, StopOnStuck, StopOnLap:
			out = append(out, cond)
		default:
			return nil, fmt.Errorf("unknown stop condition %q: expected crashed, stuck or lap", name)
		}
	}
	return out, nil
}

// Triggered returns the first condition that holds for m.
func (s StopConditions) Triggered(m evaluation.Metrics) (StopCondition, bool) {
	for _, cond := range s {
		switch {
		case cond == StopOnCrash && m.Crashed,
			cond == StopOnStuck && m.Stuck,
			cond == StopOnLap && m.LapComplete:
			return cond, true
		}
	}
	return "", false
}
