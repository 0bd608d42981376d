package car

import (
	"fmt"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

// Command is the actuator output of a driving policy for one tick.
type Command struct {
	// Accelerator pedal position in [0, 1].
	Accelerator float64
	// Brake pedal position in [0, 1].
	Brake float64
	// Gear in [-1, 6]; 0 is neutral.
	Gear int
	// Steering in [-1, 1]; -1 is full right.
	Steering float64
	// Clutch in [0, 1].
	Clutch float64
	// Focus is the direction of the focused range finder, in degrees.
	Focus int
	// Meta set to 1 asks the server to restart the race.
	Meta int
}

// ActuatorFields returns the command in wire order.
func (c *Command) ActuatorFields() wire.Fields {
	return wire.Fields{
		{Key: "accel", Values: []float64{c.Accelerator}},
		{Key: "brake", Values: []float64{c.Brake}},
		{Key: "gear", Values: []float64{float64(c.Gear)}},
		{Key: "steer", Values: []float64{c.Steering}},
		{Key: "clutch", Values: []float64{c.Clutch}},
		{Key: "focus", Values: []float64{float64(c.Focus)}},
		{Key: "meta", Values: []float64{float64(c.Meta)}},
	}
}

func (c *Command) String() string {
	return fmt.Sprintf("Command(accel=%.3f brake=%.3f gear=%d steer=%.3f clutch=%.3f meta=%d)",
		c.Accelerator, c.Brake, c.Gear, c.Steering, c.Clutch, c.Meta)
}
