package client

// State is the connection lifecycle state of a Client.
type State int32

const (
	// Stopped: not connected to a race server; no socket is open.
	Stopped State = iota
	// Starting: socket open, handshake in progress.
	Starting
	// Running: connected and driving one tick per server message.
	Running
	// Stopping: final fitness published, leaving the tick loop.
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Starting:
		return "STARTING"
	case Running:
		return "RUNNING"
	case Stopping:
		return "STOPPING"
	}
	return "UNKNOWN"
}
