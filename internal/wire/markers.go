package wire

import "bytes"

// Control messages from the race server. They are recognised by containment,
// not by exact match.
var (
	MarkerIdentified = []byte("***identified***")
	MarkerShutdown   = []byte("***shutdown***")
	MarkerRestart    = []byte("***restart***")
)

// Kind classifies a received datagram.
type Kind int

const (
	KindEmpty Kind = iota
	KindShutdown
	KindRestart
	KindIdentified
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindShutdown:
		return "shutdown"
	case KindRestart:
		return "restart"
	case KindIdentified:
		return "identified"
	case KindData:
		return "data"
	}
	return "unknown"
}

// Classify inspects a datagram. Shutdown wins over restart, which wins over
// identification; anything else non-empty is sensor data.
func Classify(buf []byte) Kind {
	switch {
	case len(buf) == 0:
		return KindEmpty
	case bytes.Contains(buf, MarkerShutdown):
		return KindShutdown
	case bytes.Contains(buf, MarkerRestart):
		return KindRestart
	case bytes.Contains(buf, MarkerIdentified):
		return KindIdentified
	}
	return KindData
}

// IsIdentified reports whether buf carries the handshake acceptance marker.
func IsIdentified(buf []byte) bool {
	return bytes.Contains(buf, MarkerIdentified)
}
