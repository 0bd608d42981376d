// Package network abstracts the datagram socket the client talks through so
// that the connection state machine can be tested without a simulator.
package network

import (
	"errors"
	"net"
	"time"
)

// UDPSocket defines the UDP socket operations used by the client.
type UDPSocket interface {
	// ReadFromUDP reads one datagram from the socket.
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)

	// WriteToUDP sends one datagram to addr.
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)

	// SetReadDeadline sets the deadline for future Read calls.
	SetReadDeadline(t time.Time) error

	// Close closes the socket.
	Close() error

	// LocalAddr returns the local network address.
	LocalAddr() net.Addr
}

// UDPSocketFactory defines an interface for creating UDP sockets.
type UDPSocketFactory interface {
	// ListenUDP creates and returns a new UDP socket. A nil laddr lets the
	// system pick an ephemeral local port.
	ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error)
}

// RealUDPSocketFactory implements UDPSocketFactory using net.ListenUDP.
// *net.UDPConn satisfies UDPSocket directly.
type RealUDPSocketFactory struct{}

// NewRealUDPSocketFactory creates a new RealUDPSocketFactory.
func NewRealUDPSocketFactory() *RealUDPSocketFactory {
	return &RealUDPSocketFactory{}
}

// ListenUDP creates a new UDP socket.
func (f *RealUDPSocketFactory) ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error) {
	conn, err := net.ListenUDP(network, laddr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// IsTimeout reports whether err is a read or write deadline expiry.
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsClosed reports whether err stems from using a closed socket.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
