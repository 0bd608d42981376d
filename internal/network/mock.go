package network

import (
	"net"
	"sync"
	"time"
)

// MockRead is one scripted result of ReadFromUDP. When Err is set it is
// returned instead of Data.
type MockRead struct {
	Data []byte
	Addr *net.UDPAddr
	Err  error
}

// MockWrite records a call to WriteToUDP.
type MockWrite struct {
	Data []byte
	Addr *net.UDPAddr
}

// MockUDPSocket implements UDPSocket for testing. Reads are served from a
// script; once it runs dry every read reports a timeout after invoking
// Exhausted, which tests typically use to request a stop.
type MockUDPSocket struct {
	mu sync.Mutex

	reads     []MockRead
	readIndex int
	writes    []MockWrite
	deadlines []time.Time
	closed    bool

	// WriteError is returned by every WriteToUDP call if set.
	WriteError error
	// Exhausted is called each time a read finds the script empty.
	Exhausted func()
	// LocalAddress is returned by LocalAddr.
	LocalAddress *net.UDPAddr
}

// NewMockUDPSocket creates a new MockUDPSocket serving the given reads.
func NewMockUDPSocket(reads ...MockRead) *MockUDPSocket {
	return &MockUDPSocket{
		reads: reads,
		LocalAddress: &net.UDPAddr{
			IP:   net.ParseIP("127.0.0.1"),
			Port: 40000,
		},
	}
}

// Datagram is shorthand for a successful scripted read.
func Datagram(s string) MockRead {
	return MockRead{Data: []byte(s)}
}

// Failure is shorthand for a scripted read error.
func Failure(err error) MockRead {
	return MockRead{Err: err}
}

// Push appends reads to the script.
func (m *MockUDPSocket) Push(reads ...MockRead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, reads...)
}

// ReadFromUDP returns the next scripted read.
func (m *MockUDPSocket) ReadFromUDP(b []byte) (int, *net.UDPAddr, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, nil, net.ErrClosed
	}
	if m.readIndex >= len(m.reads) {
		hook := m.Exhausted
		m.mu.Unlock()
		if hook != nil {
			hook()
		}
		return 0, nil, &net.OpError{Op: "read", Net: "udp", Err: &timeoutError{}}
	}
	r := m.reads[m.readIndex]
	m.readIndex++
	m.mu.Unlock()

	if r.Err != nil {
		return 0, nil, r.Err
	}
	return copy(b, r.Data), r.Addr, nil
}

// WriteToUDP records the datagram.
func (m *MockUDPSocket) WriteToUDP(b []byte, addr *net.UDPAddr) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, net.ErrClosed
	}
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	data := make([]byte, len(b))
	copy(data, b)
	m.writes = append(m.writes, MockWrite{Data: data, Addr: addr})
	return len(b), nil
}

// SetReadDeadline records the deadline.
func (m *MockUDPSocket) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadlines = append(m.deadlines, t)
	return nil
}

// Close marks the socket as closed.
func (m *MockUDPSocket) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// LocalAddr returns the mock local address.
func (m *MockUDPSocket) LocalAddr() net.Addr {
	return m.LocalAddress
}

// Closed reports whether Close was called.
func (m *MockUDPSocket) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Writes returns a copy of the recorded writes.
func (m *MockUDPSocket) Writes() []MockWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockWrite(nil), m.writes...)
}

// Deadlines returns a copy of the recorded read deadlines.
func (m *MockUDPSocket) Deadlines() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.deadlines...)
}

// MockUDPSocketFactory implements UDPSocketFactory for testing.
type MockUDPSocketFactory struct {
	mu sync.Mutex

	// Socket is the socket to return from ListenUDP.
	Socket *MockUDPSocket
	// Error is returned by ListenUDP if set.
	Error error
	// ListenCalls records all ListenUDP calls.
	ListenCalls []MockListenCall
}

// MockListenCall records a call to ListenUDP.
type MockListenCall struct {
	Network string
	Addr    *net.UDPAddr
}

// NewMockUDPSocketFactory creates a new MockUDPSocketFactory.
func NewMockUDPSocketFactory(socket *MockUDPSocket) *MockUDPSocketFactory {
	return &MockUDPSocketFactory{Socket: socket}
}

// ListenUDP returns the configured mock socket.
func (f *MockUDPSocketFactory) ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListenCalls = append(f.ListenCalls, MockListenCall{
		Network: network,
		Addr:    laddr,
	})
	if f.Error != nil {
		return nil, f.Error
	}
	return f.Socket, nil
}

// Calls returns how many sockets were requested.
func (f *MockUDPSocketFactory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ListenCalls)
}

// timeoutError implements net.Error for timeout simulation.
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }
