// Package client connects a driving policy to a race server. It owns the
// connection lifecycle (handshake, tick loop, orderly stop) and scores the
// run while it drives.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/car"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/driver"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/evaluation"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/network"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/timeutil"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

// DefaultTimeout bounds every receive, during the handshake and while
// running. It is also the worst-case latency of a stop request.
const DefaultTimeout = time.Second

// MaxDatagramSize is the receive buffer size.
const MaxDatagramSize = 2048

// ErrAlreadyRunning is returned by Run on a client that is not stopped.
var ErrAlreadyRunning = errors.New("client already running")

// Config contains the client settings and injectable collaborators.
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
	Weights evaluation.Weights
	// StopOn lists the evaluation conditions that end the run.
	StopOn StopConditions

	// Sockets creates the UDP socket; defaults to real sockets.
	Sockets network.UDPSocketFactory
	// Clock computes receive deadlines; defaults to the wall clock.
	Clock timeutil.Clock
}

// DefaultConfig returns the settings for the first client slot of a local
// server.
func DefaultConfig() Config {
	return Config{
		Host:    "localhost",
		Port:    3001,
		Timeout: DefaultTimeout,
		Weights: evaluation.DefaultWeights(),
	}
}

// Address returns host:port of the server.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Client drives one car on one race server. Run must be called from a single
// goroutine; Stop, State and Metrics may be called from any goroutine.
type Client struct {
	cfg     Config
	driver  driver.Driver
	sink    FitnessSink
	session string
	log     *logrus.Entry

	state   atomic.Int32
	stopReq atomic.Bool

	// owned by the goroutine inside Run
	sock   network.UDPSocket
	server *net.UDPAddr
	buf    []byte

	mu      sync.RWMutex
	tracker *evaluation.Tracker
}

// New creates a stopped client for d, publishing the final fitness to sink.
func New(cfg Config, d driver.Driver, sink FitnessSink) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Sockets == nil {
		cfg.Sockets = network.NewRealUDPSocketFactory()
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if sink == nil {
		sink = &MemorySink{}
	}

	session := uuid.NewString()
	c := &Client{
		cfg:     cfg,
		driver:  d,
		sink:    sink,
		session: session,
		log: monitoring.Logger.WithFields(logrus.Fields{
			"session": session,
			"server":  cfg.Address(),
		}),
		buf:     make([]byte, MaxDatagramSize),
		tracker: evaluation.NewTracker(cfg.Weights),
	}
	c.log.Debug("Initializing client.")
	return c
}

func (c *Client) String() string {
	return fmt.Sprintf("Client(%s) -- %s", c.cfg.Address(), c.State())
}

// Session returns the identifier attached to this client's log lines.
func (c *Client) Session() string {
	return c.session
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Metrics returns a snapshot of the evaluation so far.
func (c *Client) Metrics() evaluation.Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracker.Metrics()
}

// Stop asks a starting or running client to stop. It returns immediately;
// the request is honoured at the next handshake attempt or tick, so within
// one receive timeout.
func (c *Client) Stop() {
	switch c.State() {
	case Starting, Running:
		c.stopReq.Store(true)
	}
}

// Run connects to the server and drives until the server shuts the session
// down, Stop is called or ctx is cancelled. All of those are orderly stops
// and return nil. Run fails fast, before opening any socket, when the policy
// breaks its contract.
func (c *Client) Run(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(Stopped), int32(Starting)) {
		return ErrAlreadyRunning
	}
	c.log.Debug("Starting cyclic execution.")

	angles, err := driver.CheckAngles(c.driver)
	if err != nil {
		c.log.WithError(err).Error("Driver rejected.")
		c.finish()
		return err
	}

	c.log.Info("Registering driver client with server.")
	if err := c.open(); err != nil {
		c.log.WithError(err).Error("Cannot connect to server.")
		c.finish()
		return err
	}

	prefix := fmt.Sprintf("SCR-%d", c.cfg.Port)
	initMsg := wire.Encode(wire.Fields{{Key: "init", Values: angles}}, prefix)
	if !c.handshake(ctx, initMsg) {
		c.log.Info("Registration aborted.")
		c.finish()
		return nil
	}

	c.state.Store(int32(Running))
	c.log.Info("Connection successful.")

	for c.State() == Running {
		if c.stopRequested(ctx) {
			if ctx.Err() != nil {
				c.log.Info("User requested shutdown.")
			}
			c.stop()
			break
		}
		c.tick()
	}

	c.finish()
	c.log.Info("Client stopped.")
	return nil
}

// open resolves the server and opens an unbound datagram socket.
func (c *Client) open() error {
	server, err := net.ResolveUDPAddr("udp", c.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to resolve server address: %w", err)
	}
	sock, err := c.cfg.Sockets.ListenUDP("udp", nil)
	if err != nil {
		return fmt.Errorf("failed to open UDP socket: %w", err)
	}
	c.server = server
	c.sock = sock
	return nil
}

// finish closes the socket and returns to Stopped.
func (c *Client) finish() {
	if c.sock != nil {
		if err := c.sock.Close(); err != nil {
			c.log.WithError(err).Debug("Closing socket failed.")
		}
		c.sock = nil
	}
	c.stopReq.Store(false)
	c.state.Store(int32(Stopped))
}

func (c *Client) stopRequested(ctx context.Context) bool {
	return c.stopReq.Load() || ctx.Err() != nil
}

// handshake sends the init message until the server identifies the client. It retries
// transport failures without limit and gives up only on a stop request.
func (c *Client) handshake(ctx context.Context, initMsg []byte) bool {
	c.log.Info("Registering client.")
	for attempt := 1; ; attempt++ {
		if c.stopRequested(ctx) {
			return false
		}

		log := c.log.WithField("attempt", attempt)
		log.Debugf("Sending init buffer %q.", initMsg)
		if _, err := c.sock.WriteToUDP(initMsg, c.server); err != nil {
			log.WithError(err).Debug("No connection to server yet.")
		}

		buf, err := c.receive()
		if err != nil {
			log.WithError(err).Debug("No connection to server yet.")
			continue
		}
		log.Debugf("Received buffer %q.", buf)
		if wire.IsIdentified(buf) {
			log.Debug("Server accepted connection.")
			return true
		}
	}
}

// receive waits up to the configured timeout for one datagram. The returned
// slice is only valid until the next call.
func (c *Client) receive() ([]byte, error) {
	if err := c.sock.SetReadDeadline(c.cfg.Clock.Now().Add(c.cfg.Timeout)); err != nil {
		return nil, err
	}
	n, _, err := c.sock.ReadFromUDP(c.buf)
	if err != nil {
		return nil, err
	}
	return c.buf[:n], nil
}

// tick processes at most one server message. Transport errors are logged
// and leave the state unchanged.
func (c *Client) tick() {
	buf, err := c.receive()
	if err != nil {
		if network.IsTimeout(err) {
			c.log.Debug("No message from server within timeout.")
		} else {
			c.log.WithError(err).Warn("Communication with server failed.")
		}
		return
	}
	c.log.Debugf("Received buffer %q.", buf)

	switch wire.Classify(buf) {
	case wire.KindEmpty:
	case wire.KindShutdown:
		c.log.Info("Server requested shutdown.")
		c.stop()
	case wire.KindRestart:
		c.log.Info("Server requested restart of driver.")
		c.driver.OnRestart()
	default:
		c.drive(buf)
	}
}

// drive runs one decode, evaluate, policy, encode, send cycle.
func (c *Client) drive(buf []byte) {
	frame, err := wire.Decode(buf)
	if err != nil {
		c.log.WithError(err).Debug("Sensor message decoded partially.")
	}
	state, err := car.NewState(frame)
	if err != nil {
		c.log.WithError(err).Debug("Incomplete car state.")
	}

	c.mu.Lock()
	c.tracker.Observe(state)
	c.mu.Unlock()

	cmd := c.driver.Drive(state)
	if cmd == nil {
		c.log.Warn("Driver returned no command, tick skipped.")
		return
	}

	c.mu.Lock()
	c.tracker.RecordSteering(cmd)
	m := c.tracker.Metrics()
	c.mu.Unlock()

	log := c.log.WithField("tick", m.Iteration)
	log.Debug(state)
	log.Debug(cmd)

	out := wire.Encode(cmd.ActuatorFields(), "")
	log.Debugf("Sending buffer %q.", out)
	if _, err := c.sock.WriteToUDP(out, c.server); err != nil {
		log.WithError(err).Warn("Communication with server failed.")
	}

	if cond, ok := c.cfg.StopOn.Triggered(m); ok {
		log.WithField("condition", cond).Info("Stop condition reached.")
		c.stopReq.Store(true)
	}
}

// stop performs the Running to Stopping transition: the fitness is published
// once and the policy is told to shut down.
func (c *Client) stop() {
	if !c.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		return
	}

	m := c.Metrics()
	if err := c.sink.PublishFitness(m.Fitness); err != nil {
		c.log.WithError(err).Error("Failed to publish fitness.")
	}

	c.log.WithFields(logrus.Fields{
		"fitness":   m.Fitness,
		"ticks":     m.Iteration,
		"distance":  m.Distance,
		"avg_speed": m.AvgSpeed,
	}).Info("Disconnecting from racing server.")
	c.driver.OnShutdown()
}
