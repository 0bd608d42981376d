// Package replay implements a stand-in race server that feeds recorded sensor
// messages to a client and collects the commands it sends back.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/network"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

// pollInterval bounds how long Serve blocks before checking ctx.
const pollInterval = 100 * time.Millisecond

// Options tune a replay session.
type Options struct {
	// RestartAfter sends a restart marker once after that many commands.
	// Zero disables it.
	RestartAfter int
	// Sockets creates the listening socket; defaults to real sockets.
	Sockets network.UDPSocketFactory
}

// Server answers one client at a time with a fixed sequence of sensor lines.
type Server struct {
	lines [][]byte
	opts  Options
	sock  network.UDPSocket

	mu        sync.Mutex
	peer      *net.UDPAddr
	next      int
	restarted bool
	inits     int
	commands  []string
}

// Listen opens the server socket on address (host:port, port 0 picks a
// free one).
func Listen(address string, lines [][]byte, opts Options) (*Server, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("replay needs at least one sensor line")
	}
	if opts.Sockets == nil {
		opts.Sockets = network.NewRealUDPSocketFactory()
	}
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address: %w", err)
	}
	sock, err := opts.Sockets.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP address: %w", err)
	}
	return &Server{lines: lines, opts: opts, sock: sock}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() *net.UDPAddr {
	if a, ok := s.sock.LocalAddr().(*net.UDPAddr); ok {
		return a
	}
	return nil
}

// Serve handles datagrams until every line was sent and the client was told
// to shut down, or until ctx is done. The socket is closed on return.
func (s *Server) Serve(ctx context.Context) error {
	defer s.sock.Close()
	log := monitoring.Logger.WithField("addr", s.sock.LocalAddr().String())
	log.WithField("lines", len(s.lines)).Info("Replay server started.")

	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			log.Info("Replay server stopping due to context cancellation.")
			return ctx.Err()
		default:
		}

		if err := s.sock.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		n, from, err := s.sock.ReadFromUDP(buf)
		if err != nil {
			if network.IsTimeout(err) {
				continue
			}
			if network.IsClosed(err) {
				return nil
			}
			log.WithError(err).Warn("UDP read failed.")
			continue
		}

		done, err := s.handle(log, buf[:n], from)
		if err != nil {
			log.WithError(err).Warn("UDP write failed.")
		}
		if done {
			log.WithField("commands", len(s.Commands())).Info("Replay finished.")
			return nil
		}
	}
}

// handle answers one datagram and reports whether the session is over.
func (s *Server) handle(log logrus.FieldLogger, msg []byte, from *net.UDPAddr) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bytes.HasPrefix(msg, []byte("SCR")) {
		log.WithField("client", from.String()).Debugf("Init received: %q", msg)
		s.peer = from
		s.next = 0
		s.restarted = false
		s.inits++
		if err := s.send(wire.MarkerIdentified); err != nil {
			return false, err
		}
		return false, s.sendLine()
	}

	if s.peer == nil || from.String() != s.peer.String() {
		log.WithField("client", from.String()).Debug("Ignoring datagram from unregistered client.")
		return false, nil
	}

	s.commands = append(s.commands, string(msg))
	if s.opts.RestartAfter > 0 && !s.restarted && len(s.commands) == s.opts.RestartAfter {
		s.restarted = true
		if err := s.send(wire.MarkerRestart); err != nil {
			return false, err
		}
	}

	if s.next >= len(s.lines) {
		return true, s.send(wire.MarkerShutdown)
	}
	return false, s.sendLine()
}

func (s *Server) sendLine() error {
	line := s.lines[s.next]
	s.next++
	return s.send(line)
}

func (s *Server) send(msg []byte) error {
	_, err := s.sock.WriteToUDP(msg, s.peer)
	return err
}

// Commands returns the command datagrams received so far, oldest first.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Inits returns how many handshakes the server accepted.
func (s *Server) Inits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inits
}

// ReadLines reads one sensor message per line. Blank lines and lines starting
// with '#' are skipped.
func ReadLines(r io.Reader) ([][]byte, error) {
	var lines [][]byte
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sensor lines: %w", err)
	}
	return lines, nil
}
