// Package command implements the TCP command channel to the sonar: a
// length-prefixed send path plus a periodic keep-alive ping (§4.7).
package command

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/soundmetrics/aris-go/wire"
)

// Port is the fixed TCP control port on the sonar.
const Port = 56888

// keepAliveInterval is the fixed period between application-level PING
// commands; TCP keep-alive alone is not a sufficient liveness signal
// across the sonar's own firmware.
const keepAliveInterval = 2 * time.Second

// Session is a connected command channel. Construct with Dial.
type Session struct {
	conn net.Conn

	mu        sync.Mutex
	connError error // sticky; set on first send failure

	stopKeepAlive chan struct{}
	stopped       sync.Once
}

// Dial connects to address (host:port, typically the sonar's address on
// Port) and starts the keep-alive timer.
func Dial(address string) (*Session, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, err
	}
	s := &Session{conn: conn, stopKeepAlive: make(chan struct{})}
	go s.keepAliveLoop()
	return s, nil
}

// Send encodes cmd and writes it as `u32 big-endian length || payload`.
// A failed send sets the session's sticky connection-error flag and halts
// further keep-alive pings (§4.7); it is not retried.
func (s *Session) Send(cmd *wire.Command) error {
	payload := wire.EncodeCommand(cmd)

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(payload)))

	if _, err := s.conn.Write(lenPrefix[:]); err != nil {
		s.markFailed(err)
		return err
	}
	if _, err := s.conn.Write(payload); err != nil {
		s.markFailed(err)
		return err
	}
	return nil
}

func (s *Session) markFailed(err error) {
	s.mu.Lock()
	if s.connError == nil {
		s.connError = err
	}
	s.mu.Unlock()
	s.stopped.Do(func() { close(s.stopKeepAlive) })
}

// HasConnectionError reports whether a send has ever failed on this
// session. The flag is sticky: once set it never clears.
func (s *Session) HasConnectionError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connError != nil
}

// ConnectionError returns the error that tripped HasConnectionError, or
// nil if none has occurred.
func (s *Session) ConnectionError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connError
}

func (s *Session) keepAliveLoop() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	ping := wire.NewPing()
	for {
		select {
		case <-s.stopKeepAlive:
			return
		case <-ticker.C:
			if err := s.Send(ping); err != nil {
				return
			}
		}
	}
}

// Close stops the keep-alive timer and closes the underlying connection.
func (s *Session) Close() error {
	s.stopped.Do(func() { close(s.stopKeepAlive) })
	return s.conn.Close()
}
