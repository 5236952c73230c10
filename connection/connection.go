// Package connection composes the command session and frame-stream
// listener behind a single lifetime (§4.9). Outbound commands sent through
// SendCommand run on a bounded worker pool; the listener and the session's
// keep-alive run on their own goroutines.
package connection

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/alitto/pond"
	"github.com/rs/xid"

	aris "github.com/soundmetrics/aris-go"
	"github.com/soundmetrics/aris-go/assembler"
	"github.com/soundmetrics/aris-go/command"
	"github.com/soundmetrics/aris-go/framestream"
	"github.com/soundmetrics/aris-go/wire"
)

// DefaultAcousticSettings returns the conservative startup settings
// CommandBuilder's setup sequence requests for a freshly connected sonar
// of the given system type (§4.7 initial setup sequence).
func DefaultAcousticSettings(systemType aris.SystemType) aris.AcousticSettings {
	settings := aris.AcousticSettings{
		FrameRate:        10,
		PingMode:         aris.PingMode1,
		Frequency:        aris.FrequencyLow,
		SamplesPerBeam:   1166,
		SampleStartDelay: 930,
		CyclePeriod:      6056,
		SamplePeriod:     4,
		PulseWidth:       14,
		EnableTransmit:   true,
		Enable150Volts:   systemType != aris.SystemTypeAris1200,
		ReceiverGain:     18,
	}
	return settings
}

// Connection is the host-facing facade over a command session and a
// frame-stream listener (§4.9). Construct with Dial.
type Connection struct {
	id         string
	session    *command.Session
	listener   *framestream.Listener
	nextCookie uint32 // atomic; starts at 1, never reset (§3)

	pool       *pond.WorkerPool
	cancelPool context.CancelFunc
}

// Dial connects to sonarAddress's command port, binds a unicast
// frame-stream listener, and runs the initial setup sequence from §4.7 in
// order: set clock, set frame-stream receiver, request acoustic settings,
// set salinity, set focus range. onFrame is invoked for every completed
// frame.
//
// Construction fails with ErrConnect wrapping the underlying error if the
// TCP connect fails; no partial state is exposed.
func Dial(sonarAddress string, onFrame assembler.FrameSink) (*Connection, error) {
	session, err := command.Dial(net.JoinHostPort(sonarAddress, itoa(command.Port)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aris.ErrConnect, err)
	}

	listener, err := framestream.New(0, onFrame)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("%w: %v", aris.ErrConnect, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:         xid.New().String(),
		session:    session,
		listener:   listener,
		pool:       pond.New(4, 64, pond.Context(ctx)),
		cancelPool: cancel,
	}

	if err := c.runInitialSetup(); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

func (c *Connection) runInitialSetup() error {
	steps := []*wire.Command{
		wire.NewSetDatetime(time.Now()),
		wire.NewSetFramestreamReceiverUnicast(uint32(c.listener.LocalPort())),
		wire.NewSetAcoustics(c.withCookie(DefaultAcousticSettings(aris.SystemTypeAris1800))),
		wire.NewSetSalinity(aris.SalinityFresh),
		wire.NewSetFocus(2.0),
	}
	for _, cmd := range steps {
		if err := c.session.Send(cmd); err != nil {
			return fmt.Errorf("%w: %v", aris.ErrControlChannelFailure, err)
		}
	}
	return nil
}

// withCookie stamps settings with a freshly assigned cookie (§3): a
// monotonically increasing sequence starting at 1, never reused within
// the connection's lifetime.
func (c *Connection) withCookie(settings aris.AcousticSettings) aris.AcousticSettings {
	settings.Cookie = atomic.AddUint32(&c.nextCookie, 1)
	return settings
}

// ID returns this connection's correlation identifier, an xid assigned at
// Dial. Nothing in this module writes it into log lines or metric labels.
func (c *Connection) ID() string { return c.id }

// SendCommand submits cmd to the command session's send path via the
// worker pool, so callers never block on the TCP write directly.
func (c *Connection) SendCommand(cmd *wire.Command) {
	c.pool.Submit(func() {
		_ = c.session.Send(cmd)
	})
}

// RequestAcoustics stamps settings with a fresh cookie and sends a
// SET_ACOUSTICS command.
func (c *Connection) RequestAcoustics(settings aris.AcousticSettings) {
	c.SendCommand(wire.NewSetAcoustics(c.withCookie(settings)))
}

// Metrics exposes the frame-stream listener's assembler metrics.
func (c *Connection) Metrics() *assembler.Metrics { return c.listener.Metrics() }

// HasConnectionError reports whether the command session's sticky
// connection-error flag has been set.
func (c *Connection) HasConnectionError() bool { return c.session.HasConnectionError() }

// Close tears down the keep-alive timer, the command socket and the
// frame-stream listener, in that order (§5 shutdown ordering).
func (c *Connection) Close() error {
	c.cancelPool()
	sessionErr := c.session.Close()
	listenerErr := c.listener.Close()
	c.pool.StopAndWait()
	if sessionErr != nil {
		return sessionErr
	}
	return listenerErr
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
