// Package framestream owns the UDP socket that receives fragmented frame
// data from the sonar and drives it through a sliding-window assembler
// (§4.6).
package framestream

import (
	"context"
	"log"
	"net"
	"strconv"
	"sync"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"github.com/soundmetrics/aris-go/assembler"
	"github.com/soundmetrics/aris-go/wire"
)

// DefaultReceiveBufferBytes is the socket receive buffer budget the
// listener requests via SO_RCVBUF; frame streams run at several
// megabytes per second and a small kernel buffer drops datagrams under
// bursty delivery.
const DefaultReceiveBufferBytes = 8 << 20

// Option configures a Listener at construction time.
type Option func(*config)

type config struct {
	peerFilter         net.IP
	receiveBufferBytes int
	multicastGroup     net.IP
	multicastIface     *net.Interface
}

// WithPeerFilter drops datagrams whose source address is not peer,
// matching §4.6's optional peer-address filter.
func WithPeerFilter(peer net.IP) Option {
	return func(c *config) { c.peerFilter = peer }
}

// WithReceiveBufferBytes overrides DefaultReceiveBufferBytes.
func WithReceiveBufferBytes(n int) Option {
	return func(c *config) { c.receiveBufferBytes = n }
}

// WithMulticastGroup binds the listener to a fixed port and joins group on
// iface, instead of an ephemeral unicast port. A nil iface lets the kernel
// choose the outgoing interface.
func WithMulticastGroup(group net.IP, iface *net.Interface) Option {
	return func(c *config) {
		c.multicastGroup = group
		c.multicastIface = iface
	}
}

// Listener owns one UDP socket and the Assembler consuming it. A mutex
// guards send/close so an in-flight ack never races the destructor's
// socket close (§4.6).
type Listener struct {
	conn *net.UDPConn
	pc   *ipv4.PacketConn // non-nil only for a multicast-group listener

	mu       sync.Mutex
	closed   bool
	lastPeer *net.UDPAddr // source of the most recently processed datagram

	peerFilter net.IP
	asm        *assembler.Assembler
}

// New binds a UDP socket per opts and starts consuming frame-parts on it,
// invoking onFrame for every completed frame. Port 0 selects an ephemeral
// unicast port; WithMulticastGroup binds port and joins a multicast group
// instead.
func New(port int, onFrame assembler.FrameSink, opts ...Option) (*Listener, error) {
	cfg := config{receiveBufferBytes: DefaultReceiveBufferBytes}
	for _, opt := range opts {
		opt(&cfg)
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					ctrlErr = err
					return
				}
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, cfg.receiveBufferBytes)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}

	bindPort := port
	if cfg.multicastGroup == nil && port == 0 {
		bindPort = 0
	}
	pc, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort("", strconv.Itoa(bindPort)))
	if err != nil {
		return nil, err
	}
	conn := pc.(*net.UDPConn)

	l := &Listener{conn: conn, peerFilter: cfg.peerFilter}

	if cfg.multicastGroup != nil {
		l.pc = ipv4.NewPacketConn(conn)
		if err := l.pc.JoinGroup(cfg.multicastIface, &net.UDPAddr{IP: cfg.multicastGroup}); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	l.asm = assembler.New(l.sendAck, onFrame)

	go l.receiveLoop()

	return l, nil
}

// LocalPort returns the listener's bound UDP port, used when the command
// session negotiates SET_FRAMESTREAM_RECEIVER for unicast delivery.
func (l *Listener) LocalPort() int {
	return l.conn.LocalAddr().(*net.UDPAddr).Port
}

// Metrics exposes the underlying assembler's counters.
func (l *Listener) Metrics() *assembler.Metrics { return l.asm.Metrics() }

func (l *Listener) receiveLoop() {
	buf := make([]byte, 65536)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			// A closed socket surfaces as a cancelled/shutdown read
			// error here; this is an expected quiet exit (§4.6).
			return
		}
		if l.peerFilter != nil && !addr.IP.Equal(l.peerFilter) {
			continue
		}

		datagram := append([]byte(nil), buf[:n]...)
		part, decodeErr := wire.DecodeFramePart(datagram)

		l.mu.Lock()
		l.lastPeer = addr
		l.mu.Unlock()

		l.asm.ProcessPacket(part, decodeErr)
	}
}

func (l *Listener) sendAck(frameIndex, expectedDataOffset int32) {
	ack := wire.EncodeFramePartAck(&wire.FramePartAck{FrameIndex: frameIndex, DataOffset: expectedDataOffset})

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.lastPeer == nil {
		return
	}
	if _, err := l.conn.WriteToUDP(ack, l.lastPeer); err != nil {
		log.Printf("framestream: ack send failed: %v", err)
	}
}

// Close closes the socket. Any ack send racing the close sees closed==true
// under the mutex and returns without sending, matching §4.6's destructor
// semantics.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return l.conn.Close()
}
