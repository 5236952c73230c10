// Package beacon implements the UDP availability receiver: decoding beacon
// datagrams and maintaining a live serial-number-to-endpoint map (§4.8).
package beacon

import (
	"net"
	"sync"
	"time"

	"github.com/samber/lo"

	aris "github.com/soundmetrics/aris-go"
	"github.com/soundmetrics/aris-go/wire"
)

// expirationAge is how stale a sighting must be before its entry is
// removed from the map.
const expirationAge = 5 * time.Second

// scanInterval is how often the expiration sweep runs.
const scanInterval = 1 * time.Second

// Sighting records the last known endpoint and system type for a serial
// number.
type Sighting struct {
	Serial     uint32
	Addr       *net.UDPAddr
	SystemType aris.SystemType
	LastSeen   time.Time
}

// Hooks are the optional callbacks fired as the listener's map changes.
// Any left nil is treated as a no-op.
type Hooks struct {
	OnAdd     func(serial uint32, addr *net.UDPAddr)
	OnUpdate  func(serial uint32, oldAddr, newAddr *net.UDPAddr)
	OnExpired func(serial uint32)
}

// Listener is a UDP beacon receiver bound to wire.BeaconPort.
type Listener struct {
	conn  *net.UDPConn
	hooks Hooks

	mu       sync.Mutex
	sightings map[uint32]Sighting

	closeOnce sync.Once
	done      chan struct{}
}

// New binds the beacon port and starts listening.
func New(hooks Hooks) (*Listener, error) {
	addr := &net.UDPAddr{Port: wire.BeaconPort}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, err
	}

	l := &Listener{
		conn:      conn,
		hooks:     hooks,
		sightings: make(map[uint32]Sighting),
		done:      make(chan struct{}),
	}

	go l.receiveLoop()
	go l.expirationLoop()

	return l, nil
}

func (l *Listener) receiveLoop() {
	buf := make([]byte, 2048)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		avail, err := wire.DecodeAvailability(buf[:n])
		if err != nil || !avail.HasSerialNumber {
			continue
		}
		l.observe(avail, addr)
	}
}

func (l *Listener) observe(avail *wire.Availability, addr *net.UDPAddr) {
	l.mu.Lock()
	prev, existed := l.sightings[avail.SerialNumber]
	l.sightings[avail.SerialNumber] = Sighting{
		Serial:     avail.SerialNumber,
		Addr:       addr,
		SystemType: avail.SystemType,
		LastSeen:   time.Now(),
	}
	l.mu.Unlock()

	switch {
	case !existed:
		if l.hooks.OnAdd != nil {
			l.hooks.OnAdd(avail.SerialNumber, addr)
		}
	case !sameAddr(prev.Addr, addr):
		if l.hooks.OnUpdate != nil {
			l.hooks.OnUpdate(avail.SerialNumber, prev.Addr, addr)
		}
	}
}

func sameAddr(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}

func (l *Listener) expirationLoop() {
	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.expireStale()
		}
	}
}

func (l *Listener) expireStale() {
	now := time.Now()
	var expired []uint32

	l.mu.Lock()
	for sn, s := range l.sightings {
		if now.Sub(s.LastSeen) > expirationAge {
			expired = append(expired, sn)
			delete(l.sightings, sn)
		}
	}
	l.mu.Unlock()

	for _, sn := range expired {
		if l.hooks.OnExpired != nil {
			l.hooks.OnExpired(sn)
		}
	}
}

// Serials returns every currently-tracked serial number, in no particular
// order.
func (l *Listener) Serials() []uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return lo.Keys(l.sightings)
}

// FindBySerial is a synchronous convenience that blocks (polling every
// 50ms) until sn is observed or timeout elapses, returning its
// current endpoint and system type (§4.8).
func (l *Listener) FindBySerial(sn uint32, timeout time.Duration) (*net.UDPAddr, aris.SystemType, bool) {
	deadline := time.Now().Add(timeout)
	for {
		l.mu.Lock()
		s, ok := l.sightings[sn]
		l.mu.Unlock()
		if ok {
			return s.Addr, s.SystemType, true
		}
		if time.Now().After(deadline) {
			return nil, 0, false
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Close stops both background loops and closes the socket.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return l.conn.Close()
}
