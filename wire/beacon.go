package wire

import "github.com/soundmetrics/aris-go"

// Availability is the beacon payload (§6): broadcast/multicast on UDP port
// 56124, no length prefix, one datagram per beacon.
type Availability struct {
	SerialNumber    uint32
	SystemType      aris.SystemType
	ConnectionState bool // true == available (not busy)
	HasSerialNumber bool
}

const (
	fieldBeaconSerialNumber uint8 = iota + 1
	fieldBeaconSystemType
	fieldBeaconConnectionState
)

// BeaconPort is the fixed UDP port beacons are broadcast/multicast on.
const BeaconPort = 56124

// EncodeAvailability encodes a onto the wire.
func EncodeAvailability(a *Availability) []byte {
	var w Writer
	w.Uint(fieldBeaconSerialNumber, uint64(a.SerialNumber))
	w.Uint(fieldBeaconSystemType, uint64(a.SystemType))
	w.Bool(fieldBeaconConnectionState, a.ConnectionState)
	return w.Encode()
}

// DecodeAvailability decodes a beacon datagram. It returns ErrMalformed on
// any parse failure (§7 MalformedWirePacket); it never returns a partially
// populated Availability with ok left ambiguous.
func DecodeAvailability(buf []byte) (*Availability, error) {
	r, err := Decode(buf)
	if err != nil {
		return nil, err
	}

	a := &Availability{}
	if sn, ok := r.Uint(fieldBeaconSerialNumber); ok {
		a.SerialNumber = uint32(sn)
		a.HasSerialNumber = true
	}
	if st, ok := r.Uint(fieldBeaconSystemType); ok {
		a.SystemType = aris.SystemType(st)
	}
	if cs, ok := r.Bool(fieldBeaconConnectionState); ok {
		a.ConnectionState = cs
	}
	return a, nil
}
