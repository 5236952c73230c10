// Package headerupdate implements the UDP header-update overlay (§6): a
// fixed, 1-byte-packed message sent to port 700 that instructs the sonar
// to stamp caller-supplied telemetry (GPS fix, attitude, vehicle clock)
// into the frame headers it streams out, selected by a 32-bit field mask.
package headerupdate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"

	"github.com/soniakeys/meeus/v3/julian"
	stgpsr "github.com/yuin/stagparser"
)

// Port is the fixed UDP port the overlay message is sent to.
const Port = 700

const (
	commandCode              uint16 = 0xa502
	updateFrameHeaderPktType uint16 = 0x0040
)

// Field mask bits selecting which frame-header fields the sonar overlays
// on subsequent frames (§6).
const (
	FlagVelocity      uint32 = 0x00000001
	FlagDepth         uint32 = 0x00000002
	FlagAltitude      uint32 = 0x00000004
	FlagPitch         uint32 = 0x00000008
	FlagPitchRate     uint32 = 0x00000010
	FlagRoll          uint32 = 0x00000020
	FlagRollRate      uint32 = 0x00000040
	FlagHeading       uint32 = 0x00000080
	FlagHeadingRate   uint32 = 0x00000100
	FlagSonarPan      uint32 = 0x00000200
	FlagSonarTilt     uint32 = 0x00000400
	FlagSonarRoll     uint32 = 0x00000800
	FlagLatitude      uint32 = 0x00001000
	FlagLongitude     uint32 = 0x00002000
	FlagSonarPosition uint32 = 0x00004000
	FlagTargetRange   uint32 = 0x00008000
	FlagTargetBearing uint32 = 0x00010000
	FlagTargetPresent uint32 = 0x00020000
	FlagUserData      uint32 = 0x00040000
	FlagSonarTime     uint32 = 0x00080000
	FlagDegC2         uint32 = 0x00100000
	FlagFrameNumber   uint32 = 0x00200000
	FlagWaterTemp     uint32 = 0x00400000
	FlagSonarX        uint32 = 0x00800000
	FlagSonarY        uint32 = 0x01000000
	FlagSonarZ        uint32 = 0x02000000
	FlagVehicleTime   uint32 = 0x04000000
	FlagGGK           uint32 = 0x08000000
	FlagPanOffset     uint32 = 0x10000000
	FlagTiltOffset    uint32 = 0x20000000
	FlagRollOffset    uint32 = 0x40000000
)

// Update carries the new values for whichever frame-header fields
// UpdateFlags selects (§6). Fields not selected by UpdateFlags are
// serialized but ignored by the sonar. The TS* split-timestamp fields and
// the GGK group are extensions of the original overlay struct's field list, typed to match
// ArisFrameHeader's own representation of those fields so round-tripping
// through a recorded frame is lossless.
type Update struct {
	UpdateFlags uint32 `stagfield:"flag=0"`

	Velocity      float32 `stagfield:"flag=1"`
	Depth         float32 `stagfield:"flag=2"`
	Altitude      float32 `stagfield:"flag=4"`
	Pitch         float32 `stagfield:"flag=8"`
	PitchRate     float32 `stagfield:"flag=16"`
	Roll          float32 `stagfield:"flag=32"`
	RollRate      float32 `stagfield:"flag=64"`
	Heading       float32 `stagfield:"flag=128"`
	HeadingRate   float32 `stagfield:"flag=256"`
	SonarPan      float32 `stagfield:"flag=512"`
	SonarTilt     float32 `stagfield:"flag=1024"`
	SonarRoll     float32 `stagfield:"flag=2048"`
	Latitude      float64 `stagfield:"flag=4096"`
	Longitude     float64 `stagfield:"flag=8192"`
	SonarPosition float32 `stagfield:"flag=16384"`
	TargetRange   float32 `stagfield:"flag=32768"`
	TargetBearing float32 `stagfield:"flag=65536"`
	TargetPresent uint32  `stagfield:"flag=131072"`

	UserValue1 float32 `stagfield:"flag=262144"`
	UserValue2 float32 `stagfield:"flag=262144"`
	UserValue3 float32 `stagfield:"flag=262144"`
	UserValue4 float32 `stagfield:"flag=262144"`
	UserValue5 float32 `stagfield:"flag=262144"`
	UserValue6 float32 `stagfield:"flag=262144"`
	UserValue7 float32 `stagfield:"flag=262144"`
	UserValue8 float32 `stagfield:"flag=262144"`

	TSYear    int32 `stagfield:"flag=524288"`
	TSMonth   int32 `stagfield:"flag=524288"`
	TSDay     int32 `stagfield:"flag=524288"`
	TSHour    int32 `stagfield:"flag=524288"`
	TSMinute  int32 `stagfield:"flag=524288"`
	TSSecond  int32 `stagfield:"flag=524288"`
	TSHSecond int32 `stagfield:"flag=524288"`

	DegC2       uint32  `stagfield:"flag=1048576"`
	FrameNumber uint32  `stagfield:"flag=2097152"`
	WaterTemp   float32 `stagfield:"flag=4194304"`
	SonarX      float32 `stagfield:"flag=8388608"`
	SonarY      float32 `stagfield:"flag=16777216"`
	SonarZ      float32 `stagfield:"flag=33554432"`

	VehicleTime float64 `stagfield:"flag=67108864"`

	TimeGGK    uint32  `stagfield:"flag=134217728"`
	DateGGK    uint32  `stagfield:"flag=134217728"`
	QualityGGK uint32  `stagfield:"flag=134217728"`
	NumSatsGGK uint32  `stagfield:"flag=134217728"`
	DOPGGK     float32 `stagfield:"flag=134217728"`
	EHTGGK     float32 `stagfield:"flag=134217728"`

	SonarPanOffset  float32 `stagfield:"flag=268435456"`
	SonarTiltOffset float32 `stagfield:"flag=536870912"`
	SonarRollOffset float32 `stagfield:"flag=1073741824"`
}

// messageBody is the on-wire layout, 1-byte packed, native (little) byte
// order, sent with no length prefix (§6, §9: this is the one overlay left
// little-endian rather than given its own endian negotiation, since every
// fielded sender in the original deployment base is x86).
type messageBody struct {
	Prefix struct {
		Command uint16
		Size    uint16
		PktType uint16
		PktNum  uint16
	}
	Body Update
}

// Encode serializes u into the full overlay datagram, filling in the
// fixed prefix fields (§6's "how to send a correct header update"
// preconditions).
func Encode(u *Update) []byte {
	var msg messageBody
	msg.Prefix.Command = commandCode
	msg.Prefix.PktType = updateFrameHeaderPktType
	msg.Prefix.PktNum = 1
	msg.Body = *u

	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, &msg.Body)
	msg.Prefix.Size = uint16(buf.Len())

	out := new(bytes.Buffer)
	_ = binary.Write(out, binary.LittleEndian, &msg.Prefix)
	out.Write(buf.Bytes())
	return out.Bytes()
}

// ErrMalformed is returned by Decode when the datagram is too short or its
// prefix fails the preconditions in the C header's usage comment.
var ErrMalformed = errors.New("headerupdate: malformed overlay datagram")

// Decode parses a received overlay datagram, validating the prefix fields
// against the preconditions the original header documents.
func Decode(buf []byte) (*Update, error) {
	var msg messageBody
	r := bytes.NewReader(buf)
	if err := binary.Read(r, binary.LittleEndian, &msg.Prefix); err != nil {
		return nil, ErrMalformed
	}
	if msg.Prefix.Command != commandCode || msg.Prefix.PktNum == 0 ||
		msg.Prefix.PktType&updateFrameHeaderPktType == 0 {
		return nil, ErrMalformed
	}
	if err := binary.Read(r, binary.LittleEndian, &msg.Body); err != nil {
		return nil, ErrMalformed
	}
	return &msg.Body, nil
}

// ActiveFields returns the Update struct-field names selected by mask,
// read from the `stagfield` tags above via reflection. It exists purely as
// a debugging aid for logging which fields a given overlay message will
// touch.
func ActiveFields(mask uint32) []string {
	defs, err := stgpsr.ParseStruct(&Update{}, "stagfield")
	if err != nil {
		return nil
	}

	t := reflect.TypeOf(Update{})
	var names []string
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		for _, d := range defs[name] {
			if d.Name() != "flag" {
				continue
			}
			v, ok := d.Attribute("flag")
			if !ok {
				continue
			}
			bit, ok := v.(int64)
			if !ok || bit == 0 {
				continue
			}
			if mask&uint32(bit) != 0 {
				names = append(names, name)
			}
		}
	}
	return names
}

// JulianDay converts a UTC calendar instant to a Julian day number, the
// representation m_dSonarTime/m_dVehicleTime analogues use once expressed
// as a single floating-point clock reading rather than split Y/M/D/H/M/S
// fields.
func JulianDay(year, month int, day, hour, minute, second float64) float64 {
	return julian.CalendarGregorianToJD(float64(year), float64(month), day+hour/24+minute/1440+second/86400)
}

// FromJulianDay is JulianDay's inverse, returning the calendar year, month
// and fractional day for a Julian day number.
func FromJulianDay(jd float64) (year, month int, day float64) {
	y, m, d := julian.JDToCalendar(jd)
	return y, m, d
}
