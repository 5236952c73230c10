package wire

import (
	"fmt"
	"math"
	"time"

	aris "github.com/soundmetrics/aris-go"
)

// CommandType identifies which command variant a Command carries (§6),
// mirroring the discriminated Command::TYPE field of the original
// CommandBuilder/commands.h.
type CommandType uint8

const (
	CommandSetDatetime CommandType = iota + 1
	CommandSetFramestreamReceiver
	CommandSetFramestreamSettings
	CommandSetAcoustics
	CommandPing
	CommandSetTelephoto
	CommandSetFocus
	CommandForceFocus
	CommandHomeFocus
	CommandSetSalinity
	CommandSetRotatorAcceleration
	CommandSetRotatorMount
	CommandSetRotatorPosition
	CommandSetRotatorVelocity
	CommandStopRotator
)

// FocusDirection selects which way ForceFocus drives the lens.
type FocusDirection uint8

const (
	FocusDirectionNear FocusDirection = iota
	FocusDirectionFar
)

// RotatorMount selects the AR2 rotator's mounting orientation.
type RotatorMount uint8

const (
	RotatorMountTabletop RotatorMount = iota
	RotatorMountInverted
)

// RotatorAxis selects which AR2 rotator axis a rotator command addresses.
type RotatorAxis uint8

const (
	RotatorAxisPan RotatorAxis = iota
	RotatorAxisTilt
	RotatorAxisRoll
)

// dateTimeLayout is the exact format ARIS expects for SET_DATETIME: en-US
// short month names regardless of host locale, since the sonar's firmware
// parses this string literally (original CommandBuilder.cpp's
// format_invariant_datetime / shortmonth_enUS).
const dateTimeLayout = "2006-Jan-02 15:04:05"

// Command is a single outbound control-session message (§4.1, §6). Only the
// fields belonging to the variant selected by Type are populated.
type Command struct {
	Type CommandType

	DateTime string // SET_DATETIME, already formatted per dateTimeLayout

	FramestreamPort     uint32 // SET_FRAMESTREAM_RECEIVER
	FramestreamIP       string // SET_FRAMESTREAM_RECEIVER, empty for unicast-to-sender
	HasFramestreamIP    bool
	InterpacketDelay    bool   // SET_FRAMESTREAM_SETTINGS
	InterpacketDelayUs  uint32 // SET_FRAMESTREAM_SETTINGS

	Acoustics aris.AcousticSettings // SET_ACOUSTICS

	TelephotoPresent bool // SET_TELEPHOTO

	FocusRangeM float32 // SET_FOCUS, meters

	ForceFocusDirection FocusDirection // FORCE_FOCUS

	Salinity aris.Salinity // SET_SALINITY

	RotatorAxis        RotatorAxis  // SET_ROTATOR_*, STOP_ROTATOR
	RotatorAcceleration float32     // SET_ROTATOR_ACCELERATION, degrees/s^2
	RotatorMount        RotatorMount // SET_ROTATOR_MOUNT
	RotatorPosition     float32      // SET_ROTATOR_POSITION, degrees
	RotatorVelocity     float32      // SET_ROTATOR_VELOCITY, degrees/s
}

// NewSetDatetime builds a SET_DATETIME command carrying now formatted with
// invariant en-US month names, matching CommandBuilder::SetTime.
func NewSetDatetime(now time.Time) *Command {
	return &Command{Type: CommandSetDatetime, DateTime: now.Format(dateTimeLayout)}
}

// NewSetFramestreamReceiverUnicast requests frames be sent back to the
// command connection's own source address on port.
func NewSetFramestreamReceiverUnicast(port uint32) *Command {
	return &Command{Type: CommandSetFramestreamReceiver, FramestreamPort: port}
}

// NewSetFramestreamReceiverMulticast requests frames be sent to ipv4Address
// (a multicast group) on port.
func NewSetFramestreamReceiverMulticast(ipv4Address string, port uint32) *Command {
	return &Command{
		Type:             CommandSetFramestreamReceiver,
		FramestreamPort:  port,
		FramestreamIP:    ipv4Address,
		HasFramestreamIP: true,
	}
}

// NewSetFramestreamSettings configures the sonar's interpacket delay.
func NewSetFramestreamSettings(enable bool, delayMicroseconds uint32) *Command {
	return &Command{
		Type:               CommandSetFramestreamSettings,
		InterpacketDelay:   enable,
		InterpacketDelayUs: delayMicroseconds,
	}
}

// NewSetAcoustics requests the sonar transition to settings.
func NewSetAcoustics(settings aris.AcousticSettings) *Command {
	return &Command{Type: CommandSetAcoustics, Acoustics: settings}
}

// NewPing builds a keep-alive/liveness PING command.
func NewPing() *Command { return &Command{Type: CommandPing} }

// NewSetTelephoto toggles the telephoto lens configuration.
func NewSetTelephoto(present bool) *Command {
	return &Command{Type: CommandSetTelephoto, TelephotoPresent: present}
}

// NewSetFocus drives the lens to an absolute focus range in meters.
func NewSetFocus(rangeM float32) *Command {
	return &Command{Type: CommandSetFocus, FocusRangeM: rangeM}
}

// NewForceFocus drives the lens continuously in direction until HomeFocus or
// another focus command is issued.
func NewForceFocus(direction FocusDirection) *Command {
	return &Command{Type: CommandForceFocus, ForceFocusDirection: direction}
}

// NewHomeFocus returns the lens to its home position.
func NewHomeFocus() *Command { return &Command{Type: CommandHomeFocus} }

// NewSetSalinity selects the water-type bucket used by the sonar's own
// internal depth/speed-of-sound computations.
func NewSetSalinity(salinity aris.Salinity) *Command {
	return &Command{Type: CommandSetSalinity, Salinity: salinity}
}

// NewSetRotatorAcceleration sets the AR2 rotator's acceleration on axis.
func NewSetRotatorAcceleration(axis RotatorAxis, degreesPerSecondSquared float32) *Command {
	return &Command{Type: CommandSetRotatorAcceleration, RotatorAxis: axis, RotatorAcceleration: degreesPerSecondSquared}
}

// NewSetRotatorMount tells the rotator how it is physically mounted.
func NewSetRotatorMount(mount RotatorMount) *Command {
	return &Command{Type: CommandSetRotatorMount, RotatorMount: mount}
}

// NewSetRotatorPosition commands the rotator to an absolute position in
// degrees on axis.
func NewSetRotatorPosition(axis RotatorAxis, degrees float32) *Command {
	return &Command{Type: CommandSetRotatorPosition, RotatorAxis: axis, RotatorPosition: degrees}
}

// NewSetRotatorVelocity commands the rotator to a constant velocity in
// degrees/second on axis.
func NewSetRotatorVelocity(axis RotatorAxis, degreesPerSecond float32) *Command {
	return &Command{Type: CommandSetRotatorVelocity, RotatorAxis: axis, RotatorVelocity: degreesPerSecond}
}

// NewStopRotator halts motion on axis.
func NewStopRotator(axis RotatorAxis) *Command {
	return &Command{Type: CommandStopRotator, RotatorAxis: axis}
}

const (
	fieldCmdType uint8 = iota + 1
	fieldCmdDateTime
	fieldCmdFramestreamPort
	fieldCmdFramestreamIP
	fieldCmdInterpacketDelay
	fieldCmdInterpacketDelayUs
	fieldCmdCookie
	fieldCmdFrameRate
	fieldCmdPingMode
	fieldCmdFrequency
	fieldCmdSamplesPerBeam
	fieldCmdSampleStartDelay
	fieldCmdCyclePeriod
	fieldCmdSamplePeriod
	fieldCmdPulseWidth
	fieldCmdEnableTransmit
	fieldCmdEnable150Volts
	fieldCmdReceiverGain
	fieldCmdTelephotoPresent
	fieldCmdFocusRangeM
	fieldCmdForceFocusDirection
	fieldCmdSalinity
	fieldCmdRotatorAxis
	fieldCmdRotatorAcceleration
	fieldCmdRotatorMount
	fieldCmdRotatorPosition
	fieldCmdRotatorVelocity
)

// EncodeCommand serializes c as a tagged-record payload, length-prefixed by
// the command session transport (§4.1).
func EncodeCommand(c *Command) []byte {
	var w Writer
	w.Uint(fieldCmdType, uint64(c.Type))

	switch c.Type {
	case CommandSetDatetime:
		w.String(fieldCmdDateTime, c.DateTime)
	case CommandSetFramestreamReceiver:
		w.Uint(fieldCmdFramestreamPort, uint64(c.FramestreamPort))
		if c.HasFramestreamIP {
			w.String(fieldCmdFramestreamIP, c.FramestreamIP)
		}
	case CommandSetFramestreamSettings:
		w.Bool(fieldCmdInterpacketDelay, c.InterpacketDelay)
		w.Uint(fieldCmdInterpacketDelayUs, uint64(c.InterpacketDelayUs))
	case CommandSetAcoustics:
		a := c.Acoustics
		w.Uint(fieldCmdCookie, uint64(a.Cookie))
		w.Fixed32(fieldCmdFrameRate, math.Float32bits(a.FrameRate))
		w.Uint(fieldCmdPingMode, uint64(a.PingMode))
		w.Uint(fieldCmdFrequency, uint64(a.Frequency))
		w.Uint(fieldCmdSamplesPerBeam, uint64(a.SamplesPerBeam))
		w.Uint(fieldCmdSampleStartDelay, uint64(a.SampleStartDelay))
		w.Uint(fieldCmdCyclePeriod, uint64(a.CyclePeriod))
		w.Uint(fieldCmdSamplePeriod, uint64(a.SamplePeriod))
		w.Uint(fieldCmdPulseWidth, uint64(a.PulseWidth))
		w.Bool(fieldCmdEnableTransmit, a.EnableTransmit)
		w.Bool(fieldCmdEnable150Volts, a.Enable150Volts)
		w.Fixed32(fieldCmdReceiverGain, math.Float32bits(a.ReceiverGain))
	case CommandPing, CommandHomeFocus:
		// no payload
	case CommandSetTelephoto:
		w.Bool(fieldCmdTelephotoPresent, c.TelephotoPresent)
	case CommandSetFocus:
		w.Fixed32(fieldCmdFocusRangeM, math.Float32bits(c.FocusRangeM))
	case CommandForceFocus:
		w.Uint(fieldCmdForceFocusDirection, uint64(c.ForceFocusDirection))
	case CommandSetSalinity:
		w.Uint(fieldCmdSalinity, uint64(c.Salinity))
	case CommandSetRotatorAcceleration:
		w.Uint(fieldCmdRotatorAxis, uint64(c.RotatorAxis))
		w.Fixed32(fieldCmdRotatorAcceleration, math.Float32bits(c.RotatorAcceleration))
	case CommandSetRotatorMount:
		w.Uint(fieldCmdRotatorMount, uint64(c.RotatorMount))
	case CommandSetRotatorPosition:
		w.Uint(fieldCmdRotatorAxis, uint64(c.RotatorAxis))
		w.Fixed32(fieldCmdRotatorPosition, math.Float32bits(c.RotatorPosition))
	case CommandSetRotatorVelocity:
		w.Uint(fieldCmdRotatorAxis, uint64(c.RotatorAxis))
		w.Fixed32(fieldCmdRotatorVelocity, math.Float32bits(c.RotatorVelocity))
	case CommandStopRotator:
		w.Uint(fieldCmdRotatorAxis, uint64(c.RotatorAxis))
	}

	return w.Encode()
}

// DecodeCommand parses a tagged-record command payload, as received on the
// sonar side of the control channel or replayed from a captured session.
func DecodeCommand(buf []byte) (*Command, error) {
	r, err := Decode(buf)
	if err != nil {
		return nil, err
	}

	t, ok := r.Uint(fieldCmdType)
	if !ok {
		return nil, ErrMalformed
	}
	c := &Command{Type: CommandType(t)}

	switch c.Type {
	case CommandSetDatetime:
		s, ok := r.String(fieldCmdDateTime)
		if !ok {
			return nil, ErrMalformed
		}
		c.DateTime = s
	case CommandSetFramestreamReceiver:
		port, ok := r.Uint(fieldCmdFramestreamPort)
		if !ok {
			return nil, ErrMalformed
		}
		c.FramestreamPort = uint32(port)
		if ip, ok := r.String(fieldCmdFramestreamIP); ok {
			c.FramestreamIP = ip
			c.HasFramestreamIP = true
		}
	case CommandSetFramestreamSettings:
		enable, _ := r.Bool(fieldCmdInterpacketDelay)
		us, _ := r.Uint(fieldCmdInterpacketDelayUs)
		c.InterpacketDelay = enable
		c.InterpacketDelayUs = uint32(us)
	case CommandSetAcoustics:
		cookie, _ := r.Uint(fieldCmdCookie)
		fr, _ := r.Uint(fieldCmdFrameRate)
		pingMode, _ := r.Uint(fieldCmdPingMode)
		freq, _ := r.Uint(fieldCmdFrequency)
		spb, _ := r.Uint(fieldCmdSamplesPerBeam)
		ssd, _ := r.Uint(fieldCmdSampleStartDelay)
		cp, _ := r.Uint(fieldCmdCyclePeriod)
		sp, _ := r.Uint(fieldCmdSamplePeriod)
		pw, _ := r.Uint(fieldCmdPulseWidth)
		et, _ := r.Bool(fieldCmdEnableTransmit)
		e150, _ := r.Bool(fieldCmdEnable150Volts)
		gain, _ := r.Uint(fieldCmdReceiverGain)
		c.Acoustics = aris.AcousticSettings{
			Cookie:           uint32(cookie),
			FrameRate:        math.Float32frombits(uint32(fr)),
			PingMode:         aris.PingMode(pingMode),
			Frequency:        aris.Frequency(freq),
			SamplesPerBeam:   uint32(spb),
			SampleStartDelay: uint32(ssd),
			CyclePeriod:      uint32(cp),
			SamplePeriod:     uint32(sp),
			PulseWidth:       uint32(pw),
			EnableTransmit:   et,
			Enable150Volts:   e150,
			ReceiverGain:     math.Float32frombits(uint32(gain)),
		}
	case CommandPing, CommandHomeFocus:
		// no payload
	case CommandSetTelephoto:
		present, _ := r.Bool(fieldCmdTelephotoPresent)
		c.TelephotoPresent = present
	case CommandSetFocus:
		v, _ := r.Uint(fieldCmdFocusRangeM)
		c.FocusRangeM = math.Float32frombits(uint32(v))
	case CommandForceFocus:
		v, _ := r.Uint(fieldCmdForceFocusDirection)
		c.ForceFocusDirection = FocusDirection(v)
	case CommandSetSalinity:
		v, _ := r.Uint(fieldCmdSalinity)
		c.Salinity = aris.Salinity(v)
	case CommandSetRotatorAcceleration:
		axis, _ := r.Uint(fieldCmdRotatorAxis)
		acc, _ := r.Uint(fieldCmdRotatorAcceleration)
		c.RotatorAxis = RotatorAxis(axis)
		c.RotatorAcceleration = math.Float32frombits(uint32(acc))
	case CommandSetRotatorMount:
		v, _ := r.Uint(fieldCmdRotatorMount)
		c.RotatorMount = RotatorMount(v)
	case CommandSetRotatorPosition:
		axis, _ := r.Uint(fieldCmdRotatorAxis)
		pos, _ := r.Uint(fieldCmdRotatorPosition)
		c.RotatorAxis = RotatorAxis(axis)
		c.RotatorPosition = math.Float32frombits(uint32(pos))
	case CommandSetRotatorVelocity:
		axis, _ := r.Uint(fieldCmdRotatorAxis)
		vel, _ := r.Uint(fieldCmdRotatorVelocity)
		c.RotatorAxis = RotatorAxis(axis)
		c.RotatorVelocity = math.Float32frombits(uint32(vel))
	case CommandStopRotator:
		axis, _ := r.Uint(fieldCmdRotatorAxis)
		c.RotatorAxis = RotatorAxis(axis)
	default:
		return nil, fmt.Errorf("wire: unrecognized command type %d: %w", c.Type, ErrMalformed)
	}

	return c, nil
}
