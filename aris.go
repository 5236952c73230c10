// Package aris provides the client-side wire and file-format contracts for
// the ARIS family of underwater imaging sonars (ARIS 1800, ARIS 3000 and
// ARIS 1200), plus the acoustic-math helpers the control path needs to build
// legal settings requests.
package aris

import "fmt"

// SystemType identifies which ARIS hardware variant a sonar reports itself
// as. The numeric values are the carrier-frequency-family identifiers used
// on the wire; they are not sequential and must not be treated as an index.
type SystemType uint32

const (
	SystemTypeAris1800 SystemType = 1800
	SystemTypeAris3000 SystemType = 3000
	SystemTypeAris1200 SystemType = 1200
)

func (t SystemType) String() string {
	switch t {
	case SystemTypeAris1800:
		return "ARIS1800"
	case SystemTypeAris3000:
		return "ARIS3000"
	case SystemTypeAris1200:
		return "ARIS1200"
	default:
		return fmt.Sprintf("SystemType(%d)", uint32(t))
	}
}

// Valid reports whether t is one of the three recognized system types.
func (t SystemType) Valid() bool {
	switch t {
	case SystemTypeAris1800, SystemTypeAris3000, SystemTypeAris1200:
		return true
	default:
		return false
	}
}

// Frequency selects the sonar's transmit frequency band.
type Frequency uint32

const (
	FrequencyLow Frequency = iota
	FrequencyHigh
)

// Salinity selects the water-type bucket used by the depth conversion
// factor table and echoed to the sonar via SET_SALINITY.
type Salinity uint32

const (
	SalinityFresh Salinity = iota
	SalinityBrackish
	SalinitySalt
)

// PingMode enumerates the physical beamforming patterns the sonar can be
// commanded into. Every other value is invalid.
type PingMode uint32

const (
	PingMode1 PingMode = 1
	PingMode3 PingMode = 3
	PingMode6 PingMode = 6
	PingMode9 PingMode = 9
)

type pingModeShape struct {
	pingsPerFrame uint32
	beams         uint32
}

var pingModeTable = map[PingMode]pingModeShape{
	PingMode1: {pingsPerFrame: 3, beams: 48},
	PingMode3: {pingsPerFrame: 6, beams: 96},
	PingMode6: {pingsPerFrame: 4, beams: 64},
	PingMode9: {pingsPerFrame: 8, beams: 128},
}

// BeamsPerPing is the fixed number of physical receiver channels sampled on
// every ping, regardless of ping mode. It is the "B" of §4.3's reorder.
const BeamsPerPing = 16

// Valid reports whether m is one of the four recognized ping modes.
func (m PingMode) Valid() bool {
	_, ok := pingModeTable[m]
	return ok
}

// PingsPerFrame returns the number of pings assembled into one frame for
// ping mode m. It returns 0 for an invalid ping mode.
func (m PingMode) PingsPerFrame() uint32 {
	return pingModeTable[m].pingsPerFrame
}

// Beams returns the number of beams per frame for ping mode m. It returns 0
// for an invalid ping mode.
func (m PingMode) Beams() uint32 {
	return pingModeTable[m].beams
}

// ChannelReversalMap is the fixed channel-to-beam permutation applied by
// Reorder. Index k gives the destination channel for physical channel k.
var ChannelReversalMap = [BeamsPerPing]int32{
	10, 2, 14, 6, 8, 0, 12, 4, 11, 3, 15, 7, 9, 1, 13, 5,
}

// AcousticSettings is the full set of fields recognized by SET_ACOUSTICS.
// Cookie is assigned by the caller (see connection.Connection.nextCookie)
// and echoed back in every frame header produced in response to this
// request, allowing the host to match arriving frames to the settings that
// produced them.
type AcousticSettings struct {
	Cookie           uint32
	FrameRate        float32
	PingMode         PingMode
	Frequency        Frequency
	SamplesPerBeam   uint32
	SampleStartDelay uint32
	CyclePeriod      uint32
	SamplePeriod     uint32
	PulseWidth       uint32
	EnableTransmit   bool
	Enable150Volts   bool
	ReceiverGain     float32
}
