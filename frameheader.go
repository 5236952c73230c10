package aris

import (
	"bytes"
	"encoding/binary"
)

// FrameHeaderSize is the fixed on-disk and on-wire size of a frame header;
// smaller encodings (the on-wire first-part header) are zero-extended up
// to this size, matching §3's "Frame" definition.
const FrameHeaderSize = 1024

// FrameHeaderOffsetFrameIndex is the byte offset of FrameIndex within the
// encoded header. It is the one offset spec.md calls out by name (§4.1):
// the recording writer patches the zero-based frame index it assigns at
// this offset of the encoded header before writing it, overriding whatever
// the device put on the wire.
const FrameHeaderOffsetFrameIndex = 0

// FrameHeader is the fixed C-layout record carried by every frame, encoded
// little-endian. Field order is on-wire order; encoding/binary.Write/Read
// serialize it with no inserted padding, so every field's byte offset is
// the sum of the encoded sizes of the fields before it.
type FrameHeader struct {
	FrameIndex        uint32
	FrameTime         int64
	Version           uint32
	Status            uint32
	SonarSerialNumber uint32
	TSYear            int32
	TSMonth           int32
	TSDay             int32
	TSHour            int32
	TSMinute          int32
	TSSecond          int32
	TSHSecond         int32
	Cookie            uint32
	PingMode          uint32
	Frequency         uint32
	SamplesPerBeam    uint32
	SampleStartDelay  uint32
	CyclePeriod       uint32
	SamplePeriod      uint32
	PulseWidth        uint32
	TransmitEnable    uint32
	Enable150Volts    uint32
	ReceiverGain      float32
	FrameRate         float32
	SoundSpeed        float32
	ReorderedSamples  uint32
	Velocity          float32
	Depth             float32
	Altitude          float32
	Pitch             float32
	PitchRate         float32
	Roll              float32
	RollRate          float32
	Heading           float32
	HeadingRate       float32
	SonarPan          float32
	SonarTilt         float32
	SonarRoll         float32
	Latitude          float64
	Longitude         float64
	SonarPosition     float32
	TargetRange       float32
	TargetBearing     float32
	TargetPresent     uint32
	UserValue1        float32
	UserValue2        float32
	UserValue3        float32
	UserValue4        float32
	UserValue5        float32
	UserValue6        float32
	UserValue7        float32
	UserValue8        float32
	DegC2             uint32
	WaterTemp         float32
	SonarX            float32
	SonarY            float32
	SonarZ            float32
	SonarPanOffset    float32
	SonarTiltOffset   float32
	SonarRollOffset   float32
	VehicleTime       float64
	TimeGGK           uint32
	DateGGK           uint32
	QualityGGK        uint32
	NumSatsGGK        uint32
	DOPGGK            float32
	EHTGGK            float32
	Reserved          [740]byte
}

// EncodeFrameHeader serializes h to exactly FrameHeaderSize bytes.
func EncodeFrameHeader(h *FrameHeader) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(FrameHeaderSize)
	_ = binary.Write(buf, binary.LittleEndian, h)
	out := buf.Bytes()
	if len(out) != FrameHeaderSize {
		panic("aris: FrameHeader encodes to an unexpected size")
	}
	return out
}

// DecodeFrameHeader reads a FrameHeader from on-wire bytes, which may be
// shorter than FrameHeaderSize for a first frame-part; the remainder is
// zero-extended before decoding per §3.
func DecodeFrameHeader(wire []byte) (*FrameHeader, error) {
	if len(wire) == 0 {
		return nil, ErrMalformedWirePacket
	}
	padded := make([]byte, FrameHeaderSize)
	n := copy(padded, wire)
	if n < len(wire) {
		return nil, ErrMalformedWirePacket
	}

	h := &FrameHeader{}
	if err := binary.Read(bytes.NewReader(padded), binary.LittleEndian, h); err != nil {
		return nil, ErrMalformedWirePacket
	}
	return h, nil
}

// PatchFrameIndex overwrites the FrameIndex field of an already-encoded
// frame header in place, matching the recording writer's back-patch (§4.10
// step 5): the offset is relative to the start of the frame header, never
// to the frame data (§9 pins this down explicitly).
func PatchFrameIndex(encoded []byte, frameIndex uint32) {
	binary.LittleEndian.PutUint32(encoded[FrameHeaderOffsetFrameIndex:], frameIndex)
}
