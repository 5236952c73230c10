package aris

import (
	"bytes"
	"encoding/binary"
)

// FileHeaderSize is the fixed size of the leading record of a recording
// file (§4.10, §6).
const FileHeaderSize = 1024

// ArisFileSignature is the magic value written into FileHeader.Version,
// identifying the file format.
const ArisFileSignature uint32 = 0x05464c41 // "ALF\x05", little-endian on disk

// Byte offsets of the fields the recording writer back-patches after the
// first frame is written (§4.1, §4.10).
const (
	FileHeaderOffsetVersion           = 0
	FileHeaderOffsetFrameCount        = 4
	FileHeaderOffsetSamplesPerChannel = 12
	FileHeaderOffsetNumRawBeams       = 16
	FileHeaderOffsetSN                = 40
)

// FileHeader is the fixed 1024-byte record at the start of every recording
// file.
type FileHeader struct {
	Version           uint32
	FrameCount        uint32
	FrameRate         float32
	SamplesPerChannel uint32
	NumRawBeams       uint32
	SampleStartDelay  uint32
	SamplePeriod      uint32
	PulseWidth        uint32
	PingMode          uint32
	Frequency         uint32
	SN                uint32
	Reserved          [FileHeaderSize - 44]byte
}

// NewFileHeader constructs a zero-initialized FileHeader carrying only the
// format signature, matching WriteFileHeader in the original recording
// writer.
func NewFileHeader() *FileHeader {
	return &FileHeader{Version: ArisFileSignature}
}

// Encode serializes h to exactly FileHeaderSize bytes.
func (h *FileHeader) Encode() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(FileHeaderSize)
	_ = binary.Write(buf, binary.LittleEndian, h)
	out := buf.Bytes()
	if len(out) != FileHeaderSize {
		panic("aris: FileHeader encodes to an unexpected size")
	}
	return out
}

// DecodeFileHeader reads a FileHeader from exactly FileHeaderSize bytes.
func DecodeFileHeader(wire []byte) (*FileHeader, error) {
	if len(wire) != FileHeaderSize {
		return nil, ErrMalformedWirePacket
	}
	h := &FileHeader{}
	if err := binary.Read(bytes.NewReader(wire), binary.LittleEndian, h); err != nil {
		return nil, ErrMalformedWirePacket
	}
	return h, nil
}
