package aris

import "testing"

func TestNewFileHeaderSignature(t *testing.T) {
	h := NewFileHeader()
	if h.Version != ArisFileSignature {
		t.Fatalf("Version = %x, want %x", h.Version, ArisFileSignature)
	}
}

func TestFileHeaderEncodeSize(t *testing.T) {
	h := NewFileHeader()
	enc := h.Encode()
	if len(enc) != FileHeaderSize {
		t.Fatalf("len(enc) = %d, want %d", len(enc), FileHeaderSize)
	}
}

func TestFileHeaderRoundTrip(t *testing.T) {
	h := &FileHeader{
		Version:           ArisFileSignature,
		FrameCount:        100,
		FrameRate:         13.9,
		SamplesPerChannel: 1166,
		NumRawBeams:       48,
		SN:                12345,
	}
	got, err := DecodeFileHeader(h.Encode())
	if err != nil {
		t.Fatalf("DecodeFileHeader: %v", err)
	}
	if *got != *h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestDecodeFileHeaderWrongSizeIsMalformed(t *testing.T) {
	if _, err := DecodeFileHeader(make([]byte, FileHeaderSize-1)); err != ErrMalformedWirePacket {
		t.Fatalf("DecodeFileHeader with short buffer = %v, want ErrMalformedWirePacket", err)
	}
}
