package wire

import (
	"bytes"
	"testing"
)

func TestFramePartFirstFragmentRoundTrip(t *testing.T) {
	want := &FramePart{
		FrameIndex:    7,
		DataOffset:    0,
		Header:        bytes.Repeat([]byte{0xAB}, 1024),
		Data:          []byte("first chunk of frame data"),
		TotalDataSize: 65536,
	}
	got, err := DecodeFramePart(EncodeFramePart(want))
	if err != nil {
		t.Fatalf("DecodeFramePart: %v", err)
	}
	if got.FrameIndex != want.FrameIndex || got.DataOffset != want.DataOffset ||
		!bytes.Equal(got.Header, want.Header) || !bytes.Equal(got.Data, want.Data) ||
		got.TotalDataSize != want.TotalDataSize {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFramePartContinuationHasNoHeader(t *testing.T) {
	want := &FramePart{
		FrameIndex: 7,
		DataOffset: 1400,
		Data:       []byte("more frame data"),
	}
	got, err := DecodeFramePart(EncodeFramePart(want))
	if err != nil {
		t.Fatalf("DecodeFramePart: %v", err)
	}
	if got.Header != nil {
		t.Fatalf("continuation fragment should carry no header, got %d bytes", len(got.Header))
	}
	if got.TotalDataSize != 0 {
		t.Fatalf("continuation fragment should carry no total size, got %d", got.TotalDataSize)
	}
	if !bytes.Equal(got.Data, want.Data) {
		t.Fatalf("Data = %q, want %q", got.Data, want.Data)
	}
}

func TestFramePartAckRoundTrip(t *testing.T) {
	want := &FramePartAck{FrameIndex: 42, DataOffset: 8192}
	got, err := DecodeFramePartAck(EncodeFramePartAck(want))
	if err != nil {
		t.Fatalf("DecodeFramePartAck: %v", err)
	}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodeFramePartMissingDataIsMalformed(t *testing.T) {
	var w Writer
	w.Uint(fieldPartFrameIndex, 1)
	w.Uint(fieldPartDataOffset, 0)
	if _, err := DecodeFramePart(w.Encode()); err != ErrMalformed {
		t.Fatalf("DecodeFramePart without header/data = %v, want ErrMalformed", err)
	}
}
