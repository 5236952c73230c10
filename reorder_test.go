package aris

import "testing"

func TestReorderNoOpWhenAlreadyReordered(t *testing.T) {
	h := &FrameHeader{PingMode: uint32(PingMode1), SamplesPerBeam: 2, ReorderedSamples: 1}
	samples := []byte{1, 2, 3, 4}
	before := append([]byte(nil), samples...)

	if err := Reorder(h, samples); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	for i := range samples {
		if samples[i] != before[i] {
			t.Fatalf("Reorder mutated samples when ReorderedSamples was already set")
		}
	}
}

func TestReorderInvalidPingMode(t *testing.T) {
	h := &FrameHeader{PingMode: 255, SamplesPerBeam: 2}
	if err := Reorder(h, make([]byte, 10)); err != ErrInvalidPingMode {
		t.Fatalf("Reorder with bad ping mode = %v, want ErrInvalidPingMode", err)
	}
}

func TestReorderWrongLengthIsMalformed(t *testing.T) {
	h := &FrameHeader{PingMode: uint32(PingMode1), SamplesPerBeam: 2}
	want := int(PingMode1.Beams()) * 2
	if err := Reorder(h, make([]byte, want-1)); err != ErrMalformedWirePacket {
		t.Fatalf("Reorder with short buffer = %v, want ErrMalformedWirePacket", err)
	}
}

func TestReorderSetsFlagAndPermutes(t *testing.T) {
	pingMode := PingMode1
	n := int(pingMode.Beams())
	s := 2
	samples := make([]byte, n*s)
	for i := range samples {
		samples[i] = byte(i)
	}
	before := append([]byte(nil), samples...)

	h := &FrameHeader{PingMode: uint32(pingMode), SamplesPerBeam: uint32(s)}
	if err := Reorder(h, samples); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if h.ReorderedSamples != 1 {
		t.Fatalf("ReorderedSamples = %d, want 1", h.ReorderedSamples)
	}

	// The transform must be a permutation: same multiset of bytes, but not
	// (in general) the identity ordering.
	seen := make(map[byte]bool, len(samples))
	for _, b := range samples {
		seen[b] = true
	}
	if len(seen) != len(samples) {
		t.Fatalf("Reorder output lost or duplicated bytes")
	}
	if string(samples) == string(before) {
		t.Fatalf("Reorder left the buffer unchanged")
	}
}
