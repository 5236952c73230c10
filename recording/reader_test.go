package recording

import (
	"path/filepath"
	"testing"

	aris "github.com/soundmetrics/aris-go"
)

func TestReadFrameHeadersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.aris")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	beams := aris.PingMode1.Beams()
	samples := make([]byte, beams*2)

	for i := 0; i < 3; i++ {
		h := &aris.FrameHeader{
			PingMode:          uint32(aris.PingMode1),
			SamplesPerBeam:    2,
			SonarSerialNumber: 777,
			Depth:             float32(i) * 1.5,
		}
		if err := w.WriteFrame(h, samples); err != nil {
			t.Fatalf("WriteFrame(%d): %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	headers, err := ReadFrameHeaders(path)
	if err != nil {
		t.Fatalf("ReadFrameHeaders: %v", err)
	}
	if len(headers) != 3 {
		t.Fatalf("len(headers) = %d, want 3", len(headers))
	}
	for i, h := range headers {
		if h.FrameIndex != uint32(i) {
			t.Fatalf("headers[%d].FrameIndex = %d, want %d", i, h.FrameIndex, i)
		}
		if h.SonarSerialNumber != 777 {
			t.Fatalf("headers[%d].SonarSerialNumber = %d, want 777", i, h.SonarSerialNumber)
		}
	}
}
