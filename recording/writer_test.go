package recording

import (
	"os"
	"path/filepath"
	"testing"

	aris "github.com/soundmetrics/aris-go"
)

func TestWriteFrameBackPatchesHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.aris")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	beams := aris.PingMode1.Beams()
	samplesPerBeam := uint32(4)
	samples := make([]byte, beams*samplesPerBeam)

	h := &aris.FrameHeader{
		PingMode:          uint32(aris.PingMode1),
		SamplesPerBeam:    samplesPerBeam,
		SonarSerialNumber: 12345,
		FrameIndex:        999, // should be overridden by the writer
	}

	if err := w.WriteFrame(h, samples); err != nil {
		t.Fatalf("WriteFrame (1st): %v", err)
	}
	if err := w.WriteFrame(h, samples); err != nil {
		t.Fatalf("WriteFrame (2nd): %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	wantSize := int(aris.FileHeaderSize) + 2*(int(aris.FrameHeaderSize)+len(samples))
	if len(raw) != wantSize {
		t.Fatalf("file size = %d, want %d", len(raw), wantSize)
	}

	fh, err := aris.DecodeFileHeader(raw[:aris.FileHeaderSize])
	if err != nil {
		t.Fatalf("DecodeFileHeader: %v", err)
	}
	if fh.Version != aris.ArisFileSignature {
		t.Fatalf("Version = %#x, want signature", fh.Version)
	}
	if fh.FrameCount != 2 {
		t.Fatalf("FrameCount = %d, want 2", fh.FrameCount)
	}
	if fh.SamplesPerChannel != samplesPerBeam {
		t.Fatalf("SamplesPerChannel = %d, want %d", fh.SamplesPerChannel, samplesPerBeam)
	}
	if fh.NumRawBeams != beams {
		t.Fatalf("NumRawBeams = %d, want %d", fh.NumRawBeams, beams)
	}
	if fh.SN != 12345 {
		t.Fatalf("SN = %d, want 12345", fh.SN)
	}

	frame1Start := int(aris.FileHeaderSize)
	frameHeader1, err := aris.DecodeFrameHeader(raw[frame1Start : frame1Start+int(aris.FrameHeaderSize)])
	if err != nil {
		t.Fatalf("DecodeFrameHeader (1st): %v", err)
	}
	if frameHeader1.FrameIndex != 0 {
		t.Fatalf("first frame's FrameIndex = %d, want 0 (back-patched, not the device value)", frameHeader1.FrameIndex)
	}

	frame2Start := frame1Start + int(aris.FrameHeaderSize) + len(samples)
	frameHeader2, err := aris.DecodeFrameHeader(raw[frame2Start : frame2Start+int(aris.FrameHeaderSize)])
	if err != nil {
		t.Fatalf("DecodeFrameHeader (2nd): %v", err)
	}
	if frameHeader2.FrameIndex != 1 {
		t.Fatalf("second frame's FrameIndex = %d, want 1", frameHeader2.FrameIndex)
	}
}

func TestWriteFramePatchesFileHeaderBeforeSamples(t *testing.T) {
	// §4.10 step 3: the file header's SamplesPerChannel/NumRawBeams/SN
	// back-patch must happen between the frame-header write and the
	// sample-data write, so a crash in between leaves a file whose file
	// header already correctly describes the recording. This test checks
	// that the fields are patched once the first WriteFrame returns; it does
	// not observe the order of the writes inside WriteFrame.
	path := filepath.Join(t.TempDir(), "order.aris")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	beams := aris.PingMode1.Beams()
	samplesPerBeam := uint32(4)
	samples := make([]byte, beams*samplesPerBeam)

	h := &aris.FrameHeader{
		PingMode:          uint32(aris.PingMode1),
		SamplesPerBeam:    samplesPerBeam,
		SonarSerialNumber: 55,
	}

	if err := w.WriteFrame(h, samples); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	fileHeaderBytes := make([]byte, aris.FileHeaderSize)
	if _, err := w.f.ReadAt(fileHeaderBytes, 0); err != nil {
		t.Fatalf("ReadAt file header: %v", err)
	}
	fh, err := aris.DecodeFileHeader(fileHeaderBytes)
	if err != nil {
		t.Fatalf("DecodeFileHeader: %v", err)
	}
	if fh.SamplesPerChannel != samplesPerBeam || fh.NumRawBeams != beams || fh.SN != 55 {
		t.Fatalf("file header not back-patched after WriteFrame: %+v", fh)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCloseDeletesEmptyRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.aris")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to have been removed, stat err = %v", path, err)
	}
}

func TestCloseKeepsNonEmptyRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonempty.aris")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	h := &aris.FrameHeader{PingMode: uint32(aris.PingMode1), SamplesPerBeam: 1}
	samples := make([]byte, aris.PingMode1.Beams())
	if err := w.WriteFrame(h, samples); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to still exist: %v", path, err)
	}
}
