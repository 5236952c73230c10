// Package recording implements the append-only .aris file writer (§4.10):
// one 1024-byte file header followed by N (frame header, sample bytes)
// pairs, with the back-patch ordering the source's recorder uses to keep a
// crashed-mid-write file recognizable as empty rather than corrupt.
package recording

import (
	"fmt"
	"io"
	"os"

	aris "github.com/soundmetrics/aris-go"
)

// Writer is an append-only .aris recording. Construct with Create.
type Writer struct {
	f          *os.File
	path       string
	frameCount uint32
}

// Create opens path for writing, truncating any existing file, and writes
// a zero-initialized file header carrying only the format signature. If
// the header write fails, the file is removed and the error is returned
// wrapped in aris.ErrFileIO.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	if _, err := f.Write(aris.NewFileHeader().Encode()); err != nil {
		f.Close()
		os.Remove(path)
		return nil, joinFileIO(err)
	}

	return &Writer{f: f, path: path}, nil
}

// WriteFrame writes header and samples as the next frame (§4.10 steps
// 1-5). samples must already be in the on-disk (reordered, beam-major)
// layout; header.ReorderedSamples should be set beforehand by the caller.
//
// On any failure the file is seeked back to the start-of-frame position so
// a subsequent WriteFrame overwrites the partial write rather than
// appending after it, and the error is returned wrapped in
// aris.ErrFileIO.
func (w *Writer) WriteFrame(header *aris.FrameHeader, samples []byte) error {
	startOfFrame, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return joinFileIO(err)
	}

	encodedHeader := aris.EncodeFrameHeader(header)
	aris.PatchFrameIndex(encodedHeader, w.frameCount)

	if err := w.writeHeaderThenSamples(startOfFrame, encodedHeader, header, samples); err != nil {
		if _, seekErr := w.f.Seek(startOfFrame, io.SeekStart); seekErr != nil {
			return joinFileIO(seekErr)
		}
		return joinFileIO(err)
	}

	w.frameCount++
	if err := w.patchUint32(aris.FileHeaderOffsetFrameCount, w.frameCount); err != nil {
		return joinFileIO(err)
	}

	return nil
}

// writeHeaderThenSamples writes the frame header, back-patches the file
// header (if this is the first frame) and only then writes the sample
// bytes, so a crash between the two writes leaves the file recognizable
// as empty rather than corrupt (§4.10 step 3).
func (w *Writer) writeHeaderThenSamples(pos int64, encodedHeader []byte, header *aris.FrameHeader, samples []byte) error {
	if _, err := w.f.WriteAt(encodedHeader, pos); err != nil {
		return err
	}
	if w.frameCount == 0 {
		if err := w.patchFirstFrameFields(header); err != nil {
			return err
		}
	}
	if _, err := w.f.WriteAt(samples, pos+int64(aris.FrameHeaderSize)); err != nil {
		return err
	}
	if _, err := w.f.Seek(pos+int64(aris.FrameHeaderSize)+int64(len(samples)), io.SeekStart); err != nil {
		return err
	}
	return nil
}

// patchFirstFrameFields back-patches the file header's SamplesPerChannel,
// NumRawBeams and SN fields from the first frame's header, before any
// sample data is considered durable (§4.10 step 3).
func (w *Writer) patchFirstFrameFields(header *aris.FrameHeader) error {
	beams := aris.PingMode(header.PingMode).Beams()

	if err := w.patchUint32(aris.FileHeaderOffsetSamplesPerChannel, header.SamplesPerBeam); err != nil {
		return err
	}
	if err := w.patchUint32(aris.FileHeaderOffsetNumRawBeams, beams); err != nil {
		return err
	}
	if err := w.patchUint32(aris.FileHeaderOffsetSN, header.SonarSerialNumber); err != nil {
		return err
	}
	return nil
}

func (w *Writer) patchUint32(offset int64, value uint32) error {
	var buf [4]byte
	buf[0] = byte(value)
	buf[1] = byte(value >> 8)
	buf[2] = byte(value >> 16)
	buf[3] = byte(value >> 24)
	_, err := w.f.WriteAt(buf[:], offset)
	return err
}

// Close flushes and closes the file. If no frame was ever written (the
// file contains only the header), the file is deleted rather than left
// behind as an empty recording (§4.10 destruction behavior).
func (w *Writer) Close() error {
	empty := w.frameCount == 0
	err := w.f.Close()
	if empty {
		if rmErr := os.Remove(w.path); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

func joinFileIO(err error) error {
	return fmt.Errorf("%w: %v", aris.ErrFileIO, err)
}
