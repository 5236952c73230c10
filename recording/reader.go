package recording

import (
	"io"
	"os"

	aris "github.com/soundmetrics/aris-go"
)

// ReadFrameHeaders opens an existing recording and returns every frame
// header in file order, skipping over each frame's sample payload using
// the file header's back-patched SamplesPerChannel/NumRawBeams (§4.10,
// §6). It does not decode sample bytes.
func ReadFrameHeaders(path string) ([]*aris.FrameHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headerBuf := make([]byte, aris.FileHeaderSize)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		return nil, joinFileIO(err)
	}
	fileHeader, err := aris.DecodeFileHeader(headerBuf)
	if err != nil {
		return nil, err
	}

	sampleBytes := int64(fileHeader.SamplesPerChannel) * int64(fileHeader.NumRawBeams)

	headers := make([]*aris.FrameHeader, 0, fileHeader.FrameCount)
	frameBuf := make([]byte, aris.FrameHeaderSize)
	for i := uint32(0); i < fileHeader.FrameCount; i++ {
		if _, err := io.ReadFull(f, frameBuf); err != nil {
			return headers, joinFileIO(err)
		}
		fh, err := aris.DecodeFrameHeader(frameBuf)
		if err != nil {
			return headers, err
		}
		headers = append(headers, fh)

		if _, err := f.Seek(sampleBytes, io.SeekCurrent); err != nil {
			return headers, joinFileIO(err)
		}
	}

	return headers, nil
}
