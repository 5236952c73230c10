package aris

// FrameBuilder accumulates the bytes of one in-progress frame (§4.4). It
// exclusively owns its backing buffer until TakeHeader/TakeFrameData
// transfer ownership to the caller on completion.
type FrameBuilder struct {
	frameIndex    int32
	totalSize     int
	bytesReceived int
	header        []byte
	data          []byte
}

// NewFrameBuilder constructs a FrameBuilder from the first fragment of a
// frame. It fails with ErrMalformedFirstPart if frameIndex is negative or
// header is empty, matching the source's ValidateInputs/
// bad_frame_builder_inputs_exception.
func NewFrameBuilder(frameIndex int32, header []byte, firstFragment []byte, totalDataSize int) (*FrameBuilder, error) {
	if frameIndex < 0 || len(header) == 0 {
		return nil, ErrMalformedFirstPart
	}

	hdrCopy := make([]byte, len(header))
	copy(hdrCopy, header)

	b := &FrameBuilder{
		frameIndex: frameIndex,
		totalSize:  totalDataSize,
		header:     hdrCopy,
		data:       make([]byte, totalDataSize),
	}
	b.Append(0, firstFragment)
	return b, nil
}

// FrameIndex returns the index this builder is assembling.
func (b *FrameBuilder) FrameIndex() int32 { return b.frameIndex }

// IsComplete reports whether every byte of the frame has been received.
func (b *FrameBuilder) IsComplete() bool { return b.bytesReceived == b.totalSize }

// BytesReceived returns the number of frame-data bytes received so far.
func (b *FrameBuilder) BytesReceived() int { return b.bytesReceived }

// ExpectedSize returns the total frame-data size declared by the first
// fragment.
func (b *FrameBuilder) ExpectedSize() int { return b.totalSize }

// PercentComplete is a logging convenience, not used by assembler logic:
// it mirrors the frame-assembler-lite reference's bytes_this_frame /
// bytes_expected pair.
func (b *FrameBuilder) PercentComplete() float64 {
	if b.totalSize == 0 {
		return 100
	}
	return 100 * float64(b.bytesReceived) / float64(b.totalSize)
}

// Append copies fragment into the buffer at dataOffset, clipped to the
// buffer's remaining space, and increases BytesReceived by the number of
// bytes actually copied.
func (b *FrameBuilder) Append(dataOffset int, fragment []byte) int {
	if dataOffset < 0 || dataOffset >= len(b.data) {
		return 0
	}
	n := copy(b.data[dataOffset:], fragment)
	b.bytesReceived += n
	return n
}

// TakeHeader transfers ownership of the accumulated header bytes to the
// caller; the builder must not be used afterward.
func (b *FrameBuilder) TakeHeader() []byte {
	h := b.header
	b.header = nil
	return h
}

// TakeFrameData transfers ownership of the accumulated frame-data buffer to
// the caller; the builder must not be used afterward.
func (b *FrameBuilder) TakeFrameData() []byte {
	d := b.data
	b.data = nil
	return d
}
