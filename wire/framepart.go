package wire

// FramePart is one UDP-sized chunk of a frame (§3). Only the first part of
// a frame (DataOffset == 0) carries Header and TotalDataSize.
type FramePart struct {
	FrameIndex    int32
	DataOffset    int32
	Header        []byte // only set when DataOffset == 0
	Data          []byte
	TotalDataSize int32 // only meaningful when DataOffset == 0
}

const (
	fieldPartFrameIndex uint8 = iota + 1
	fieldPartDataOffset
	fieldPartHeader
	fieldPartData
	fieldPartTotalDataSize
)

// EncodeFramePart encodes p onto the wire. No length prefix is added;
// datagram length is authoritative (§4.1).
func EncodeFramePart(p *FramePart) []byte {
	var w Writer
	w.Uint(fieldPartFrameIndex, uint64(uint32(p.FrameIndex)))
	w.Uint(fieldPartDataOffset, uint64(uint32(p.DataOffset)))
	if p.DataOffset == 0 {
		w.Bytes(fieldPartHeader, p.Header)
		w.Uint(fieldPartTotalDataSize, uint64(uint32(p.TotalDataSize)))
	}
	w.Bytes(fieldPartData, p.Data)
	return w.Encode()
}

// DecodeFramePart decodes one frame-part datagram.
func DecodeFramePart(buf []byte) (*FramePart, error) {
	r, err := Decode(buf)
	if err != nil {
		return nil, err
	}

	fi, ok := r.Uint(fieldPartFrameIndex)
	if !ok {
		return nil, ErrMalformed
	}
	off, ok := r.Uint(fieldPartDataOffset)
	if !ok {
		return nil, ErrMalformed
	}
	data, ok := r.Bytes(fieldPartData)
	if !ok {
		return nil, ErrMalformed
	}

	p := &FramePart{
		FrameIndex: int32(uint32(fi)),
		DataOffset: int32(uint32(off)),
		Data:       data,
	}

	if p.DataOffset == 0 {
		hdr, ok := r.Bytes(fieldPartHeader)
		if !ok {
			return nil, ErrMalformed
		}
		total, ok := r.Uint(fieldPartTotalDataSize)
		if !ok {
			return nil, ErrMalformed
		}
		p.Header = hdr
		p.TotalDataSize = int32(uint32(total))
	}

	return p, nil
}

// FramePartAck is the ack datagram sent back to a frame-part's source
// address (§6): {frame_index, data_offset} where data_offset is the
// assembler's next-expected offset.
type FramePartAck struct {
	FrameIndex int32
	DataOffset int32
}

const (
	fieldAckFrameIndex uint8 = iota + 1
	fieldAckDataOffset
)

// EncodeFramePartAck encodes an ack.
func EncodeFramePartAck(a *FramePartAck) []byte {
	var w Writer
	w.Uint(fieldAckFrameIndex, uint64(uint32(a.FrameIndex)))
	w.Uint(fieldAckDataOffset, uint64(uint32(a.DataOffset)))
	return w.Encode()
}

// DecodeFramePartAck decodes an ack datagram.
func DecodeFramePartAck(buf []byte) (*FramePartAck, error) {
	r, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	fi, ok := r.Uint(fieldAckFrameIndex)
	if !ok {
		return nil, ErrMalformed
	}
	off, ok := r.Uint(fieldAckDataOffset)
	if !ok {
		return nil, ErrMalformed
	}
	return &FramePartAck{FrameIndex: int32(uint32(fi)), DataOffset: int32(uint32(off))}, nil
}
