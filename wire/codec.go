// Package wire implements the tagged, length-delimited record encoding
// shared by the three structured wire formats (§4.1): beacons, commands
// and frame-parts. Each record is a flat sequence of (field-tag, value)
// pairs, the same "pack an identifier and a size into a small fixed header"
// idiom the teacher's RecordHdr (record.go's DecodeRecordHdr) uses for GSF
// records, generalized into a reusable reader/writer pair since this
// module's payloads are its own design rather than the original SDK's
// generated protobuf messages.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrMalformed is returned by every Decode function in this package (and
// its siblings) on any parse failure.
var ErrMalformed = errors.New("wire: malformed packet")

// kind identifies how a field's value is encoded, analogous to a protobuf
// wire type but kept deliberately small since this module has a fixed,
// known set of message shapes.
type kind byte

const (
	kindVarint kind = iota + 1
	kindFixed32
	kindFixed64
	kindBytes
)

// Writer builds one tagged record. Zero value is ready to use.
type Writer struct {
	buf bytes.Buffer
}

func (w *Writer) writeTag(field uint8, k kind) {
	w.buf.WriteByte(field)
	w.buf.WriteByte(byte(k))
}

// Uint writes an unsigned integer field as a little-endian varint.
func (w *Writer) Uint(field uint8, v uint64) {
	w.writeTag(field, kindVarint)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

// Fixed32 writes a 4-byte field verbatim (used for float32 via
// math.Float32bits at the call site).
func (w *Writer) Fixed32(field uint8, v uint32) {
	w.writeTag(field, kindFixed32)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf.Write(tmp[:])
}

// Fixed64 writes an 8-byte field verbatim.
func (w *Writer) Fixed64(field uint8, v uint64) {
	w.writeTag(field, kindFixed64)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf.Write(tmp[:])
}

// Bytes writes a length-prefixed byte field.
func (w *Writer) Bytes(field uint8, v []byte) {
	w.writeTag(field, kindBytes)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(v)))
	w.buf.Write(tmp[:n])
	w.buf.Write(v)
}

// String writes a length-prefixed string field.
func (w *Writer) String(field uint8, v string) {
	w.Bytes(field, []byte(v))
}

// Bool writes a boolean field as a one-byte varint.
func (w *Writer) Bool(field uint8, v bool) {
	if v {
		w.Uint(field, 1)
	} else {
		w.Uint(field, 0)
	}
}

// Encode returns the accumulated encoded record.
func (w *Writer) Encode() []byte {
	return append([]byte(nil), w.buf.Bytes()...)
}

// field is one decoded (tag, value) pair.
type field struct {
	num  uint8
	k    kind
	u    uint64
	blob []byte
}

// Reader walks the tagged fields of one decoded record.
type Reader struct {
	fields map[uint8]field
}

// Decode parses buf into a Reader, or returns ErrMalformed if buf does not
// contain a well-formed sequence of tagged fields.
func Decode(buf []byte) (*Reader, error) {
	r := bytes.NewReader(buf)
	fields := make(map[uint8]field)

	for r.Len() > 0 {
		var tag [2]byte
		if _, err := io.ReadFull(r, tag[:]); err != nil {
			return nil, ErrMalformed
		}
		f := field{num: tag[0], k: kind(tag[1])}

		switch f.k {
		case kindVarint:
			v, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, ErrMalformed
			}
			f.u = v
		case kindFixed32:
			var tmp [4]byte
			if _, err := io.ReadFull(r, tmp[:]); err != nil {
				return nil, ErrMalformed
			}
			f.u = uint64(binary.LittleEndian.Uint32(tmp[:]))
		case kindFixed64:
			var tmp [8]byte
			if _, err := io.ReadFull(r, tmp[:]); err != nil {
				return nil, ErrMalformed
			}
			f.u = binary.LittleEndian.Uint64(tmp[:])
		case kindBytes:
			n, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, ErrMalformed
			}
			blob := make([]byte, n)
			if _, err := io.ReadFull(r, blob); err != nil {
				return nil, ErrMalformed
			}
			f.blob = blob
		default:
			return nil, ErrMalformed
		}

		fields[f.num] = f
	}

	return &Reader{fields: fields}, nil
}

// Has reports whether field num was present in the decoded record.
func (r *Reader) Has(num uint8) bool {
	_, ok := r.fields[num]
	return ok
}

// Uint returns field num's value as an unsigned integer.
func (r *Reader) Uint(num uint8) (uint64, bool) {
	f, ok := r.fields[num]
	if !ok {
		return 0, false
	}
	return f.u, true
}

// Bytes returns field num's raw bytes.
func (r *Reader) Bytes(num uint8) ([]byte, bool) {
	f, ok := r.fields[num]
	if !ok || f.k != kindBytes {
		return nil, false
	}
	return f.blob, true
}

// String returns field num's bytes interpreted as a string.
func (r *Reader) String(num uint8) (string, bool) {
	b, ok := r.Bytes(num)
	if !ok {
		return "", false
	}
	return string(b), true
}

// Bool returns field num's value as a boolean.
func (r *Reader) Bool(num uint8) (bool, bool) {
	v, ok := r.Uint(num)
	return v != 0, ok
}
