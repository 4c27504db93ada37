package record

import (
	"encoding/binary"
	"fmt"

	"github.com/julianstephens/walkv/internal/walkv/errorutil"
	"github.com/julianstephens/walkv/internal/walkv/kv"
)

// Validate checks that rec can be represented as a frame.
func Validate(rec Record) error {
	if !rec.Op.Valid() {
		return &CodecError{
			Kind:  CodecInvalid,
			Field: "opcode",
			RawOp: byte(rec.Op),
			Err:   fmt.Errorf("%w: unknown opcode", ErrCodecInvalid),
		}
	}
	if uint64(len(rec.Key)) > MaxKeySize {
		return &CodecError{
			Kind:  CodecInvalid,
			Field: "key_len",
			Have:  len(rec.Key),
			Err:   ErrCodecInvalid,
		}
	}
	switch rec.Op {
	case kv.OpPut:
		if uint64(len(rec.Value)) > MaxValueSize {
			return &CodecError{
				Kind:  CodecInvalid,
				Field: "value_len",
				Have:  len(rec.Value),
				Err:   ErrCodecInvalid,
			}
		}
	case kv.OpDelete:
		if len(rec.Value) != 0 {
			return &CodecError{
				Kind:  CodecInvalid,
				Field: "value_len",
				Have:  len(rec.Value),
				Err:   fmt.Errorf("%w: delete carries a value", ErrCodecInvalid),
			}
		}
	}
	return nil
}

// Encode encodes a record as a frame.
// Format: [opcode (1)][key_len (4)][value_len (4)][key][value]
// The value run is omitted for deletes and value_len is written as 0.
func Encode(rec Record) ([]byte, error) {
	if err := Validate(rec); err != nil {
		return nil, err
	}
	return AppendFrame(make([]byte, 0, rec.EncodedSize()), rec), nil
}

// AppendFrame appends the frame for an already validated record to dst.
func AppendFrame(dst []byte, rec Record) []byte {
	var hdr [HeaderSize]byte
	hdr[0] = byte(rec.Op)
	binary.LittleEndian.PutUint32(hdr[OpcodeSize:OpcodeSize+LengthSize], uint32(len(rec.Key))) //nolint:gosec
	if rec.Op == kv.OpPut {
		binary.LittleEndian.PutUint32(hdr[OpcodeSize+LengthSize:HeaderSize], uint32(len(rec.Value))) //nolint:gosec
	}

	dst = append(dst, hdr[:]...)
	dst = append(dst, rec.Key...)
	if rec.Op == kv.OpPut {
		dst = append(dst, rec.Value...)
	}
	return dst
}

// Header is the fixed-size prefix of a frame.
type Header struct {
	Op       kv.OpKind
	KeyLen   uint32
	ValueLen uint32
}

// DecodeHeader parses the fixed-size frame header from buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &CodecError{
			Kind:  CodecTruncated,
			Field: "header",
			Want:  HeaderSize,
			Have:  len(buf),
			Err:   ErrCodecTruncated,
		}
	}
	h := Header{
		Op:       kv.OpKind(buf[0]),
		KeyLen:   binary.LittleEndian.Uint32(buf[OpcodeSize : OpcodeSize+LengthSize]),
		ValueLen: binary.LittleEndian.Uint32(buf[OpcodeSize+LengthSize : HeaderSize]),
	}
	if !h.Op.Valid() {
		return h, &CodecError{
			Kind:  CodecCorrupt,
			Field: "opcode",
			RawOp: buf[0],
			Err:   fmt.Errorf("%w: unknown opcode", ErrCodecCorrupt),
		}
	}
	return h, nil
}

// bodyLen is the number of bytes that follow the header.
// A delete carries no value run whatever value_len says.
func (h Header) bodyLen() int64 {
	n := int64(h.KeyLen)
	if h.Op == kv.OpPut {
		n += int64(h.ValueLen)
	}
	return n
}

// Decode decodes exactly one frame from data.
// Trailing bytes after the frame are reported as corruption.
func Decode(data []byte) (Record, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return Record{}, err
	}

	want := int64(HeaderSize) + h.bodyLen()
	if int64(len(data)) < want {
		field := "key"
		if int64(len(data)) >= int64(HeaderSize)+int64(h.KeyLen) {
			field = "value"
		}
		return Record{}, &CodecError{
			Kind:  CodecTruncated,
			Field: field,
			Want:  int(want),
			Have:  len(data),
			RawOp: byte(h.Op),
			Err:   ErrCodecTruncated,
		}
	}
	if int64(len(data)) != want {
		return Record{}, &CodecError{
			Coordinates: errorutil.At(want),
			Kind:        CodecCorrupt,
			Field:       "frame",
			Want:        int(want),
			Have:        len(data),
			RawOp:       byte(h.Op),
			Err:         fmt.Errorf("%w: trailing bytes", ErrCodecCorrupt),
		}
	}

	keyEnd := HeaderSize + int(h.KeyLen)
	rec := Record{Op: h.Op, Key: data[HeaderSize:keyEnd]}
	if h.Op == kv.OpPut {
		rec.Value = data[keyEnd:want]
	}
	return rec, nil
}
