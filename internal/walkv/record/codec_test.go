package record_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/julianstephens/walkv/internal/walkv/kv"
	"github.com/julianstephens/walkv/internal/walkv/record"
)

func TestEncodePutLayout(t *testing.T) {
	frame, err := record.Encode(record.Put([]byte("k1"), []byte("value")))
	assert.NoError(t, err)

	assert.Equal(t, record.HeaderSize+2+5, len(frame))
	assert.Equal(t, byte(1), frame[0])
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(frame[1:5]))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(frame[5:9]))
	assert.Equal(t, "k1", string(frame[9:11]))
	assert.Equal(t, "value", string(frame[11:]))
}

func TestEncodeDeleteLayout(t *testing.T) {
	frame, err := record.Encode(record.Delete([]byte("gone")))
	assert.NoError(t, err)

	assert.Equal(t, record.HeaderSize+4, len(frame))
	assert.Equal(t, byte(2), frame[0])
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(frame[1:5]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(frame[5:9]))
	assert.Equal(t, "gone", string(frame[9:]))
}

func TestEncodeRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		rec   record.Record
		field string
	}{
		{"UnknownOpcode", record.Record{Op: kv.OpKind(9), Key: []byte("k")}, "opcode"},
		{"ZeroOpcode", record.Record{Key: []byte("k")}, "opcode"},
		{"DeleteWithValue", record.Record{Op: kv.OpDelete, Key: []byte("k"), Value: []byte("v")}, "value_len"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := record.Encode(tc.rec)
			assert.IsError(t, err, record.ErrCodecInvalid)
			ce, ok := record.AsCodecError(err)
			assert.True(t, ok)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestDecodeSingleFrame(t *testing.T) {
	testCases := []struct {
		name string
		rec  record.Record
	}{
		{"Put", record.Put([]byte("users:1"), []byte(`{"name":"Alice"}`))},
		{"PutEmptyValue", record.Put([]byte("k"), []byte{})},
		{"PutEmptyKey", record.Put([]byte{}, []byte("v"))},
		{"Delete", record.Delete([]byte("k"))},
		{"BinaryKey", record.Put([]byte{0x00, 0xff, 0x01}, []byte{0xfe, 0x00})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := record.Encode(tc.rec)
			assert.NoError(t, err)

			got, err := record.Decode(frame)
			assert.NoError(t, err)
			assert.Equal(t, tc.rec.Op, got.Op)
			assert.True(t, bytes.Equal(tc.rec.Key, got.Key))
			assert.True(t, bytes.Equal(tc.rec.Value, got.Value))
		})
	}
}

func TestDecodeShortFrame(t *testing.T) {
	frame, err := record.Encode(record.Put([]byte("key"), []byte("value")))
	assert.NoError(t, err)

	_, err = record.Decode(frame[:5])
	assert.IsError(t, err, record.ErrCodecTruncated)

	_, err = record.Decode(frame[:len(frame)-1])
	assert.IsError(t, err, record.ErrCodecTruncated)
	ce, _ := record.AsCodecError(err)
	assert.Equal(t, "value", ce.Field)

	_, err = record.Decode(frame[:record.HeaderSize+1])
	ce, _ = record.AsCodecError(err)
	assert.Equal(t, "key", ce.Field)
}

func TestDecodeTrailingBytes(t *testing.T) {
	frame, err := record.Encode(record.Delete([]byte("key")))
	assert.NoError(t, err)

	_, err = record.Decode(append(frame, 0x01))
	assert.IsError(t, err, record.ErrCodecCorrupt)
	assert.True(t, record.IsCorruption(err))
}

func TestDecodeHeaderUnknownOpcode(t *testing.T) {
	hdr := make([]byte, record.HeaderSize)
	hdr[0] = 7

	_, err := record.DecodeHeader(hdr)
	assert.IsError(t, err, record.ErrCodecCorrupt)
}

func TestDeleteIgnoresDeclaredValueLen(t *testing.T) {
	// A delete frame is key-only even if value_len is non-zero on disk.
	frame := make([]byte, record.HeaderSize+1)
	frame[0] = byte(kv.OpDelete)
	binary.LittleEndian.PutUint32(frame[1:5], 1)
	binary.LittleEndian.PutUint32(frame[5:9], 3)
	frame[9] = 'k'

	rec, err := record.Decode(frame)
	assert.NoError(t, err)
	assert.Equal(t, kv.OpDelete, rec.Op)
	assert.Equal(t, "k", string(rec.Key))
	assert.Equal(t, 0, len(rec.Value))
}

func TestEncodedSize(t *testing.T) {
	put := record.Put([]byte("abc"), []byte("defg"))
	del := record.Delete([]byte("abc"))

	assert.Equal(t, int64(record.HeaderSize+7), put.EncodedSize())
	assert.Equal(t, int64(record.HeaderSize+3), del.EncodedSize())
}

func TestFromOp(t *testing.T) {
	rec := record.FromOp(kv.Delete([]byte("k")))
	assert.Equal(t, kv.OpDelete, rec.Op)
	assert.Zero(t, rec.Value)

	rec = record.FromOp(kv.Put([]byte("k"), []byte("v")))
	assert.Equal(t, kv.OpPut, rec.Op)
	assert.Equal(t, "v", string(rec.Value))
}
