package record_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/julianstephens/walkv/internal/walkv/kv"
	"github.com/julianstephens/walkv/internal/walkv/record"
)

func encodeAll(t *testing.T, recs ...record.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, rec := range recs {
		frame, err := record.Encode(rec)
		assert.NoError(t, err)
		buf.Write(frame)
	}
	return buf.Bytes()
}

func TestDecoderSequence(t *testing.T) {
	recs := []record.Record{
		record.Put([]byte("a"), []byte("1")),
		record.Put([]byte("b"), []byte("2")),
		record.Delete([]byte("a")),
		record.Put([]byte("c"), []byte{}),
	}
	data := encodeAll(t, recs...)

	dec := record.NewDecoder(bytes.NewReader(data))
	for i, want := range recs {
		got, status, err := dec.Next()
		assert.NoError(t, err, "record %d", i)
		assert.Equal(t, record.StatusDecoded, status)
		assert.Equal(t, want.Op, got.Op)
		assert.Equal(t, string(want.Key), string(got.Key))
		assert.Equal(t, string(want.Value), string(got.Value))
	}

	_, status, err := dec.Next()
	assert.NoError(t, err)
	assert.Equal(t, record.StatusEndOfStream, status)
	assert.Equal(t, int64(len(data)), dec.Offset())
	assert.Equal(t, int64(len(data)), dec.ValidOffset())
}

func TestDecoderEmptyStream(t *testing.T) {
	dec := record.NewDecoder(bytes.NewReader(nil))
	_, status, err := dec.Next()
	assert.NoError(t, err)
	assert.Equal(t, record.StatusEndOfStream, status)
	assert.Equal(t, int64(0), dec.ValidOffset())
}

func TestDecoderTruncatedTail(t *testing.T) {
	good := encodeAll(t, record.Put([]byte("a"), []byte("1")))
	torn := encodeAll(t, record.Put([]byte("key"), []byte("value")))

	testCases := []struct {
		name  string
		cut   int
		field string
	}{
		{"PartialHeader", 3, "header"},
		{"HeaderOnly", record.HeaderSize, "key"},
		{"PartialKey", record.HeaderSize + 2, "key"},
		{"PartialValue", len(torn) - 1, "value"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := append(append([]byte{}, good...), torn[:tc.cut]...)
			dec := record.NewDecoder(bytes.NewReader(data))

			_, status, err := dec.Next()
			assert.NoError(t, err)
			assert.Equal(t, record.StatusDecoded, status)

			_, status, err = dec.Next()
			assert.Equal(t, record.StatusTruncated, status)
			assert.True(t, record.IsTruncation(err))
			ce, ok := record.AsCodecError(err)
			assert.True(t, ok)
			assert.Equal(t, tc.field, ce.Field)
			assert.Equal(t, int64(len(good)), *ce.Offset)
			assert.Equal(t, int64(len(good)), dec.ValidOffset())
		})
	}
}

func TestDecoderUnknownOpcode(t *testing.T) {
	data := encodeAll(t, record.Put([]byte("a"), []byte("1")))
	bad := make([]byte, record.HeaderSize)
	bad[0] = 0x09
	data = append(data, bad...)

	dec := record.NewDecoder(bytes.NewReader(data))
	_, _, err := dec.Next()
	assert.NoError(t, err)

	_, status, err := dec.Next()
	assert.Equal(t, record.StatusCorrupt, status)
	assert.True(t, record.IsCorruption(err))
	ce, _ := record.AsCodecError(err)
	assert.Equal(t, byte(0x09), ce.RawOp)
}

func TestDecoderHugeDeclaredLength(t *testing.T) {
	// A garbage length must not be trusted for allocation; the decoder reports truncation.
	hdr := make([]byte, record.HeaderSize)
	hdr[0] = byte(kv.OpPut)
	binary.LittleEndian.PutUint32(hdr[1:5], 0xFFFFFFF0)
	data := append(hdr, []byte("short")...)

	dec := record.NewDecoder(bytes.NewReader(data))
	_, status, err := dec.Next()
	assert.Equal(t, record.StatusTruncated, status)
	assert.IsError(t, err, record.ErrCodecTruncated)
	assert.Equal(t, int64(len(data)), dec.Offset())
	assert.Equal(t, int64(0), dec.ValidOffset())
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestDecoderReaderFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	dec := record.NewDecoder(failingReader{err: boom})

	_, status, err := dec.Next()
	assert.Equal(t, record.StatusFailed, status)
	assert.IsError(t, err, boom)
}

func TestDecoderReaderFailureInsideFrame(t *testing.T) {
	boom := errors.New("disk on fire")
	frame := encodeAll(t, record.Put([]byte("key"), []byte("value")))

	testCases := []struct {
		name string
		cut  int
	}{
		{"Key", record.HeaderSize},
		{"Value", record.HeaderSize + 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := io.MultiReader(bytes.NewReader(frame[:tc.cut]), failingReader{err: boom})
			dec := record.NewDecoder(r)

			rec, status, err := dec.Next()
			assert.Equal(t, record.StatusFailed, status)
			assert.IsError(t, err, boom)
			assert.Equal(t, record.Record{}, rec)
			assert.Equal(t, int64(0), dec.ValidOffset())
		})
	}
}

func TestDecoderLargeValue(t *testing.T) {
	value := bytes.Repeat([]byte{0xab}, 200<<10)
	data := encodeAll(t, record.Put([]byte("big"), value))

	dec := record.NewDecoder(io.MultiReader(bytes.NewReader(data[:100]), bytes.NewReader(data[100:])))
	rec, status, err := dec.Next()
	assert.NoError(t, err)
	assert.Equal(t, record.StatusDecoded, status)
	assert.True(t, bytes.Equal(value, rec.Value))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "truncated", record.StatusTruncated.String())
	assert.Equal(t, "end_of_stream", record.StatusEndOfStream.String())
	assert.Equal(t, "unknown", record.Status(99).String())
}
