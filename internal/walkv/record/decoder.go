package record

import (
	"bytes"
	"errors"
	"io"

	"github.com/julianstephens/walkv/internal/walkv/errorutil"
	"github.com/julianstephens/walkv/internal/walkv/kv"
)

// Status is the outcome of one decode attempt.
type Status uint8

const (
	// StatusDecoded means a whole record was read.
	StatusDecoded Status = iota
	// StatusEndOfStream means the stream ended exactly on a record boundary.
	StatusEndOfStream
	// StatusTruncated means the stream ended inside a frame.
	StatusTruncated
	// StatusCorrupt means a header was read but its opcode is unknown.
	StatusCorrupt
	// StatusFailed means the underlying reader returned an error other than EOF.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDecoded:
		return "decoded"
	case StatusEndOfStream:
		return "end_of_stream"
	case StatusTruncated:
		return "truncated"
	case StatusCorrupt:
		return "corrupt"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// runChunk bounds up-front allocation for a declared key/value length.
// Larger runs grow with the bytes actually present, so a garbage length in a
// torn tail cannot force a huge allocation.
const runChunk = 64 << 10

// Decoder reads frames sequentially from a stream positioned at a record boundary.
type Decoder struct {
	r      io.Reader
	offset int64
	valid  int64
	hdr    [HeaderSize]byte
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next attempts to decode the next record.
//
// The returned error is nil for StatusDecoded and StatusEndOfStream. For
// StatusTruncated and StatusCorrupt it is a *CodecError describing the frame;
// for StatusFailed it is the reader's error. After any status other than
// StatusDecoded the decoder should not be used again.
func (d *Decoder) Next() (Record, Status, error) {
	start := d.offset

	n, err := io.ReadFull(d.r, d.hdr[:])
	d.offset += int64(n)
	if err != nil {
		switch {
		case errors.Is(err, io.EOF) && n == 0:
			return Record{}, StatusEndOfStream, nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			return Record{}, StatusTruncated, &CodecError{
				Coordinates: errorutil.At(start),
				Kind:        CodecTruncated,
				Field:       "header",
				Want:        HeaderSize,
				Have:        n,
				RawOp:       d.hdr[0],
				Err:         ErrCodecTruncated,
			}
		default:
			return Record{}, StatusFailed, err
		}
	}

	h, err := DecodeHeader(d.hdr[:])
	if err != nil {
		if ce, ok := AsCodecError(err); ok {
			ce.Coordinates = errorutil.At(start)
		}
		return Record{}, StatusCorrupt, err
	}

	key, err := d.readRun(h.KeyLen)
	if err != nil {
		st, serr := d.shortRun(err, start, "key", h, len(key))
		return Record{}, st, serr
	}

	rec := Record{Op: h.Op, Key: key}
	if h.Op == kv.OpPut {
		value, err := d.readRun(h.ValueLen)
		if err != nil {
			st, serr := d.shortRun(err, start, "value", h, len(value))
			return Record{}, st, serr
		}
		rec.Value = value
	}

	d.valid = d.offset
	return rec, StatusDecoded, nil
}

func (d *Decoder) shortRun(err error, start int64, field string, h Header, have int) (Status, error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		want := int(h.KeyLen)
		if field == "value" {
			want = int(h.ValueLen)
		}
		return StatusTruncated, &CodecError{
			Coordinates: errorutil.At(start),
			Kind:        CodecTruncated,
			Field:       field,
			Want:        want,
			Have:        have,
			RawOp:       byte(h.Op),
			Err:         ErrCodecTruncated,
		}
	}
	return StatusFailed, err
}

func (d *Decoder) readRun(n uint32) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if n <= runChunk {
		buf := make([]byte, n)
		read, err := io.ReadFull(d.r, buf)
		d.offset += int64(read)
		return buf[:read], err
	}

	var buf bytes.Buffer
	buf.Grow(runChunk)
	read, err := io.CopyN(&buf, d.r, int64(n))
	d.offset += read
	return buf.Bytes(), err
}

// Offset returns the number of bytes consumed from the stream so far.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// ValidOffset returns the offset just past the last fully decoded record.
func (d *Decoder) ValidOffset() int64 {
	return d.valid
}
