package record

import (
	"errors"
	"fmt"

	"github.com/julianstephens/walkv/internal/walkv/errorutil"
)

var (
	ErrCodecTruncated = errors.New("record: truncated frame")
	ErrCodecCorrupt   = errors.New("record: corrupt frame")
	ErrCodecInvalid   = errors.New("record: invalid record")
)

type CodecErrorKind uint8

const (
	CodecTruncated CodecErrorKind = iota
	CodecCorrupt
	CodecInvalid
)

func (k CodecErrorKind) String() string {
	switch k {
	case CodecTruncated:
		return "truncated"
	case CodecCorrupt:
		return "corrupt"
	case CodecInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// CodecError describes a frame that could not be encoded or fully decoded.
type CodecError struct {
	*errorutil.Coordinates
	Kind  CodecErrorKind
	Field string // "opcode", "key_len", "value_len", "key", "value"
	Want  int
	Have  int
	// RawOp is the opcode byte read from the stream (if available).
	RawOp byte
	Err   error
}

func (e *CodecError) Error() string {
	coords := ""
	if e.Coordinates != nil {
		coords = " " + e.FormatCoordinates()
	}
	return fmt.Sprintf("record: codec %s field=%s%s want=%d have=%d op=0x%02x: %v",
		e.Kind.String(), e.Field, coords, e.Want, e.Have, e.RawOp, e.Err,
	)
}

func (e *CodecError) Unwrap() error { return e.Err }

func (e *CodecError) Is(target error) bool {
	switch target {
	case ErrCodecTruncated:
		return e.Kind == CodecTruncated
	case ErrCodecCorrupt:
		return e.Kind == CodecCorrupt
	case ErrCodecInvalid:
		return e.Kind == CodecInvalid
	default:
		return false
	}
}

// AsCodecError unwraps err into a *CodecError if it is one.
func AsCodecError(err error) (*CodecError, bool) {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsTruncation reports whether err describes a short frame.
func IsTruncation(err error) bool {
	return errors.Is(err, ErrCodecTruncated)
}

// IsCorruption reports whether err describes an undecodable frame.
func IsCorruption(err error) bool {
	return errors.Is(err, ErrCodecCorrupt)
}
