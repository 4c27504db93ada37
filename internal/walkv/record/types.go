package record

import (
	"math"

	"github.com/julianstephens/walkv/internal/walkv/kv"
)

const (
	OpcodeSize   = 1                         // Length of the opcode field
	LengthSize   = 4                         // Length of each little-endian length field
	HeaderSize   = OpcodeSize + 2*LengthSize // opcode + key_len + value_len
	MaxKeySize   = math.MaxUint32            // key_len is a u32
	MaxValueSize = math.MaxUint32            // value_len is a u32
)

// Record is a single mutation as it appears in the log.
// Value is empty for a delete.
type Record struct {
	Op    kv.OpKind `json:"op"`
	Key   []byte    `json:"key"`
	Value []byte    `json:"value"`
}

// Put returns a put record.
func Put(key, value []byte) Record {
	return Record{Op: kv.OpPut, Key: key, Value: value}
}

// Delete returns a delete record.
func Delete(key []byte) Record {
	return Record{Op: kv.OpDelete, Key: key}
}

// FromOp converts a staged operation to its log record.
func FromOp(op kv.Op) Record {
	if op.Kind == kv.OpDelete {
		return Delete(op.Key)
	}
	return Record{Op: op.Kind, Key: op.Key, Value: op.Value}
}

// EncodedSize returns the number of bytes the record occupies on disk.
func (r Record) EncodedSize() int64 {
	size := int64(HeaderSize) + int64(len(r.Key))
	if r.Op == kv.OpPut {
		size += int64(len(r.Value))
	}
	return size
}
