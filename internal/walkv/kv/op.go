package kv

import "fmt"

// OpKind tags a mutation. The numeric values are the on-disk opcodes.
type OpKind uint8

const (
	OpPut OpKind = iota + 1
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", uint8(k))
	}
}

// Valid reports whether k is a known operation kind.
func (k OpKind) Valid() bool {
	return k == OpPut || k == OpDelete
}

type Op struct {
	Kind  OpKind
	Key   []byte
	Value []byte // nil for delete
}

// Put returns a put operation for key and value.
func Put(key, value []byte) Op {
	return Op{Kind: OpPut, Key: key, Value: value}
}

// Delete returns a delete operation for key.
func Delete(key []byte) Op {
	return Op{Kind: OpDelete, Key: key}
}
