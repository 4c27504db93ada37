package txn

// Mode is the declared intent of a transaction.
type Mode uint8

const (
	ModeReadWrite Mode = iota
	ModeReadOnly
)

func (m Mode) String() string {
	switch m {
	case ModeReadWrite:
		return "read_write"
	case ModeReadOnly:
		return "read_only"
	default:
		return "unknown"
	}
}

// Options configure a transaction at begin time.
//
// ModeReadOnly is advisory: a read-only transaction may still stage and
// commit writes. Callers that want enforcement check Options().ReadOnly().
type Options struct {
	Mode Mode
}

// ReadWrite returns options for a transaction that intends to write.
func ReadWrite() Options { return Options{Mode: ModeReadWrite} }

// ReadOnly returns options for a transaction that intends only to read.
func ReadOnly() Options { return Options{Mode: ModeReadOnly} }

// ReadOnly reports whether the transaction was begun with read-only intent.
func (o Options) ReadOnly() bool { return o.Mode == ModeReadOnly }
