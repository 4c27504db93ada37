package errorutil

import (
	"fmt"
	"strings"
)

// Coordinates holds positional information (byte offset, operation index)
// used in error formatting across the walkv packages.
type Coordinates struct {
	// Offset is the byte offset within the WAL file where the error occurred.
	Offset *int64

	// OpIndex is the position of the operation inside a transaction's staged list.
	OpIndex *int
}

// At returns coordinates pointing at a byte offset.
func At(offset int64) *Coordinates {
	return &Coordinates{Offset: &offset}
}

// AtOp returns coordinates pointing at a staged operation.
func AtOp(index int) *Coordinates {
	return &Coordinates{OpIndex: &index}
}

// FormatCoordinates returns a formatted string representation of the error coordinates.
// It includes only non-nil values in the format: "at=X op=Y".
// Returns an empty string if all coordinates are nil.
func (c *Coordinates) FormatCoordinates() string {
	if c == nil {
		return ""
	}

	var parts []string
	if c.Offset != nil {
		parts = append(parts, fmt.Sprintf("at=%d", *c.Offset))
	}
	if c.OpIndex != nil {
		parts = append(parts, fmt.Sprintf("op=%d", *c.OpIndex))
	}
	return strings.Join(parts, " ")
}

// String implements the Stringer interface for Coordinates.
func (c *Coordinates) String() string {
	return c.FormatCoordinates()
}
