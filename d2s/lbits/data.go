// Package lbits is a bit cursor over a byte buffer.
//
// Multi-bit fields are composed one bit at a time, least significant bit first, which is how
// every field of the save formats is packed. Byte-sized reads are just 8-bit reads, so they work
// at unaligned positions as well.
package lbits

import (
	"fmt"
)

type (
	Reader struct {
		data []byte
		pos  int
	}
	Writer struct {
		data []byte
		pos  int
		// length is the furthest bit ever reached, independent of pos
		length int
	}
	Instruction struct {
		Key          string
		ReadFunction ReadFunction
	}
	ReadFunction func() (any, error)

	ErrOutOfBounds struct {
		Offset int
		Want   int
		Len    int
	}
)

const (
	// GrowStep is the number of bytes a Writer adds whenever it runs out of room.
	GrowStep = 8192
	MaxBits  = 64
)

func (r ErrOutOfBounds) Error() string {
	return fmt.Sprintf(
		"reading %d bit(s) at bit %d is out of bounds: buffer has %d bit(s)",
		r.Want, r.Offset, r.Len,
	)
}
