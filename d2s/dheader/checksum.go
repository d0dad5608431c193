package dheader

import (
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

// Checksum folds bs into the file checksum. The stored checksum field counts as zero.
func Checksum(bs []byte) uint32 {
	var state uint32
	for i, b := range bs {
		if i >= OffsetChecksum && i < OffsetChecksum+4 {
			b = 0
		}
		value := uint32(b)
		if state&0x80000000 != 0 {
			value++
		}
		state = value + state<<1
	}
	return state
}

// Verify reports whether the checksum stored in a character file matches its content.
func Verify(bs []byte) (bool, error) {
	reader := lbits.NewReader(bs)
	if err := reader.SeekByte(OffsetChecksum); err != nil {
		err := errors.Wrap(err, "Verify error")
		return false, err
	}
	stored, err := reader.ReadUInt32()
	if err != nil {
		err := errors.Wrap(err, "Verify error")
		return false, err
	}
	return stored == Checksum(bs), nil
}

// FixHeader writes the file size and checksum of everything written so far. It must run last.
func FixHeader(writer *lbits.Writer) {
	size := writer.Len()
	writer.
		SeekByte(OffsetFileSize).
		WriteUInt32(uint32(size)).
		WriteUInt32(0)
	checksum := Checksum(writer.Bytes())
	writer.
		SeekByte(OffsetChecksum).
		WriteUInt32(checksum).
		SeekByte(size)
}
