package lbits

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/ds"
)

func NewReader(bs []byte) *Reader {
	return &Reader{
		data: bs,
		pos:  0,
	}
}

// Len returns the size of the underlying buffer in bits.
func (r *Reader) Len() int {
	return len(r.data) * 8
}

func (r *Reader) Position() int {
	return r.pos
}

func (r *Reader) BytePosition() int {
	return r.pos / 8
}

func (r *Reader) Remaining() int {
	return r.Len() - r.pos
}

func (r *Reader) check(n int) error {
	if n < 0 || r.pos+n > r.Len() {
		return ErrOutOfBounds{
			Offset: r.pos,
			Want:   n,
			Len:    r.Len(),
		}
	}
	return nil
}

func (r *Reader) ReadBit() (uint8, error) {
	if err := r.check(1); err != nil {
		return 0, err
	}
	bit := (r.data[r.pos>>3] >> (r.pos & 7)) & 1
	r.pos++
	return bit, nil
}

func (r *Reader) ReadBits(n int) (uint64, error) {
	if n > MaxBits {
		err := errors.Errorf("ReadBits error: %d bits do not fit into uint64", n)
		return 0, err
	}
	if err := r.check(n); err != nil {
		return 0, err
	}
	value := uint64(0)
	for i := 0; i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		value |= uint64(bit) << i
	}
	return value, nil
}

func (r *Reader) ReadBool() (bool, error) {
	bit, err := r.ReadBit()
	return bit == 1, err
}

func (r *Reader) ReadUInt8() (uint8, error) {
	value, err := r.ReadBits(8)
	return uint8(value), err
}

func (r *Reader) ReadUInt16() (uint16, error) {
	value, err := r.ReadBits(16)
	return uint16(value), err
}

func (r *Reader) ReadUInt32() (uint32, error) {
	value, err := r.ReadBits(32)
	return uint32(value), err
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.check(n * 8); err != nil {
		return nil, err
	}
	bs := make([]byte, n)
	for i := range bs {
		b, err := r.ReadUInt8()
		if err != nil {
			return nil, err
		}
		bs[i] = b
	}
	return bs, nil
}

// ReadString reads a fixed-width field and drops the zero padding.
func (r *Reader) ReadString(n int) (string, error) {
	bs, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(bs), "\u0000"), nil
}

func (r *Reader) ReadNullTerminatedString() (string, error) {
	bs := make([]byte, 0)
	for {
		b, err := r.ReadUInt8()
		if err != nil {
			err := errors.Wrap(err, "ReadNullTerminatedString error")
			return "", err
		}
		if b == 0 {
			break
		}
		bs = append(bs, b)
	}
	return string(bs), nil
}

func (r *Reader) PeekBits(n int) (uint64, error) {
	pos := r.pos
	value, err := r.ReadBits(n)
	r.pos = pos
	return value, err
}

func (r *Reader) PeekBytes(n int) ([]byte, error) {
	pos := r.pos
	bs, err := r.ReadBytes(n)
	r.pos = pos
	return bs, err
}

func (r *Reader) Seek(bit int) error {
	if bit < 0 || bit > r.Len() {
		return ErrOutOfBounds{
			Offset: bit,
			Want:   0,
			Len:    r.Len(),
		}
	}
	r.pos = bit
	return nil
}

func (r *Reader) SeekByte(n int) error {
	return r.Seek(n * 8)
}

func (r *Reader) Skip(bits int) error {
	return r.Seek(r.pos + bits)
}

func (r *Reader) SkipBytes(n int) error {
	return r.Skip(n * 8)
}

func (r *Reader) Align() {
	r.pos = ds.NearestDivisibleByM(r.pos, 8)
}
