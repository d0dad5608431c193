package lbits

import (
	"github.com/thanhnguyen2187/d2-savior/ds"
)

func NewWriter() *Writer {
	return &Writer{
		data: make([]byte, GrowStep),
	}
}

func (w *Writer) grow(bit int) {
	for bit>>3 >= len(w.data) {
		w.data = append(w.data, make([]byte, GrowStep)...)
	}
}

func (w *Writer) touch() {
	if w.pos > w.length {
		w.length = w.pos
	}
}

func (w *Writer) Position() int {
	return w.pos
}

// Len returns the number of bytes covered by the furthest bit ever written or sought to.
func (w *Writer) Len() int {
	return (w.length + 7) / 8
}

func (w *Writer) WriteBit(bit uint8) *Writer {
	w.grow(w.pos)
	mask := byte(1) << (w.pos & 7)
	if bit&1 == 1 {
		w.data[w.pos>>3] |= mask
	} else {
		w.data[w.pos>>3] &^= mask
	}
	w.pos++
	w.touch()
	return w
}

func (w *Writer) WriteBits(value uint64, n int) *Writer {
	for i := 0; i < n && i < MaxBits; i++ {
		w.WriteBit(uint8(value >> i))
	}
	return w
}

func (w *Writer) WriteBool(b bool) *Writer {
	if b {
		return w.WriteBit(1)
	}
	return w.WriteBit(0)
}

func (w *Writer) WriteUInt8(value uint8) *Writer {
	return w.WriteBits(uint64(value), 8)
}

func (w *Writer) WriteUInt16(value uint16) *Writer {
	return w.WriteBits(uint64(value), 16)
}

func (w *Writer) WriteUInt32(value uint32) *Writer {
	return w.WriteBits(uint64(value), 32)
}

func (w *Writer) WriteBytes(bs []byte) *Writer {
	for _, b := range bs {
		w.WriteUInt8(b)
	}
	return w
}

// WriteString writes s into a fixed-width field of n bytes, cutting or zero padding it.
func (w *Writer) WriteString(s string, n int) *Writer {
	bs := make([]byte, n)
	copy(bs, s)
	return w.WriteBytes(bs)
}

func (w *Writer) WriteNullTerminatedString(s string) *Writer {
	w.WriteBytes([]byte(s))
	return w.WriteUInt8(0)
}

func (w *Writer) Seek(bit int) *Writer {
	if bit < 0 {
		bit = 0
	}
	w.pos = bit
	if w.pos > 0 {
		w.grow(w.pos - 1)
	}
	w.touch()
	return w
}

func (w *Writer) SeekByte(n int) *Writer {
	return w.Seek(n * 8)
}

func (w *Writer) Skip(bits int) *Writer {
	return w.Seek(w.pos + bits)
}

func (w *Writer) Align() *Writer {
	return w.Seek(ds.NearestDivisibleByM(w.pos, 8))
}

// PeekByte returns the byte at index i without moving the cursor.
func (w *Writer) PeekByte(i int) byte {
	if i < 0 || i >= w.Len() {
		return 0
	}
	return w.data[i]
}

func (w *Writer) Bytes() []byte {
	bs := make([]byte, w.Len())
	copy(bs, w.data)
	return bs
}
