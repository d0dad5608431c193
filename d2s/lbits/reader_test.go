package lbits

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
)

func mustDecodeHex(t *testing.T, s string) []byte {
	bs, err := hex.DecodeString(s)
	require.NoError(t, err)
	return bs
}

func TestReader_ReadBit(t *testing.T) {
	reader := NewReader(mustDecodeHex(t, "4a4d100880"))
	require.NoError(t, reader.Seek(20))

	bit, err := reader.ReadBit()
	assert.NoError(t, err)
	assert.Equal(t, uint8(1), bit)
	assert.Equal(t, 21, reader.Position())
}

func TestReader_ReadUInt(t *testing.T) {
	reader := NewReader([]byte{0xff, 0x55, 0xaa, 0x55, 0xaa, 0x34, 0x12})

	b, err := reader.ReadUInt8()
	assert.NoError(t, err)
	assert.Equal(t, uint8(0xff), b)

	magic, err := reader.ReadUInt32()
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xaa55aa55), magic)

	short, err := reader.ReadUInt16()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), short)
	assert.Equal(t, 0, reader.Remaining())
}

func TestReader_ReadBits_LSBFirst(t *testing.T) {
	// 0b00111100 0b00000000: 9-bit id 0 is followed by the value 30 in 10 bits
	reader := NewReader([]byte{0x00, 0x3c, 0x08})

	id, err := reader.ReadBits(9)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	value, err := reader.ReadBits(10)
	assert.NoError(t, err)
	assert.Equal(t, uint64(30), value)
}

func TestReader_UnalignedBytes(t *testing.T) {
	writer := NewWriter()
	writer.WriteBits(0b101, 3)
	writer.WriteString("JM", 2)

	reader := NewReader(writer.Bytes())
	require.NoError(t, reader.Skip(3))
	s, err := reader.ReadString(2)
	assert.NoError(t, err)
	assert.Equal(t, "JM", s)
}

func TestReader_Strings(t *testing.T) {
	reader := NewReader([]byte{'W', 'o', 'o', '!', 'a', 'b', 0, 0, 'P', 'a', 'g', 'e', 0})

	woo, err := reader.ReadString(4)
	assert.NoError(t, err)
	assert.Equal(t, "Woo!", woo)

	padded, err := reader.ReadString(4)
	assert.NoError(t, err)
	assert.Equal(t, "ab", padded)

	page, err := reader.ReadNullTerminatedString()
	assert.NoError(t, err)
	assert.Equal(t, "Page", page)
}

func TestReader_Peek(t *testing.T) {
	reader := NewReader([]byte{'g', 'f', 1})

	bs, err := reader.PeekBytes(2)
	assert.NoError(t, err)
	assert.Equal(t, []byte("gf"), bs)
	assert.Equal(t, 0, reader.Position())

	bits, err := reader.PeekBits(3)
	assert.NoError(t, err)
	assert.Equal(t, uint64('g'&7), bits)
	assert.Equal(t, 0, reader.Position())
}

func TestReader_Align(t *testing.T) {
	reader := NewReader([]byte{0, 0, 0})
	reader.Align()
	assert.Equal(t, 0, reader.Position())
	require.NoError(t, reader.Skip(1))
	reader.Align()
	assert.Equal(t, 8, reader.Position())
	assert.Equal(t, 1, reader.BytePosition())
}

func TestReader_OutOfBounds(t *testing.T) {
	reader := NewReader([]byte{0xff})

	_, err := reader.ReadBits(9)
	var errOutOfBounds ErrOutOfBounds
	assert.True(t, errors.As(err, &errOutOfBounds))
	assert.Equal(t, 0, errOutOfBounds.Offset)
	assert.Equal(t, 9, errOutOfBounds.Want)
	assert.Equal(t, 8, errOutOfBounds.Len)
	// a failed read does not move the cursor
	assert.Equal(t, 0, reader.Position())

	_, err = reader.ReadBytes(2)
	assert.Error(t, err)
	assert.Error(t, reader.Seek(9))
	assert.NoError(t, reader.Seek(8))
	_, err = reader.ReadBit()
	assert.Error(t, err)

	_, err = NewReader([]byte{'a', 'b'}).ReadNullTerminatedString()
	assert.Error(t, err)
}

func TestReader_ExpectTag(t *testing.T) {
	reader := NewReader([]byte("JMgf"))

	assert.True(t, reader.HasTag("JM"))
	assert.False(t, reader.HasTag("gf"))
	assert.NoError(t, reader.ExpectTag("JM", "items.header"))

	err := reader.ExpectTag("if", "skills.header")
	var errStructuralMismatch derr.ErrStructuralMismatch
	require.True(t, errors.As(err, &errStructuralMismatch))
	assert.Equal(t, 16, errStructuralMismatch.Offset)
	assert.Equal(t, "gf", errStructuralMismatch.Actual)
	assert.Equal(t, 16, reader.Position())

	require.NoError(t, reader.ExpectTag("gf", "attributes.header"))
	assert.Error(t, reader.ExpectTag("JM", "items.header"))
	assert.False(t, reader.HasTag("JM"))
}
