package lbits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteInstructions(t *testing.T) {
	type T struct {
		Magic   uint32 `json:"magic"`
		Version uint32 `json:"version"`
		Name    string `json:"name"`
		Raw     []byte `json:"raw"`
	}
	writer := NewWriter()
	writer.WriteUInt32(0xaa55aa55)
	writer.WriteUInt32(0x60)
	writer.WriteBytes([]byte{1, 2})
	writer.WriteString("Sonia", 16)

	reader := NewReader(writer.Bytes())
	instructions := []Instruction{
		{"magic", CreateUIntReadFunction(reader, 32)},
		{"version", CreateUIntReadFunction(reader, 32)},
		{"raw", CreateNBytesReadFunction(reader, 2)},
		{"name", CreateStringReadFunction(reader, 16)},
		{"", CreateSeekByteFunction(reader, 4)},
	}
	result, err := ExecuteInstructions[T](instructions)
	require.NoError(t, err)

	assert.Equal(t, uint32(0xaa55aa55), result.Magic)
	assert.Equal(t, uint32(0x60), result.Version)
	assert.Equal(t, []byte{1, 2}, result.Raw)
	assert.Equal(t, "Sonia", result.Name)
	assert.Equal(t, 32, reader.Position())
}

func TestExecuteInstructions_ReadError(t *testing.T) {
	type T struct {
		Magic uint32 `json:"magic"`
	}
	reader := NewReader([]byte{1, 2})
	_, err := ExecuteInstructions[T]([]Instruction{{"magic", CreateUIntReadFunction(reader, 32)}})
	assert.ErrorContains(t, err, `reading key "magic"`)
}
