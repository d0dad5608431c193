package dattr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

var fixture = []byte{
	103, 102, 0, 60, 8, 160, 128, 0, 10, 6, 100, 96, 0, 224, 6, 28, 0, 184, 1, 8, 0, 20, 64, 2, 0, 5,
	160, 0, 128, 11, 44, 0, 224, 2, 12, 2, 255, 1,
}

func loadSchema(t *testing.T) *dschema.Schema {
	schema, err := dschema.Load("../../testdata/schema.yaml")
	require.NoError(t, err)
	return schema
}

func TestDecode(t *testing.T) {
	reader := lbits.NewReader(fixture)
	attributes, err := Decode(reader, loadSchema(t))
	require.NoError(t, err)

	expected := Attributes{
		Strength:       30,
		Energy:         10,
		Dexterity:      20,
		Vitality:       25,
		CurrentHP:      55,
		MaxHP:          55,
		CurrentMana:    10,
		MaxMana:        10,
		CurrentStamina: 92,
		MaxStamina:     92,
		Level:          1,
	}
	assert.Equal(t, expected, *attributes)
	assert.Equal(t, len(fixture)*8, reader.Position())
}

func TestEncode(t *testing.T) {
	schema := loadSchema(t)
	attributes, err := Decode(lbits.NewReader(fixture), schema)
	require.NoError(t, err)

	writer := lbits.NewWriter()
	require.NoError(t, Encode(writer, schema, *attributes))
	assert.Equal(t, fixture, writer.Bytes())
}

func TestRoundTrip_Fractions(t *testing.T) {
	schema := loadSchema(t)
	attributes := Attributes{
		Strength:    15,
		CurrentHP:   0,
		MaxHP:       300,
		Experience:  3520485254,
		Gold:        1,
		StashedGold: 2500000,
		Fractions: map[uint16]uint8{
			6:  0x80,
			11: 0x01,
		},
	}
	writer := lbits.NewWriter()
	require.NoError(t, Encode(writer, schema, attributes))

	decoded, err := Decode(lbits.NewReader(writer.Bytes()), schema)
	require.NoError(t, err)
	assert.Equal(t, attributes, *decoded)
}

func TestEncode_ValueTooWide(t *testing.T) {
	err := Encode(lbits.NewWriter(), loadSchema(t), Attributes{Level: 128})
	var errStructuralMismatch derr.ErrStructuralMismatch
	require.True(t, errors.As(err, &errStructuralMismatch))
	assert.Equal(t, "attributes", errStructuralMismatch.Field)
}

func TestDecode_Errors(t *testing.T) {
	schema := loadSchema(t)

	_, err := Decode(lbits.NewReader([]byte("if")), schema)
	var errStructuralMismatch derr.ErrStructuralMismatch
	require.True(t, errors.As(err, &errStructuralMismatch))
	assert.Equal(t, "attributes.header", errStructuralMismatch.Field)

	// id 16 is outside the block
	writer := lbits.NewWriter().WriteString(Header, 2).WriteBits(16, IDBits).WriteBits(0, 16)
	_, err = Decode(lbits.NewReader(writer.Bytes()), schema)
	var errSchemaLookup derr.ErrSchemaLookup
	require.True(t, errors.As(err, &errSchemaLookup))
	assert.Equal(t, uint16(16), errSchemaLookup.Key)
	assert.Equal(t, 16, errSchemaLookup.Offset)

	_, err = Decode(lbits.NewReader(fixture[:10]), schema)
	var errOutOfBounds lbits.ErrOutOfBounds
	assert.True(t, errors.As(err, &errOutOfBounds))
}
