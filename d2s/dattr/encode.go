package dattr

import (
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

// Encode writes the attributes in ascending id order. Zero attributes are left out.
func Encode(writer *lbits.Writer, schema *dschema.Schema, attributes Attributes) error {
	writer.WriteString(Header, len(Header))
	for id := uint16(0); id < NrOfStats; id++ {
		value := uint64(*attributes.field(id))
		if isFixedPoint(id) {
			value = value<<FixedPointShift | uint64(attributes.Fractions[id])
		}
		if value == 0 {
			continue
		}
		bits, err := csvBits(schema, id, writer.Position())
		if err != nil {
			return err
		}
		if value>>bits != 0 {
			return derr.ErrStructuralMismatch{
				Field:    "attributes",
				Offset:   writer.Position(),
				Expected: "a value that fits the attribute width",
				Actual:   value,
			}
		}
		writer.
			WriteBits(uint64(id), IDBits).
			WriteBits(value, bits)
	}
	writer.
		WriteBits(Terminator, IDBits).
		Align()
	return nil
}
