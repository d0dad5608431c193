package dattr

import (
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

func csvBits(schema *dschema.Schema, id uint16, offset int) (int, error) {
	stat, ok := schema.Stat(id)
	if !ok || stat.CSvBits <= 0 {
		return 0, derr.ErrSchemaLookup{
			Kind:   "attribute width",
			Key:    id,
			Field:  "attributes",
			Offset: offset,
		}
	}
	return stat.CSvBits, nil
}

func Decode(reader *lbits.Reader, schema *dschema.Schema) (*Attributes, error) {
	if err := reader.ExpectTag(Header, "attributes.header"); err != nil {
		return nil, err
	}

	attributes := Attributes{}
	for {
		offset := reader.Position()
		rawID, err := reader.ReadBits(IDBits)
		if err != nil {
			err := errors.Wrap(err, "dattr.Decode error reading id")
			return nil, err
		}
		if rawID == Terminator {
			break
		}
		id := uint16(rawID)
		field := attributes.field(id)
		if field == nil {
			return nil, derr.ErrSchemaLookup{
				Kind:   "attribute",
				Key:    id,
				Field:  "attributes",
				Offset: offset,
			}
		}
		bits, err := csvBits(schema, id, offset)
		if err != nil {
			return nil, err
		}
		value, err := reader.ReadBits(bits)
		if err != nil {
			err := errors.Wrapf(err, "dattr.Decode error reading attribute %d", id)
			return nil, err
		}
		if isFixedPoint(id) {
			if fraction := uint8(value); fraction != 0 {
				if attributes.Fractions == nil {
					attributes.Fractions = map[uint16]uint8{}
				}
				attributes.Fractions[id] = fraction
			}
			value >>= FixedPointShift
		}
		*field = uint32(value)
	}
	reader.Align()

	return &attributes, nil
}
