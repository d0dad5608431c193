package dprop

import (
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

func chainLength(stat dschema.Stat) int {
	if stat.NumProps <= 0 {
		return 1
	}
	return stat.NumProps
}

// Chain returns the schema entries a property with the given id spans.
func Chain(schema *dschema.Schema, id uint16, offset int) ([]dschema.Stat, error) {
	stat, ok := schema.Stat(id)
	if !ok {
		return nil, derr.ErrSchemaLookup{
			Kind:   "stat",
			Key:    id,
			Field:  "magic_property.id",
			Offset: offset,
		}
	}
	chain := []dschema.Stat{stat}
	for i := 1; i < chainLength(stat); i++ {
		chained, ok := schema.Stat(id + uint16(i))
		if !ok {
			return nil, derr.ErrSchemaLookup{
				Kind:   "chained stat",
				Key:    id + uint16(i),
				Field:  stat.Name,
				Offset: offset,
			}
		}
		chain = append(chain, chained)
	}
	return chain, nil
}

func decodeEntry(reader *lbits.Reader, stat dschema.Stat, values []int) ([]int, error) {
	if stat.SaveParamBits > 0 {
		rawParam, err := reader.ReadBits(stat.SaveParamBits)
		if err != nil {
			return nil, errors.Wrapf(err, `decodeEntry error reading param of "%s"`, stat.Name)
		}
		param := int(rawParam)
		if stat.DescFunc == DescFuncSkillTab {
			values = append(values, param&0x7)
			param = (param >> 3) & 0x1fff
		}
		if stat.Encode == EncodeSkillChance || stat.Encode == EncodeCharges {
			values = append(values, param&0x3f)
			param = (param >> 6) & 0x3ff
		}
		values = append(values, param)
	}

	if stat.SaveBits <= 0 {
		return nil, derr.ErrSchemaLookup{
			Kind:   "save bits",
			Key:    stat.Name,
			Field:  "magic_property.value",
			Offset: reader.Position(),
		}
	}
	rawValue, err := reader.ReadBits(stat.SaveBits)
	if err != nil {
		return nil, errors.Wrapf(err, `decodeEntry error reading value of "%s"`, stat.Name)
	}
	value := int(rawValue) - stat.SaveAdd
	if stat.Encode == EncodeCharges {
		values = append(values, value&0xff, (value>>8)&0xff)
	} else {
		values = append(values, value)
	}
	return values, nil
}

func DecodeProperty(reader *lbits.Reader, schema *dschema.Schema, id uint16) (*Property, error) {
	chain, err := Chain(schema, id, reader.Position()-IDBits)
	if err != nil {
		return nil, err
	}
	values := make([]int, 0)
	for _, stat := range chain {
		values, err = decodeEntry(reader, stat, values)
		if err != nil {
			return nil, err
		}
	}
	return &Property{
		ID:     id,
		Name:   chain[0].Name,
		Values: values,
	}, nil
}

// DecodeList reads properties until the terminator. An empty list decodes to nil.
func DecodeList(reader *lbits.Reader, schema *dschema.Schema) ([]Property, error) {
	var properties []Property
	for {
		id, err := reader.ReadBits(IDBits)
		if err != nil {
			err := errors.Wrap(err, "DecodeList error reading id")
			return nil, err
		}
		if id == Terminator {
			return properties, nil
		}
		property, err := DecodeProperty(reader, schema, uint16(id))
		if err != nil {
			err := errors.Wrapf(err, "DecodeList error decoding property %d", id)
			return nil, err
		}
		properties = append(properties, *property)
	}
}
