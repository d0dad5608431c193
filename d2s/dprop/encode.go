package dprop

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

type (
	ErrValueCount struct {
		ID       uint16
		Expected int
		Actual   int
	}
)

func (r ErrValueCount) Error() string {
	return fmt.Sprintf(
		"property %d needs %d value(s), got %d",
		r.ID, r.Expected, r.Actual,
	)
}

// ValueCount returns how many values a property built from the chain carries.
func ValueCount(chain []dschema.Stat) int {
	count := 0
	for _, stat := range chain {
		if stat.SaveParamBits > 0 {
			count++
			if stat.DescFunc == DescFuncSkillTab {
				count++
			}
			if stat.Encode == EncodeSkillChance || stat.Encode == EncodeCharges {
				count++
			}
		}
		count++
		if stat.Encode == EncodeCharges {
			count++
		}
	}
	return count
}

// checkRange fails when value does not fit an unsigned field of n bits.
func checkRange(stat dschema.Stat, value int, n int, offset int) error {
	if value >= 0 && uint64(value)>>n == 0 {
		return nil
	}
	return derr.ErrStructuralMismatch{
		Field:    "magic_property." + stat.Name,
		Offset:   offset,
		Expected: fmt.Sprintf("a value that fits %d bits", n),
		Actual:   value,
	}
}

// encodeEntry writes one chained entry starting at values[i] and returns the index of the next
// unconsumed value. It mirrors decodeEntry.
func encodeEntry(writer *lbits.Writer, stat dschema.Stat, values []int, i int) (int, error) {
	if stat.SaveParamBits > 0 {
		head := i
		if stat.DescFunc == DescFuncSkillTab {
			i++
		}
		if stat.Encode == EncodeSkillChance || stat.Encode == EncodeCharges {
			i++
		}
		param := values[i]
		i++
		if stat.Encode == EncodeSkillChance || stat.Encode == EncodeCharges {
			if err := checkRange(stat, values[i-2], 6, writer.Position()); err != nil {
				return 0, err
			}
			if err := checkRange(stat, param, 10, writer.Position()); err != nil {
				return 0, err
			}
			param = param<<6 | values[i-2]
		}
		if stat.DescFunc == DescFuncSkillTab {
			if err := checkRange(stat, values[head], 3, writer.Position()); err != nil {
				return 0, err
			}
			if err := checkRange(stat, param, 13, writer.Position()); err != nil {
				return 0, err
			}
			param = param<<3 | values[head]
		}
		if err := checkRange(stat, param, stat.SaveParamBits, writer.Position()); err != nil {
			return 0, err
		}
		writer.WriteBits(uint64(param), stat.SaveParamBits)
	}

	if stat.SaveBits <= 0 {
		return 0, derr.ErrSchemaLookup{
			Kind:   "save bits",
			Key:    stat.Name,
			Field:  "magic_property.value",
			Offset: writer.Position(),
		}
	}
	value := values[i]
	i++
	if stat.Encode == EncodeCharges {
		if err := checkRange(stat, value, 8, writer.Position()); err != nil {
			return 0, err
		}
		if err := checkRange(stat, values[i], 8, writer.Position()); err != nil {
			return 0, err
		}
		value |= values[i] << 8
		i++
	}
	value += stat.SaveAdd
	if err := checkRange(stat, value, stat.SaveBits, writer.Position()); err != nil {
		return 0, err
	}
	writer.WriteBits(uint64(value), stat.SaveBits)
	return i, nil
}

func EncodeProperty(writer *lbits.Writer, schema *dschema.Schema, property Property) error {
	if property.ID == Terminator {
		return derr.ErrStructuralMismatch{
			Field:    "magic_property.id",
			Offset:   writer.Position(),
			Expected: "a stat id",
			Actual:   Terminator,
		}
	}
	chain, err := Chain(schema, property.ID, writer.Position())
	if err != nil {
		return err
	}
	if expected := ValueCount(chain); expected != len(property.Values) {
		return ErrValueCount{
			ID:       property.ID,
			Expected: expected,
			Actual:   len(property.Values),
		}
	}

	writer.WriteBits(uint64(property.ID), IDBits)
	i := 0
	for _, stat := range chain {
		i, err = encodeEntry(writer, stat, property.Values, i)
		if err != nil {
			return err
		}
	}
	return nil
}

// EncodeList writes the properties followed by exactly one terminator.
func EncodeList(writer *lbits.Writer, schema *dschema.Schema, properties []Property) error {
	for _, property := range properties {
		if err := EncodeProperty(writer, schema, property); err != nil {
			err := errors.Wrapf(err, "EncodeList error encoding property %d", property.ID)
			return err
		}
	}
	writer.WriteBits(Terminator, IDBits)
	return nil
}
