package dskill

import (
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
	"github.com/thanhnguyen2187/d2-savior/ds"
)

// IDs returns the global skill ids of a class in block order.
func IDs(class uint8) ([]uint16, bool) {
	if int(class) >= len(ClassOffsets) {
		return nil, false
	}
	offset := ClassOffsets[class]
	return ds.MakeRange(offset, offset+NrOfSkills, 1), true
}

func Decode(reader *lbits.Reader, schema *dschema.Schema, class uint8) ([]Skill, error) {
	offset := reader.Position()
	ids, ok := IDs(class)
	if !ok {
		return nil, derr.ErrSchemaLookup{
			Kind:   "class",
			Key:    class,
			Field:  "skills",
			Offset: offset,
		}
	}
	if err := reader.ExpectTag(Header, "skills.header"); err != nil {
		return nil, err
	}
	points, err := reader.ReadBytes(NrOfSkills)
	if err != nil {
		return nil, err
	}

	skills := lo.Map(
		ids,
		func(id uint16, i int) Skill {
			return Skill{
				ID:     id,
				Name:   schema.Skills[id],
				Points: points[i],
			}
		},
	)
	return skills, nil
}
