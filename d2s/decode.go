package d2s

import (
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/dattr"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dheader"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/dskill"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

type (
	sectionDecoder struct {
		Name   string
		Decode func(reader *lbits.Reader, ctx ditem.Context, save *Save) error
	}
)

// expectSection consumes tag. A missing tag on a freshly created character is reported as
// derr.ErrToleratedAbsence, anywhere else as derr.ErrStructuralMismatch.
func expectSection(reader *lbits.Reader, save *Save, tag string, section string) error {
	if reader.HasTag(tag) {
		return reader.ExpectTag(tag, section+".header")
	}
	if save.Header.Level == TolerantLevel {
		return derr.ErrToleratedAbsence{
			Section: section,
			Offset:  reader.Position(),
		}
	}
	return reader.ExpectTag(tag, section+".header")
}

func decodeSkills(reader *lbits.Reader, ctx ditem.Context, save *Save) error {
	if !reader.HasTag(dskill.Header) && save.Header.Level == TolerantLevel {
		save.Absent = append(save.Absent, SectionSkills)
		return nil
	}
	skills, err := dskill.Decode(reader, ctx.Schema, save.Header.Class)
	if err != nil {
		return err
	}
	save.Skills = skills
	return nil
}

func decodeCorpses(reader *lbits.Reader, ctx ditem.Context, save *Save) error {
	if err := expectSection(reader, save, ditem.Header, SectionCorpses); err != nil {
		return err
	}
	count, err := reader.ReadUInt16()
	if err != nil {
		return err
	}
	corpses := make([]Corpse, 0, count)
	for i := 0; i < int(count); i++ {
		corpse := Corpse{}
		for _, field := range []*uint32{&corpse.Unknown, &corpse.X, &corpse.Y} {
			value, err := reader.ReadUInt32()
			if err != nil {
				return err
			}
			*field = value
		}
		items, err := ditem.DecodeList(reader, ctx)
		if err != nil {
			err := errors.Wrapf(err, "decodeCorpses error reading corpse %d", i)
			return err
		}
		corpse.Items = items
		corpses = append(corpses, corpse)
	}
	save.Corpses = corpses
	return nil
}

func decodeMercItems(reader *lbits.Reader, ctx ditem.Context, save *Save) error {
	if err := expectSection(reader, save, MercHeader, SectionMercItems); err != nil {
		return err
	}
	if save.Header.MercID == 0 {
		return nil
	}
	items, err := ditem.DecodeList(reader, ctx)
	if err != nil {
		return err
	}
	save.MercItems = items
	return nil
}

func decodeGolemItem(reader *lbits.Reader, ctx ditem.Context, save *Save) error {
	if err := expectSection(reader, save, GolemHeader, SectionGolemItem); err != nil {
		return err
	}
	flag, err := reader.ReadUInt8()
	if err != nil {
		return err
	}
	if flag != GolemItemPresent {
		save.GolemFlag = flag
		return nil
	}
	item, err := ditem.Decode(reader, ctx)
	if err != nil {
		return err
	}
	save.GolemItem = item
	return nil
}

// decodeTrailing reads the sections after the item list. Once one of them is absent, so are the
// ones after it.
func decodeTrailing(reader *lbits.Reader, ctx ditem.Context, save *Save) error {
	sections := []sectionDecoder{
		{SectionCorpses, decodeCorpses},
	}
	if save.Header.Status.Expansion {
		sections = append(
			sections,
			sectionDecoder{SectionMercItems, decodeMercItems},
			sectionDecoder{SectionGolemItem, decodeGolemItem},
		)
	}

	for i, section := range sections {
		err := section.Decode(reader, ctx, save)
		var errToleratedAbsence derr.ErrToleratedAbsence
		if errors.As(err, &errToleratedAbsence) {
			for _, rest := range sections[i:] {
				save.Absent = append(save.Absent, rest.Name)
			}
			return nil
		}
		if err != nil {
			err := errors.Wrapf(err, `decodeTrailing error reading "%s"`, section.Name)
			return err
		}
	}
	return nil
}

// Decode reads a whole character file.
func Decode(bs []byte, cache *dschema.Cache, config Config) (*Save, error) {
	reader := lbits.NewReader(bs)
	header, err := dheader.Decode(reader)
	if err != nil {
		err := errors.Wrap(err, "d2s.Decode error reading header")
		return nil, err
	}
	ctx := ditem.NewContext(header.Version, cache, config)
	header.ClassName = ctx.Schema.ClassName(header.Class)
	save := Save{
		Header:    *header,
		Skills:    []dskill.Skill{},
		Corpses:   []Corpse{},
		MercItems: []ditem.Item{},
	}

	attributes, err := dattr.Decode(reader, ctx.Schema)
	if err != nil {
		err := errors.Wrap(err, "d2s.Decode error reading attributes")
		return nil, err
	}
	save.Attributes = *attributes

	if err := decodeSkills(reader, ctx, &save); err != nil {
		err := errors.Wrap(err, "d2s.Decode error reading skills")
		return nil, err
	}

	items, err := ditem.DecodeList(reader, ctx)
	if err != nil {
		err := errors.Wrap(err, "d2s.Decode error reading items")
		return nil, err
	}
	save.Items = items

	if err := decodeTrailing(reader, ctx, &save); err != nil {
		err := errors.Wrap(err, "d2s.Decode error")
		return nil, err
	}

	return &save, nil
}
