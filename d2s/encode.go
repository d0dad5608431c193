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

func encodeCorpses(writer *lbits.Writer, ctx ditem.Context, corpses []Corpse) error {
	writer.
		WriteString(ditem.Header, len(ditem.Header)).
		WriteUInt16(uint16(len(corpses)))
	for i, corpse := range corpses {
		writer.
			WriteUInt32(corpse.Unknown).
			WriteUInt32(corpse.X).
			WriteUInt32(corpse.Y)
		if err := ditem.EncodeList(writer, ctx, corpse.Items); err != nil {
			err := errors.Wrapf(err, "encodeCorpses error writing corpse %d", i)
			return err
		}
	}
	return nil
}

func encodeMercItems(writer *lbits.Writer, ctx ditem.Context, save Save) error {
	writer.WriteString(MercHeader, len(MercHeader))
	if save.Header.MercID == 0 {
		if len(save.MercItems) > 0 {
			return derr.ErrStructuralMismatch{
				Field:    SectionMercItems,
				Offset:   writer.Position(),
				Expected: "no items without a mercenary",
				Actual:   len(save.MercItems),
			}
		}
		return nil
	}
	return ditem.EncodeList(writer, ctx, save.MercItems)
}

func encodeGolemItem(writer *lbits.Writer, ctx ditem.Context, save Save) error {
	writer.WriteString(GolemHeader, len(GolemHeader))
	if save.GolemItem == nil {
		if save.GolemFlag == GolemItemPresent {
			return derr.ErrStructuralMismatch{
				Field:    "golem_flag",
				Offset:   writer.Position(),
				Expected: "a golem item after the flag",
				Actual:   "no golem item",
			}
		}
		writer.WriteUInt8(save.GolemFlag)
		return nil
	}
	writer.WriteUInt8(GolemItemPresent)
	return ditem.Encode(writer, ctx, *save.GolemItem)
}

// Encode writes a whole character file and patches its size and checksum.
func Encode(save Save, cache *dschema.Cache, config Config) ([]byte, error) {
	ctx := ditem.NewContext(save.Header.Version, cache, config)
	writer := lbits.NewWriter()

	if err := dheader.Encode(writer, save.Header); err != nil {
		err := errors.Wrap(err, "d2s.Encode error writing header")
		return nil, err
	}
	if err := dattr.Encode(writer, ctx.Schema, save.Attributes); err != nil {
		err := errors.Wrap(err, "d2s.Encode error writing attributes")
		return nil, err
	}
	if !save.isAbsent(SectionSkills) {
		if err := dskill.Encode(writer, save.Skills); err != nil {
			err := errors.Wrap(err, "d2s.Encode error writing skills")
			return nil, err
		}
	}
	if err := ditem.EncodeList(writer, ctx, save.Items); err != nil {
		err := errors.Wrap(err, "d2s.Encode error writing items")
		return nil, err
	}

	if !save.isAbsent(SectionCorpses) {
		if err := encodeCorpses(writer, ctx, save.Corpses); err != nil {
			err := errors.Wrap(err, "d2s.Encode error writing corpses")
			return nil, err
		}
	}
	if save.Header.Status.Expansion {
		if !save.isAbsent(SectionMercItems) {
			if err := encodeMercItems(writer, ctx, save); err != nil {
				err := errors.Wrap(err, "d2s.Encode error writing mercenary items")
				return nil, err
			}
		}
		if !save.isAbsent(SectionGolemItem) {
			if err := encodeGolemItem(writer, ctx, save); err != nil {
				err := errors.Wrap(err, "d2s.Encode error writing golem item")
				return nil, err
			}
		}
	}

	dheader.FixHeader(writer)
	return writer.Bytes(), nil
}
