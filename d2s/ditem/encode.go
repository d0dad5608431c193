package ditem

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dprop"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
	"golang.org/x/exp/constraints"
)

// fieldWriter writes fixed-width fields and keeps the first value that does not fit. Nothing is
// written after that.
type fieldWriter struct {
	writer *lbits.Writer
	err    error
}

func writeField[T constraints.Integer](w *fieldWriter, field string, value T, n int) {
	if w.err != nil {
		return
	}
	if value < 0 || uint64(value)>>n != 0 {
		w.err = derr.ErrStructuralMismatch{
			Field:    field,
			Offset:   w.writer.Position(),
			Expected: fmt.Sprintf("a value that fits %d bits", n),
			Actual:   value,
		}
		return
	}
	w.writer.WriteBits(uint64(value), n)
}

func setFlag(flags uint32, position int, value bool) uint32 {
	if value {
		return flags | 1<<position
	}
	return flags
}

func encodeFlags(item Item) uint32 {
	flags := item.FlagsReserved &^ namedFlagsMask()
	flags = setFlag(flags, FlagIdentified, item.Identified)
	flags = setFlag(flags, FlagSocketed, item.Socketed)
	flags = setFlag(flags, FlagNew, item.New)
	flags = setFlag(flags, FlagIsEar, item.IsEar)
	flags = setFlag(flags, FlagStarter, item.Starter)
	flags = setFlag(flags, FlagSimple, item.Simple)
	flags = setFlag(flags, FlagEthereal, item.Ethereal)
	flags = setFlag(flags, FlagPersonalized, item.Personalized)
	flags = setFlag(flags, FlagGivenRuneword, item.GivenRuneword)
	return flags
}

func encodeName(writer *lbits.Writer, name string, field string) error {
	if len(name) > MaxNameLen {
		return derr.ErrStructuralMismatch{
			Field:    field,
			Offset:   writer.Position(),
			Expected: "a name of at most 15 characters",
			Actual:   name,
		}
	}
	for i := 0; i < len(name); i++ {
		writer.WriteBits(uint64(name[i]&0x7f), CharBits)
	}
	writer.WriteBits(0, CharBits)
	return nil
}

func encodeType(writer *lbits.Writer, layout Layout, code string) error {
	if len(code) > TypeCodeLen {
		return derr.ErrStructuralMismatch{
			Field:    "item.type",
			Offset:   writer.Position(),
			Expected: "a type code of at most 4 characters",
			Actual:   code,
		}
	}
	if layout.HuffmanType {
		return EncodeHuffmanType(writer, code)
	}
	writer.WriteString(PadTypeCode(code), TypeCodeLen)
	return nil
}

// setListMask returns the mask written before the set lists. A zero mask on an item that has set
// lists selects the first lists in order.
func setListMask(item Item, offset int) (uint8, error) {
	mask := item.SetListMask
	if mask == 0 && len(item.SetAttributes) > 0 {
		mask = uint8(1)<<len(item.SetAttributes) - 1
	}
	if bits.OnesCount8(mask) != len(item.SetAttributes) || mask>>SetListCount != 0 {
		return 0, derr.ErrStructuralMismatch{
			Field:    "item.set_list_mask",
			Offset:   offset,
			Expected: len(item.SetAttributes),
			Actual:   mask,
		}
	}
	return mask, nil
}

func encodeQuality(w *fieldWriter, item Item) {
	switch item.Quality {
	case QualityLow:
		writeField(w, "item.low_quality_id", item.LowQualityID, LowQualityBits)
	case QualityNormal:
	case QualitySuperior:
		writeField(w, "item.superior_id", item.SuperiorID, SuperiorBits)
	case QualityMagic:
		writeField(w, "item.magic_prefix", item.MagicPrefix, MagicAffixBits)
		writeField(w, "item.magic_suffix", item.MagicSuffix, MagicAffixBits)
	case QualitySet:
		writeField(w, "item.set_id", item.SetID, SetIDBits)
	case QualityUnique:
		writeField(w, "item.unique_id", item.UniqueID, UniqueIDBits)
	case QualityRare, QualityCrafted:
		writeField(w, "item.rare_name_id", item.RareNameID, RareNameBits)
		writeField(w, "item.rare_name_id2", item.RareNameID2, RareNameBits)
		for i := 0; i < RareAffixCount; i++ {
			if i >= len(item.RareAffixes) || !item.RareAffixes[i].Present {
				writeField(w, "item.rare_affixes", 0, 1)
				continue
			}
			writeField(w, "item.rare_affixes", 1, 1)
			writeField(w, "item.rare_affixes", item.RareAffixes[i].ID, MagicAffixBits)
		}
	}
}

func encodeExtended(writer *lbits.Writer, ctx Context, item Item, itemType dschema.ItemType) error {
	w := &fieldWriter{writer: writer}
	writeField(w, "item.id", item.ID, IDBits)
	writeField(w, "item.level", item.Level, LevelBits)
	writeField(w, "item.quality", item.Quality, QualityBits)
	writeField(w, "item.multiple_pictures", lo.Ternary(item.MultiplePictures, 1, 0), 1)
	if item.MultiplePictures {
		writeField(w, "item.picture_id", item.PictureID, PictureIDBits)
	}
	writeField(w, "item.class_specific", lo.Ternary(item.ClassSpecific, 1, 0), 1)
	if item.ClassSpecific {
		writeField(w, "item.auto_affix_id", item.AutoAffixID, AutoAffixBits)
	}
	encodeQuality(w, item)

	if item.GivenRuneword {
		runewordID := item.RunewordID
		if runewordID == BadRunewordID {
			runewordID = RunewordIDFix
		}
		writeField(w, "item.runeword_id", runewordID, RunewordIDBits)
		writeField(w, "item.runeword_reserved", item.RunewordReserved, RunewordReserveBits)
	}
	if w.err != nil {
		return w.err
	}
	if item.Personalized {
		if err := encodeName(writer, item.PersonalizedName, "item.personalized_name"); err != nil {
			return err
		}
	}
	if TomeTypes[item.Type] {
		writeField(w, "item.tome_data", item.TomeData, TomeDataBits)
	}
	writeField(w, "item.timestamp", lo.Ternary(item.Timestamp, 1, 0), 1)
	if itemType.Category.HasDefense() {
		writeField(w, "item.defense_rating", item.DefenseRating+DefenseBias, DefenseBits)
	}
	if itemType.Category.HasDurability() {
		writeField(w, "item.max_durability", item.MaxDurability, DurabilityBits)
		if item.MaxDurability > 0 {
			writeField(w, "item.current_durability", item.CurrentDurability, DurabilityBits)
			writeField(w, "item.durability_pad", item.DurabilityPad, 1)
		}
	}
	if itemType.Stackable {
		writeField(w, "item.quantity", item.Quantity, QuantityBits)
	}
	if item.Socketed {
		writeField(w, "item.total_nr_of_sockets", item.TotalNrOfSockets, SocketsBits)
	}
	if w.err != nil {
		return w.err
	}
	if item.Quality == QualitySet {
		mask, err := setListMask(item, writer.Position())
		if err != nil {
			return err
		}
		writer.WriteBits(uint64(mask), SetListMaskBits)
	} else if len(item.SetAttributes) > 0 {
		return derr.ErrStructuralMismatch{
			Field:    "item.set_attributes",
			Offset:   writer.Position(),
			Expected: "no set attributes on a non-set item",
			Actual:   len(item.SetAttributes),
		}
	}

	if err := dprop.EncodeList(writer, ctx.Schema, item.MagicAttributes); err != nil {
		return errors.Wrap(err, "magic attributes")
	}
	for i, setAttributes := range item.SetAttributes {
		if err := dprop.EncodeList(writer, ctx.Schema, setAttributes); err != nil {
			return errors.Wrapf(err, "set attributes %d", i)
		}
	}
	if item.GivenRuneword {
		if err := dprop.EncodeList(writer, ctx.Schema, item.RunewordAttributes); err != nil {
			return errors.Wrap(err, "runeword attributes")
		}
	}
	return nil
}

func encodeItem(writer *lbits.Writer, ctx Context, item Item, depth int) error {
	if depth > MaxSocketDepth {
		return derr.ErrDepthExceeded{
			Depth:  MaxSocketDepth,
			Offset: writer.Position(),
		}
	}
	if ctx.Layout.ItemHeader {
		writer.WriteString(Header, len(Header))
	}
	w := &fieldWriter{writer: writer}
	writeField(w, "item.flags", encodeFlags(item), FlagsBits)
	writeField(w, "item.version", item.Version, ctx.Layout.VersionBits)
	writeField(w, "item.location_id", item.LocationID, LocationBits)
	writeField(w, "item.equipped_id", item.EquippedID, EquippedBits)
	writeField(w, "item.position_x", item.PositionX, PositionBits)
	writeField(w, "item.position_y", item.PositionY, PositionBits)
	writeField(w, "item.alt_position_id", item.AltPositionID, ctx.AltPositionBits())

	if item.IsEar {
		ear := Ear{}
		if item.Ear != nil {
			ear = *item.Ear
		}
		writeField(w, "item.ear.class", ear.Class, EarClassBits)
		writeField(w, "item.ear.level", ear.Level, EarLevelBits)
		if w.err != nil {
			return w.err
		}
		if err := encodeName(writer, ear.Name, "item.ear.name"); err != nil {
			return err
		}
		writer.Align()
		return nil
	}

	if w.err != nil {
		return w.err
	}

	typeOffset := writer.Position()
	itemType, err := lookupType(ctx, item.Type, typeOffset)
	if err != nil {
		return err
	}
	if err := encodeType(writer, ctx.Layout, item.Type); err != nil {
		return err
	}
	if item.Simple {
		writeField(w, "item.nr_of_items_in_sockets", item.NrOfItemsInSockets, 1)
	} else {
		writeField(w, "item.nr_of_items_in_sockets", item.NrOfItemsInSockets, 3)
	}
	if w.err != nil {
		return w.err
	}
	if !item.Simple {
		if err := encodeExtended(writer, ctx, item, itemType); err != nil {
			err := errors.Wrapf(err, `encodeItem error writing extended data of "%s"`, item.Type)
			return err
		}
	}
	writer.Align()

	if !item.Simple && item.NrOfItemsInSockets > 0 {
		if len(item.SocketedItems) != int(item.NrOfItemsInSockets) {
			return derr.ErrStructuralMismatch{
				Field:    "item.socketed_items",
				Offset:   writer.Position(),
				Expected: item.NrOfItemsInSockets,
				Actual:   len(item.SocketedItems),
			}
		}
		for i, child := range item.SocketedItems {
			if err := encodeItem(writer, ctx, child, depth+1); err != nil {
				err := errors.Wrapf(err, `encodeItem error writing socketed item %d of "%s"`, i, item.Type)
				return err
			}
		}
	}
	return nil
}

func Encode(writer *lbits.Writer, ctx Context, item Item) error {
	return encodeItem(writer, ctx, item, 0)
}

// EncodeRecord writes a standalone item record.
func EncodeRecord(item Item, ctx Context) ([]byte, error) {
	writer := lbits.NewWriter()
	if err := Encode(writer, ctx, item); err != nil {
		err := errors.Wrap(err, "EncodeRecord error")
		return nil, err
	}
	return writer.Bytes(), nil
}
