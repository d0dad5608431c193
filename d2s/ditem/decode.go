package ditem

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dprop"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

// bitReader keeps the first error so that runs of fixed-width fields read without checks in
// between. Values read after a failure are zero.
type bitReader struct {
	reader *lbits.Reader
	err    error
}

func (r *bitReader) bits(n int) uint64 {
	if r.err != nil {
		return 0
	}
	value, err := r.reader.ReadBits(n)
	r.err = err
	return value
}

func (r *bitReader) flag() bool {
	return r.bits(1) == 1
}

func flagAt(flags uint32, position int) bool {
	return flags>>position&1 == 1
}

func namedFlagsMask() uint32 {
	return lo.Reduce(
		[]int{
			FlagIdentified, FlagSocketed, FlagNew, FlagIsEar, FlagStarter,
			FlagSimple, FlagEthereal, FlagPersonalized, FlagGivenRuneword,
		},
		func(mask uint32, position int, _ int) uint32 {
			return mask | 1<<position
		},
		0,
	)
}

func decodeFlags(item *Item, flags uint32) {
	item.Identified = flagAt(flags, FlagIdentified)
	item.Socketed = flagAt(flags, FlagSocketed)
	item.New = flagAt(flags, FlagNew)
	item.IsEar = flagAt(flags, FlagIsEar)
	item.Starter = flagAt(flags, FlagStarter)
	item.Simple = flagAt(flags, FlagSimple)
	item.Ethereal = flagAt(flags, FlagEthereal)
	item.Personalized = flagAt(flags, FlagPersonalized)
	item.GivenRuneword = flagAt(flags, FlagGivenRuneword)
	item.FlagsReserved = flags &^ namedFlagsMask()
}

// decodeName reads 7-bit characters up to the zero terminator.
func decodeName(reader *lbits.Reader, field string) (string, error) {
	offset := reader.Position()
	bs := make([]byte, 0, MaxNameLen)
	for i := 0; i <= MaxNameLen; i++ {
		c, err := reader.ReadBits(CharBits)
		if err != nil {
			return "", err
		}
		if c == 0 {
			return string(bs), nil
		}
		bs = append(bs, byte(c))
	}
	return "", derr.ErrStructuralMismatch{
		Field:    field,
		Offset:   offset,
		Expected: "a terminated name of at most 15 characters",
		Actual:   string(bs),
	}
}

func decodeType(reader *lbits.Reader, layout Layout) (string, error) {
	var code string
	var err error
	if layout.HuffmanType {
		code, err = DecodeHuffmanType(reader)
	} else {
		code, err = reader.ReadString(TypeCodeLen)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(code, " \u0000"), nil
}

func lookupType(ctx Context, code string, offset int) (dschema.ItemType, error) {
	itemType, ok := ctx.Schema.ItemType(code)
	if !ok {
		return itemType, derr.ErrSchemaLookup{
			Kind:   "item type",
			Key:    code,
			Field:  "item.type",
			Offset: offset,
		}
	}
	return itemType, nil
}

func socketModifiers(ctx Context, code string, parentType string) []dprop.Property {
	if parentType == "" {
		return nil
	}
	parent, ok := ctx.Schema.ItemType(parentType)
	if !ok {
		return nil
	}
	mods := ctx.Schema.ModsFor(code, parent.Category)
	if len(mods) == 0 {
		return nil
	}
	return lo.Map(
		mods,
		func(mod dschema.GemMod, _ int) dprop.Property {
			stat, _ := ctx.Schema.Stat(mod.ID)
			return dprop.Property{
				ID:     mod.ID,
				Name:   stat.Name,
				Values: append([]int{}, mod.Values...),
			}
		},
	)
}

func decodeQuality(r *bitReader, ctx Context, item *Item) {
	switch item.Quality {
	case QualityLow:
		item.LowQualityID = uint8(r.bits(LowQualityBits))
	case QualityNormal:
	case QualitySuperior:
		item.SuperiorID = uint8(r.bits(SuperiorBits))
	case QualityMagic:
		item.MagicPrefix = uint16(r.bits(MagicAffixBits))
		item.MagicSuffix = uint16(r.bits(MagicAffixBits))
		item.MagicPrefixName = dschema.Name(ctx.Schema.MagicPrefixes, item.MagicPrefix)
		item.MagicSuffixName = dschema.Name(ctx.Schema.MagicSuffixes, item.MagicSuffix)
	case QualitySet:
		item.SetID = uint16(r.bits(SetIDBits))
		item.SetName = dschema.Name(ctx.Schema.SetItems, item.SetID)
	case QualityUnique:
		item.UniqueID = uint16(r.bits(UniqueIDBits))
		item.UniqueName = dschema.Name(ctx.Schema.UniqueItems, item.UniqueID)
	case QualityRare, QualityCrafted:
		item.RareNameID = uint8(r.bits(RareNameBits))
		item.RareNameID2 = uint8(r.bits(RareNameBits))
		item.RareName = dschema.Name(ctx.Schema.RareNames, uint16(item.RareNameID))
		item.RareName2 = dschema.Name(ctx.Schema.RareNames, uint16(item.RareNameID2))
		item.RareAffixes = make([]RareAffix, RareAffixCount)
		for i := range item.RareAffixes {
			if r.flag() {
				item.RareAffixes[i] = RareAffix{
					Present: true,
					ID:      uint16(r.bits(MagicAffixBits)),
				}
			}
		}
	}
}

func decodeExtended(reader *lbits.Reader, ctx Context, item *Item, itemType dschema.ItemType) error {
	r := &bitReader{reader: reader}
	item.ID = uint32(r.bits(IDBits))
	item.Level = uint8(r.bits(LevelBits))
	item.Quality = Quality(r.bits(QualityBits))
	item.MultiplePictures = r.flag()
	if item.MultiplePictures {
		item.PictureID = uint8(r.bits(PictureIDBits))
	}
	item.ClassSpecific = r.flag()
	if item.ClassSpecific {
		item.AutoAffixID = uint16(r.bits(AutoAffixBits))
	}
	decodeQuality(r, ctx, item)

	if item.GivenRuneword {
		item.RunewordID = uint16(r.bits(RunewordIDBits))
		if item.RunewordID == BadRunewordID {
			item.RunewordID = RunewordIDFix
		}
		item.RunewordName = dschema.Name(ctx.Schema.Runewords, item.RunewordID)
		item.RunewordReserved = uint8(r.bits(RunewordReserveBits))
	}
	if r.err != nil {
		return r.err
	}

	if item.Personalized {
		name, err := decodeName(reader, "item.personalized_name")
		if err != nil {
			return err
		}
		item.PersonalizedName = name
	}

	if TomeTypes[item.Type] {
		item.TomeData = uint8(r.bits(TomeDataBits))
	}
	item.Timestamp = r.flag()
	if itemType.Category.HasDefense() {
		item.DefenseRating = int(r.bits(DefenseBits)) - DefenseBias
	}
	if itemType.Category.HasDurability() {
		item.MaxDurability = uint8(r.bits(DurabilityBits))
		if item.MaxDurability > 0 {
			item.CurrentDurability = uint8(r.bits(DurabilityBits))
			item.DurabilityPad = uint8(r.bits(1))
		}
	}
	if itemType.Stackable {
		item.Quantity = uint16(r.bits(QuantityBits))
	}
	if item.Socketed {
		item.TotalNrOfSockets = uint8(r.bits(SocketsBits))
	}
	if item.Quality == QualitySet {
		item.SetListMask = uint8(r.bits(SetListMaskBits))
	}
	if r.err != nil {
		return r.err
	}

	magicAttributes, err := dprop.DecodeList(reader, ctx.Schema)
	if err != nil {
		return errors.Wrap(err, "magic attributes")
	}
	item.MagicAttributes = magicAttributes

	for i := 0; i < SetListCount; i++ {
		if item.SetListMask>>i&1 == 0 {
			continue
		}
		setAttributes, err := dprop.DecodeList(reader, ctx.Schema)
		if err != nil {
			return errors.Wrapf(err, "set attributes %d", i)
		}
		item.SetAttributes = append(item.SetAttributes, setAttributes)
	}

	if item.GivenRuneword {
		runewordAttributes, err := dprop.DecodeList(reader, ctx.Schema)
		if err != nil {
			return errors.Wrap(err, "runeword attributes")
		}
		item.RunewordAttributes = runewordAttributes
	}
	return nil
}

func decodeItem(reader *lbits.Reader, ctx Context, parentType string, depth int) (*Item, error) {
	if depth > MaxSocketDepth {
		return nil, derr.ErrDepthExceeded{
			Depth:  MaxSocketDepth,
			Offset: reader.Position(),
		}
	}
	if ctx.Layout.ItemHeader {
		if err := reader.ExpectTag(Header, "item.header"); err != nil {
			return nil, err
		}
	}

	item := Item{}
	r := &bitReader{reader: reader}
	decodeFlags(&item, uint32(r.bits(FlagsBits)))
	item.Version = uint16(r.bits(ctx.Layout.VersionBits))
	item.LocationID = uint8(r.bits(LocationBits))
	item.EquippedID = uint8(r.bits(EquippedBits))
	item.PositionX = uint8(r.bits(PositionBits))
	item.PositionY = uint8(r.bits(PositionBits))
	item.AltPositionID = uint8(r.bits(ctx.AltPositionBits()))
	if r.err != nil {
		return nil, r.err
	}

	if item.IsEar {
		ear := Ear{
			Class: uint8(r.bits(EarClassBits)),
			Level: uint8(r.bits(EarLevelBits)),
		}
		if r.err != nil {
			return nil, r.err
		}
		name, err := decodeName(reader, "item.ear.name")
		if err != nil {
			return nil, err
		}
		ear.Name = name
		item.Ear = &ear
		reader.Align()
		return &item, nil
	}

	typeOffset := reader.Position()
	code, err := decodeType(reader, ctx.Layout)
	if err != nil {
		return nil, err
	}
	itemType, err := lookupType(ctx, code, typeOffset)
	if err != nil {
		return nil, err
	}
	item.Type = code
	item.TypeName = itemType.Name
	item.Category = itemType.Category
	item.SocketModifiers = socketModifiers(ctx, code, parentType)

	item.NrOfItemsInSockets = uint8(r.bits(lo.Ternary(item.Simple, 1, 3)))
	if r.err != nil {
		return nil, r.err
	}
	if !item.Simple {
		if err := decodeExtended(reader, ctx, &item, itemType); err != nil {
			err := errors.Wrapf(err, `decodeItem error reading extended data of "%s"`, code)
			return nil, err
		}
	}
	reader.Align()

	if !item.Simple && item.NrOfItemsInSockets > 0 {
		item.SocketedItems = make([]Item, 0, item.NrOfItemsInSockets)
		for i := 0; i < int(item.NrOfItemsInSockets); i++ {
			child, err := decodeItem(reader, ctx, code, depth+1)
			if err != nil {
				err := errors.Wrapf(err, `decodeItem error reading socketed item %d of "%s"`, i, code)
				return nil, err
			}
			item.SocketedItems = append(item.SocketedItems, *child)
		}
	}
	return &item, nil
}

// Decode reads one item and the items in its sockets.
func Decode(reader *lbits.Reader, ctx Context) (*Item, error) {
	return decodeItem(reader, ctx, "", 0)
}

// DecodeRecord reads a standalone item record.
func DecodeRecord(bs []byte, ctx Context) (*Item, error) {
	item, err := Decode(lbits.NewReader(bs), ctx)
	if err != nil {
		err := errors.Wrap(err, "DecodeRecord error")
		return nil, err
	}
	return item, nil
}
