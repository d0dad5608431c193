package dstash

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
	"golang.org/x/text/encoding/charmap"
)

func createSectorMagicReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		offset := reader.Position()
		magic, err := reader.ReadUInt32()
		if err != nil {
			return nil, err
		}
		if magic != SectorMagic {
			return nil, derr.ErrStructuralMismatch{
				Field:    "sector.magic",
				Offset:   offset,
				Expected: fmt.Sprintf("%#x", SectorMagic),
				Actual:   fmt.Sprintf("%#x", magic),
			}
		}
		return nil, nil
	}
}

func decodeSector(reader *lbits.Reader, cache *dschema.Cache, config ditem.Config) (*Sector, error) {
	start := reader.BytePosition()
	readU32 := lbits.CreateUIntReadFunction(reader, 32)
	instructions := []lbits.Instruction{
		{Key: "", ReadFunction: createSectorMagicReadFunction(reader)},
		{Key: "kind", ReadFunction: readU32},
		{Key: "version", ReadFunction: readU32},
		{Key: "gold", ReadFunction: readU32},
		{Key: "size", ReadFunction: readU32},
		{Key: "reserved", ReadFunction: lbits.CreateNBytesReadFunction(reader, SectorReservedLen)},
	}
	sector, err := lbits.ExecuteInstructions[Sector](instructions)
	if err != nil {
		err := errors.Wrap(err, "decodeSector error reading sector header")
		return nil, err
	}

	end := start + int(sector.Size)
	if sector.Size < SectorHeaderLen || end*8 > reader.Len() {
		return nil, derr.ErrStructuralMismatch{
			Field:    "sector.size",
			Offset:   (start + OffsetSectorSize) * 8,
			Expected: fmt.Sprintf("between %d and %d", SectorHeaderLen, reader.Len()/8-start),
			Actual:   sector.Size,
		}
	}

	ctx := ditem.NewContext(sector.Version, cache, config)
	items, err := ditem.DecodeList(reader, ctx)
	if err != nil {
		err := errors.Wrap(err, "decodeSector error reading items")
		return nil, err
	}
	sector.Items = items

	reader.Align()
	if reader.BytePosition() > end {
		return nil, derr.ErrStructuralMismatch{
			Field:    "sector.items",
			Offset:   reader.Position(),
			Expected: fmt.Sprintf("items ending by byte %d", end),
			Actual:   reader.BytePosition(),
		}
	}
	if reader.BytePosition() < end {
		trailing, err := reader.ReadBytes(end - reader.BytePosition())
		if err != nil {
			return nil, err
		}
		sector.Trailing = trailing
	}
	return sector, nil
}

// decodeSectors reads sectors until the buffer is exhausted.
func decodeSectors(reader *lbits.Reader, cache *dschema.Cache, config ditem.Config) ([]Sector, error) {
	sectors := make([]Sector, 0)
	for reader.Remaining() > 0 {
		sector, err := decodeSector(reader, cache, config)
		if err != nil {
			err := errors.Wrapf(err, "decodeSectors error reading sector %d", len(sectors))
			return nil, err
		}
		sectors = append(sectors, *sector)
	}
	return sectors, nil
}

func decodePageName(reader *lbits.Reader) (string, error) {
	raw, err := reader.ReadNullTerminatedString()
	if err != nil {
		return "", err
	}
	name, err := charmap.ISO8859_1.NewDecoder().String(raw)
	if err != nil {
		err := errors.Wrapf(err, `decodePageName error decoding "%v"`, []byte(raw))
		return "", err
	}
	return name, nil
}

func decodePage(reader *lbits.Reader, ctx ditem.Context) (*Page, error) {
	if err := reader.ExpectTag(PageTag, "page.header"); err != nil {
		return nil, err
	}
	pageType, err := reader.ReadUInt8()
	if err != nil {
		return nil, err
	}
	reserved, err := reader.ReadBytes(PageReserved)
	if err != nil {
		return nil, err
	}
	name, err := decodePageName(reader)
	if err != nil {
		return nil, err
	}
	items, err := ditem.DecodeList(reader, ctx)
	if err != nil {
		err := errors.Wrapf(err, `decodePage error reading items of page "%s"`, name)
		return nil, err
	}
	page := Page{
		Type:     pageType,
		Reserved: reserved,
		Name:     name,
		Items:    items,
	}
	return &page, nil
}

func decodePaged(reader *lbits.Reader, cache *dschema.Cache, config ditem.Config, format Format) (*Stash, error) {
	tag := SharedTag
	if format == FormatPrivate {
		tag = PrivateTag
	}
	if err := reader.ExpectTag(tag, "stash.header"); err != nil {
		return nil, err
	}
	offset := reader.Position()
	version, err := reader.ReadString(2)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(PagedVersions, version) {
		return nil, derr.ErrStructuralMismatch{
			Field:    "stash.version",
			Offset:   offset,
			Expected: PagedVersions,
			Actual:   version,
		}
	}

	stash := Stash{
		Format:  format,
		Version: version,
	}
	if version == VersionGold {
		gold, err := reader.ReadUInt32()
		if err != nil {
			return nil, err
		}
		stash.SharedGold = gold
	}
	count, err := reader.ReadUInt32()
	if err != nil {
		return nil, err
	}

	ctx := ditem.NewContext(PagedItemVersion, cache, config)
	stash.Pages = make([]Page, 0)
	for i := 0; i < int(count); i++ {
		page, err := decodePage(reader, ctx)
		if err != nil {
			err := errors.Wrapf(err, "decodePaged error reading page %d of %d", i, count)
			return nil, err
		}
		stash.Pages = append(stash.Pages, *page)
	}
	return &stash, nil
}

func decodeFlat(reader *lbits.Reader, cache *dschema.Cache, config ditem.Config) (*Flat, error) {
	if err := reader.ExpectTag(FlatTag, "stash.header"); err != nil {
		return nil, err
	}
	count, err := reader.ReadUInt16()
	if err != nil {
		return nil, err
	}
	flat := Flat{
		Items: make([]ditem.Item, 0),
	}
	if flat.Version, err = reader.ReadUInt16(); err != nil {
		return nil, err
	}
	if flat.Checksum, err = reader.ReadUInt32(); err != nil {
		return nil, err
	}

	ctx := ditem.NewContext(PagedItemVersion, cache, config)
	for i := 0; i < int(count); i++ {
		item, err := ditem.Decode(reader, ctx)
		if err != nil {
			err := errors.Wrapf(err, "decodeFlat error reading item %d of %d", i, count)
			return nil, err
		}
		flat.Items = append(flat.Items, *item)
	}
	return &flat, nil
}

// Decode sniffs the container format of bs and reads it.
func Decode(bs []byte, cache *dschema.Cache, config ditem.Config) (*Stash, error) {
	format, err := Sniff(bs)
	if err != nil {
		return nil, err
	}

	reader := lbits.NewReader(bs)
	switch format {
	case FormatSectored:
		sectors, err := decodeSectors(reader, cache, config)
		if err != nil {
			err := errors.Wrap(err, "dstash.Decode error")
			return nil, err
		}
		return &Stash{Format: format, Sectors: sectors}, nil
	case FormatShared, FormatPrivate:
		stash, err := decodePaged(reader, cache, config, format)
		if err != nil {
			err := errors.Wrap(err, "dstash.Decode error")
			return nil, err
		}
		return stash, nil
	case FormatFlat:
		flat, err := decodeFlat(reader, cache, config)
		if err != nil {
			err := errors.Wrap(err, "dstash.Decode error")
			return nil, err
		}
		return &Stash{Format: format, Flat: flat}, nil
	}
	return nil, derr.ErrUnsupported{
		Operation: "decode",
		Format:    string(format),
	}
}
