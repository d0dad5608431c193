package dstash

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
	"golang.org/x/text/encoding/charmap"
)

// encodeSector writes one sector and patches its size once the items are written.
func encodeSector(writer *lbits.Writer, ctx ditem.Context, sector Sector) error {
	writer.Align()
	start := writer.Position() / 8
	writer.
		WriteUInt32(SectorMagic).
		WriteUInt32(sector.Kind).
		WriteUInt32(sector.Version).
		WriteUInt32(sector.Gold).
		WriteUInt32(0).
		WriteString(string(sector.Reserved), SectorReservedLen)
	if err := ditem.EncodeList(writer, ctx, sector.Items); err != nil {
		return err
	}
	writer.
		Align().
		WriteBytes(sector.Trailing)

	end := writer.Position() / 8
	writer.
		SeekByte(start + OffsetSectorSize).
		WriteUInt32(uint32(end - start)).
		SeekByte(end)
	return nil
}

func encodePage(writer *lbits.Writer, ctx ditem.Context, page Page) error {
	name, err := charmap.ISO8859_1.NewEncoder().String(page.Name)
	if err != nil {
		err := errors.Wrapf(err, `encodePage error encoding name "%s"`, page.Name)
		return err
	}
	writer.
		WriteString(PageTag, len(PageTag)).
		WriteUInt8(page.Type).
		WriteString(string(page.Reserved), PageReserved).
		WriteNullTerminatedString(name)
	return ditem.EncodeList(writer, ctx, page.Items)
}

func encodePaged(writer *lbits.Writer, ctx ditem.Context, stash Stash) error {
	if !lo.Contains(PagedVersions, stash.Version) {
		return derr.ErrStructuralMismatch{
			Field:    "stash.version",
			Offset:   PagedTagLen * 8,
			Expected: PagedVersions,
			Actual:   stash.Version,
		}
	}
	tag := SharedTag
	if stash.Format == FormatPrivate {
		tag = PrivateTag
	}
	writer.
		WriteString(tag, PagedTagLen).
		WriteString(stash.Version, len(stash.Version))
	if stash.Version == VersionGold {
		writer.WriteUInt32(stash.SharedGold)
	}
	writer.WriteUInt32(uint32(len(stash.Pages)))
	for i, page := range stash.Pages {
		if err := encodePage(writer, ctx, page); err != nil {
			err := errors.Wrapf(err, "encodePaged error writing page %d", i)
			return err
		}
	}
	return nil
}

// Encode writes a stash in its own format. Flat dumps cannot be written.
func Encode(stash Stash, cache *dschema.Cache, config ditem.Config) ([]byte, error) {
	writer := lbits.NewWriter()
	switch stash.Format {
	case FormatSectored:
		for i, sector := range stash.Sectors {
			ctx := ditem.NewContext(sector.Version, cache, config)
			if err := encodeSector(writer, ctx, sector); err != nil {
				err := errors.Wrapf(err, "dstash.Encode error writing sector %d", i)
				return nil, err
			}
		}
	case FormatShared, FormatPrivate:
		ctx := ditem.NewContext(PagedItemVersion, cache, config)
		if err := encodePaged(writer, ctx, stash); err != nil {
			err := errors.Wrap(err, "dstash.Encode error")
			return nil, err
		}
	default:
		return nil, derr.ErrUnsupported{
			Operation: "encode",
			Format:    string(stash.Format),
		}
	}
	return writer.Bytes(), nil
}
