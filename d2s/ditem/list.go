package ditem

import (
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

// DecodeList reads a "JM" tagged item list. The count covers top level items only; socketed
// items follow their parent.
func DecodeList(reader *lbits.Reader, ctx Context) ([]Item, error) {
	if err := reader.ExpectTag(Header, "items.header"); err != nil {
		return nil, err
	}
	count, err := reader.ReadUInt16()
	if err != nil {
		err := errors.Wrap(err, "DecodeList error reading item count")
		return nil, err
	}
	items := make([]Item, 0, count)
	for i := 0; i < int(count); i++ {
		item, err := Decode(reader, ctx)
		if err != nil {
			err := errors.Wrapf(err, "DecodeList error reading item %d of %d", i, count)
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func EncodeList(writer *lbits.Writer, ctx Context, items []Item) error {
	writer.WriteString(Header, len(Header))
	writer.WriteUInt16(uint16(len(items)))
	for i, item := range items {
		if err := Encode(writer, ctx, item); err != nil {
			err := errors.Wrapf(err, "EncodeList error writing item %d", i)
			return err
		}
	}
	return nil
}

// CountAll counts the items including everything inside sockets.
func CountAll(items []Item) int {
	count := 0
	for _, item := range items {
		count += 1 + CountAll(item.SocketedItems)
	}
	return count
}
