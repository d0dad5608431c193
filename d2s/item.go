package d2s

import (
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
)

// DecodeItem reads a standalone item record written by a game of the given format version.
func DecodeItem(bs []byte, version uint32, cache *dschema.Cache, config Config) (*ditem.Item, error) {
	return ditem.DecodeRecord(bs, ditem.NewContext(version, cache, config))
}

func EncodeItem(item ditem.Item, version uint32, cache *dschema.Cache, config Config) ([]byte, error) {
	return ditem.EncodeRecord(item, ditem.NewContext(version, cache, config))
}
