// Package dstash reads and writes shared stash containers.
//
// Three container formats exist: the sectored format of the remastered game, the paged formats
// written by stash mods for shared ("SSS") and private ("CSTM") stashes, and the flat item dumps
// written by stash managers ("D2X"). All of them hold item lists read by ditem.
package dstash

import (
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
)

type (
	Format string

	Stash struct {
		Format Format `json:"format"`
		// Version is the two character version of paged stashes.
		Version    string   `json:"version,omitempty"`
		SharedGold uint32   `json:"shared_gold,omitempty"`
		Pages      []Page   `json:"pages,omitempty"`
		Sectors    []Sector `json:"sectors,omitempty"`
		Flat       *Flat    `json:"flat,omitempty"`
	}

	Page struct {
		Type     uint8        `json:"type"`
		Reserved []byte       `json:"reserved"`
		Name     string       `json:"name"`
		Items    []ditem.Item `json:"items"`
	}

	Sector struct {
		Kind     uint32       `json:"kind"`
		Version  uint32       `json:"version"`
		Gold     uint32       `json:"gold"`
		Size     uint32       `json:"size"`
		Reserved []byte       `json:"reserved"`
		Items    []ditem.Item `json:"items"`
		// Trailing holds bytes between the item list and the end of the sector.
		Trailing []byte `json:"trailing,omitempty"`
	}

	Flat struct {
		Version  uint16       `json:"version"`
		Checksum uint32       `json:"checksum"`
		Items    []ditem.Item `json:"items"`
	}
)

const (
	FormatSectored Format = "sectored"
	FormatShared   Format = "shared"
	FormatPrivate  Format = "private"
	FormatFlat     Format = "flat"
)

const (
	SectorMagic        = 0xAA55AA55
	SectorHeaderLen    = 64
	SectorReservedLen  = 44
	OffsetSectorSize   = 16
	SectorKindHardcore = 0

	SharedTag    = "SSS\x00"
	PrivateTag   = "CSTM"
	PagedTagLen  = 4
	PageTag      = "ST"
	PageReserved = 3
	VersionGold  = "02"

	FlatTag = "D2X"

	// PagedItemVersion is the file version whose item layout paged and flat stashes use.
	PagedItemVersion = 0x60
)

var (
	PagedVersions = []string{"01", VersionGold}
)

func (s Sector) Hardcore() bool {
	return s.Kind == SectorKindHardcore
}

// Items returns every top level item of the stash, page after page or sector after sector.
func (s Stash) Items() []ditem.Item {
	items := make([]ditem.Item, 0)
	for _, page := range s.Pages {
		items = append(items, page.Items...)
	}
	for _, sector := range s.Sectors {
		items = append(items, sector.Items...)
	}
	if s.Flat != nil {
		items = append(items, s.Flat.Items...)
	}
	return items
}
