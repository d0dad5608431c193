package ditem

import (
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
)

type (
	// Layout is the set of version-dependent choices of the item format.
	Layout struct {
		Name        string
		MaxVersion  uint32
		ItemHeader  bool
		VersionBits int
		HuffmanType bool
	}
	// Context is everything a call needs besides the buffer. Build it once per file.
	Context struct {
		Version uint32
		Layout  Layout
		Schema  *dschema.Schema
		Config  Config
	}
)

const (
	LegacyMaxVersion = 0x60
	// VersionD2R is the first version without per-item headers.
	VersionD2R = 0x61
)

// Layouts is ordered by MaxVersion; the first entry covering a version wins.
var Layouts = []Layout{
	{
		Name:        "legacy",
		MaxVersion:  LegacyMaxVersion,
		ItemHeader:  true,
		VersionBits: 10,
		HuffmanType: false,
	},
	{
		Name:        "modern",
		MaxVersion:  ^uint32(0),
		ItemHeader:  false,
		VersionBits: 3,
		HuffmanType: true,
	},
}

func LayoutFor(version uint32) Layout {
	for _, layout := range Layouts {
		if version <= layout.MaxVersion {
			return layout
		}
	}
	return Layouts[len(Layouts)-1]
}

func NewContext(version uint32, cache *dschema.Cache, config Config) Context {
	return Context{
		Version: version,
		Layout:  LayoutFor(version),
		Schema:  cache.For(version),
		Config:  config,
	}
}

func (c Context) AltPositionBits() int {
	if c.Config.ExtendedStash {
		return AltPositionBitsExt
	}
	return AltPositionBits
}
