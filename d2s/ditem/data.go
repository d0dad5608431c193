// Package ditem reads and writes item records.
//
// An item is a bit-packed body (flags, position, type code, and for extended items quality data
// and property lists) followed, on the next byte boundary, by the items inside its sockets.
package ditem

import (
	"github.com/thanhnguyen2187/d2-savior/d2s/dprop"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
)

type (
	Quality uint8

	Config struct {
		// ExtendedStash widens the alternative position field for enlarged stash grids.
		ExtendedStash bool `toml:"extended_stash" json:"extended_stash"`
	}

	Ear struct {
		Class uint8  `json:"class"`
		Level uint8  `json:"level"`
		Name  string `json:"name"`
	}
	RareAffix struct {
		Present bool   `json:"present"`
		ID      uint16 `json:"id"`
	}

	Item struct {
		Identified    bool   `json:"identified"`
		Socketed      bool   `json:"socketed"`
		New           bool   `json:"new"`
		IsEar         bool   `json:"is_ear"`
		Starter       bool   `json:"starter"`
		Simple        bool   `json:"simple"`
		Ethereal      bool   `json:"ethereal"`
		Personalized  bool   `json:"personalized"`
		GivenRuneword bool   `json:"given_runeword"`
		FlagsReserved uint32 `json:"flags_reserved"`

		Version       uint16 `json:"version"`
		LocationID    uint8  `json:"location_id"`
		EquippedID    uint8  `json:"equipped_id"`
		PositionX     uint8  `json:"position_x"`
		PositionY     uint8  `json:"position_y"`
		AltPositionID uint8  `json:"alt_position_id"`

		Ear *Ear `json:"ear,omitempty"`

		Type               string           `json:"type,omitempty"`
		TypeName           string           `json:"type_name,omitempty"`
		Category           dschema.Category `json:"category,omitempty"`
		NrOfItemsInSockets uint8            `json:"nr_of_items_in_sockets"`

		ID               uint32  `json:"id,omitempty"`
		Level            uint8   `json:"level,omitempty"`
		Quality          Quality `json:"quality,omitempty"`
		MultiplePictures bool    `json:"multiple_pictures,omitempty"`
		PictureID        uint8   `json:"picture_id,omitempty"`
		ClassSpecific    bool    `json:"class_specific,omitempty"`
		AutoAffixID      uint16  `json:"auto_affix_id,omitempty"`

		LowQualityID    uint8       `json:"low_quality_id,omitempty"`
		SuperiorID      uint8       `json:"superior_id,omitempty"`
		MagicPrefix     uint16      `json:"magic_prefix,omitempty"`
		MagicPrefixName string      `json:"magic_prefix_name,omitempty"`
		MagicSuffix     uint16      `json:"magic_suffix,omitempty"`
		MagicSuffixName string      `json:"magic_suffix_name,omitempty"`
		SetID           uint16      `json:"set_id,omitempty"`
		SetName         string      `json:"set_name,omitempty"`
		UniqueID        uint16      `json:"unique_id,omitempty"`
		UniqueName      string      `json:"unique_name,omitempty"`
		RareNameID      uint8       `json:"rare_name_id,omitempty"`
		RareName        string      `json:"rare_name,omitempty"`
		RareNameID2     uint8       `json:"rare_name_id2,omitempty"`
		RareName2       string      `json:"rare_name2,omitempty"`
		RareAffixes     []RareAffix `json:"rare_affixes,omitempty"`

		RunewordID       uint16 `json:"runeword_id,omitempty"`
		RunewordName     string `json:"runeword_name,omitempty"`
		RunewordReserved uint8  `json:"runeword_reserved,omitempty"`
		PersonalizedName string `json:"personalized_name,omitempty"`
		TomeData         uint8  `json:"tome_data,omitempty"`
		Timestamp        bool   `json:"timestamp,omitempty"`

		DefenseRating     int    `json:"defense_rating,omitempty"`
		MaxDurability     uint8  `json:"max_durability,omitempty"`
		CurrentDurability uint8  `json:"current_durability,omitempty"`
		DurabilityPad     uint8  `json:"durability_pad,omitempty"`
		Quantity          uint16 `json:"quantity,omitempty"`
		TotalNrOfSockets  uint8  `json:"total_nr_of_sockets,omitempty"`
		SetListMask       uint8  `json:"set_list_mask,omitempty"`

		MagicAttributes    []dprop.Property   `json:"magic_attributes,omitempty"`
		SetAttributes      [][]dprop.Property `json:"set_attributes,omitempty"`
		RunewordAttributes []dprop.Property   `json:"runeword_attributes,omitempty"`
		// SocketModifiers are what the item grants to the item whose socket it fills. They are
		// resolved from the schema and never written.
		SocketModifiers []dprop.Property `json:"socket_modifiers,omitempty"`

		SocketedItems []Item `json:"socketed_items,omitempty"`
	}
)

const (
	QualityLow Quality = iota + 1
	QualityNormal
	QualitySuperior
	QualityMagic
	QualitySet
	QualityRare
	QualityUnique
	QualityCrafted
)

// Flag positions, in bits from the start of the item body.
const (
	FlagIdentified    = 4
	FlagSocketed      = 11
	FlagNew           = 13
	FlagIsEar         = 16
	FlagStarter       = 17
	FlagSimple        = 21
	FlagEthereal      = 22
	FlagPersonalized  = 24
	FlagGivenRuneword = 26
)

const (
	Header         = "JM"
	FlagsBits      = 32
	MaxSocketDepth = 6

	LocationBits       = 3
	EquippedBits       = 4
	PositionBits       = 4
	AltPositionBits    = 3
	AltPositionBitsExt = 4

	EarClassBits = 3
	EarLevelBits = 7
	CharBits     = 7
	MaxNameLen   = 15

	IDBits              = 32
	LevelBits           = 7
	QualityBits         = 4
	PictureIDBits       = 3
	AutoAffixBits       = 11
	LowQualityBits      = 3
	SuperiorBits        = 3
	MagicAffixBits      = 11
	SetIDBits           = 12
	UniqueIDBits        = 12
	RareNameBits        = 8
	RareAffixCount      = 6
	RunewordIDBits      = 12
	RunewordReserveBits = 4
	TomeDataBits        = 5
	DefenseBits         = 11
	DefenseBias         = 10
	DurabilityBits      = 8
	QuantityBits        = 9
	SocketsBits         = 4
	SetListMaskBits     = 5
	SetListCount        = 5

	// BadRunewordID is written by some servers for one runeword; it is read as RunewordIDFix.
	BadRunewordID = 2718
	RunewordIDFix = 48
)

var (
	TomeTypes = map[string]bool{
		"tbk": true,
		"ibk": true,
	}
)

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityNormal:
		return "normal"
	case QualitySuperior:
		return "superior"
	case QualityMagic:
		return "magic"
	case QualitySet:
		return "set"
	case QualityRare:
		return "rare"
	case QualityUnique:
		return "unique"
	case QualityCrafted:
		return "crafted"
	default:
		return "unknown"
	}
}
