// Package dschema is the read-only description of stats and item types that the codecs are driven
// by: bit widths, biases and encodings per stat id, category and stackability per item type, plus
// the name tables used to make decoded values readable.
package dschema

import (
	"sync"
)

type (
	Category string

	Stat struct {
		Name          string `yaml:"name" json:"name"`
		SaveBits      int    `yaml:"save_bits" json:"save_bits"`
		SaveAdd       int    `yaml:"save_add" json:"save_add"`
		SaveParamBits int    `yaml:"save_param_bits" json:"save_param_bits"`
		Encode        int    `yaml:"encode" json:"encode"`
		DescFunc      int    `yaml:"desc_func" json:"desc_func"`
		NumProps      int    `yaml:"num_props" json:"num_props"`
		// CSvBits is the width used by the character attribute block
		CSvBits int `yaml:"csv_bits" json:"csv_bits"`
	}
	ItemType struct {
		Name      string   `yaml:"name" json:"name"`
		Category  Category `yaml:"category" json:"category"`
		Stackable bool     `yaml:"stackable" json:"stackable"`
		Width     int      `yaml:"width" json:"width"`
		Height    int      `yaml:"height" json:"height"`
	}
	GemMod struct {
		ID     uint16 `yaml:"id" json:"id"`
		Values []int  `yaml:"values" json:"values"`
	}
	Gem struct {
		Weapon []GemMod `yaml:"weapon" json:"weapon"`
		Armor  []GemMod `yaml:"armor" json:"armor"`
		Shield []GemMod `yaml:"shield" json:"shield"`
	}
	StatPatch struct {
		SaveBits *int `yaml:"save_bits" json:"save_bits"`
		SaveAdd  *int `yaml:"save_add" json:"save_add"`
	}
	// Adjustment patches stats for every file version at or above MinVersion.
	Adjustment struct {
		MinVersion uint32               `yaml:"min_version" json:"min_version"`
		Stats      map[uint16]StatPatch `yaml:"stats" json:"stats"`
	}
	Schema struct {
		Stats         map[uint16]Stat     `yaml:"stats" json:"stats"`
		Items         map[string]ItemType `yaml:"items" json:"items"`
		Gems          map[string]Gem      `yaml:"gems" json:"gems"`
		MagicPrefixes map[uint16]string   `yaml:"magic_prefixes" json:"magic_prefixes"`
		MagicSuffixes map[uint16]string   `yaml:"magic_suffixes" json:"magic_suffixes"`
		RareNames     map[uint16]string   `yaml:"rare_names" json:"rare_names"`
		SetItems      map[uint16]string   `yaml:"set_items" json:"set_items"`
		UniqueItems   map[uint16]string   `yaml:"unique_items" json:"unique_items"`
		Runewords     map[uint16]string   `yaml:"runewords" json:"runewords"`
		Skills        map[uint16]string   `yaml:"skills" json:"skills"`
		Classes       []string            `yaml:"classes" json:"classes"`
		Adjustments   []Adjustment        `yaml:"adjustments" json:"adjustments"`
	}

	// Cache hands out one derived schema per file version. The base schema is never mutated.
	Cache struct {
		base    *Schema
		mutex   sync.RWMutex
		derived map[uint32]*Schema
	}
)

const (
	CategoryArmor  Category = "armor"
	CategoryShield Category = "shield"
	CategoryWeapon Category = "weapon"
	CategoryOther  Category = "other"
)

// HasDefense reports whether items of the category carry a defense rating.
func (c Category) HasDefense() bool {
	return c == CategoryArmor || c == CategoryShield
}

// HasDurability reports whether items of the category carry a durability pair.
func (c Category) HasDurability() bool {
	return c == CategoryArmor || c == CategoryShield || c == CategoryWeapon
}

func (c Category) Valid() bool {
	switch c {
	case CategoryArmor, CategoryShield, CategoryWeapon, CategoryOther:
		return true
	default:
		return false
	}
}
