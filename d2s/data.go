// Package d2s reads and writes character save files and standalone item records.
//
// A save is the header, the attribute and skill blocks, then the item lists: worn and carried
// items, corpses, and for expansion characters the mercenary's items and the golem item.
package d2s

import (
	"github.com/thanhnguyen2187/d2-savior/d2s/dattr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dheader"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dskill"
)

type (
	Config = ditem.Config

	Save struct {
		Header     dheader.Header   `json:"header"`
		Attributes dattr.Attributes `json:"attributes"`
		Skills     []dskill.Skill   `json:"skills"`
		Items      []ditem.Item     `json:"items"`
		Corpses    []Corpse         `json:"corpses"`
		MercItems  []ditem.Item     `json:"merc_items"`
		GolemItem  *ditem.Item      `json:"golem_item"`
		// GolemFlag keeps a golem flag other than 0 or GolemItemPresent. No item follows it.
		GolemFlag uint8 `json:"golem_flag,omitempty"`
		// Absent lists the sections a freshly created character was saved without. They are
		// left out when encoding as well.
		Absent []string `json:"absent,omitempty"`
	}

	Corpse struct {
		Unknown uint32       `json:"unknown"`
		X       uint32       `json:"x"`
		Y       uint32       `json:"y"`
		Items   []ditem.Item `json:"items"`
	}
)

const (
	MercHeader       = "jf"
	GolemHeader      = "kf"
	GolemItemPresent = 1

	SectionSkills    = "skills"
	SectionCorpses   = "corpses"
	SectionMercItems = "merc_items"
	SectionGolemItem = "golem_item"

	// TolerantLevel is the only character level whose missing sections are tolerated.
	TolerantLevel = 1
)

func (s Save) IsDead() bool {
	return len(s.Corpses) > 0
}

func (s Save) isAbsent(section string) bool {
	for _, absent := range s.Absent {
		if absent == section {
			return true
		}
	}
	return false
}
