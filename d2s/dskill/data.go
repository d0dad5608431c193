// Package dskill reads and writes the skill block of a character file.
package dskill

type (
	Skill struct {
		ID     uint16 `json:"id"`
		Name   string `json:"name,omitempty"`
		Points uint8  `json:"points"`
	}
)

const (
	Header     = "if"
	NrOfSkills = 30
)

// ClassOffsets is the position of each class's first skill in the global skill table, indexed by
// class id.
var ClassOffsets = []uint16{
	6,   // Amazon
	36,  // Sorceress
	66,  // Necromancer
	96,  // Paladin
	126, // Barbarian
	221, // Druid
	251, // Assassin
}
