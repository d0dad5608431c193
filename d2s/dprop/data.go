// Package dprop reads and writes lists of magic properties: 9-bit stat ids followed by values
// whose widths come from the schema, terminated by the id 0x1FF.
package dprop

type (
	Property struct {
		ID     uint16 `json:"id"`
		Name   string `json:"name,omitempty"`
		Values []int  `json:"values"`
	}
)

const (
	IDBits     = 9
	Terminator = 0x1FF

	// DescFuncSkillTab splits the parameter into a skill tab and a class.
	DescFuncSkillTab = 14
	// EncodeSkillChance splits the parameter into a skill level and a skill id.
	EncodeSkillChance = 2
	// EncodeCharges additionally packs current and maximum charges into the value.
	EncodeCharges = 3
)
