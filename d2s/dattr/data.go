// Package dattr reads and writes the attribute block of a character file.
package dattr

type (
	Attributes struct {
		Strength          uint32 `json:"strength"`
		Energy            uint32 `json:"energy"`
		Dexterity         uint32 `json:"dexterity"`
		Vitality          uint32 `json:"vitality"`
		UnusedStats       uint32 `json:"unused_stats"`
		UnusedSkillPoints uint32 `json:"unused_skill_points"`
		CurrentHP         uint32 `json:"current_hp"`
		MaxHP             uint32 `json:"max_hp"`
		CurrentMana       uint32 `json:"current_mana"`
		MaxMana           uint32 `json:"max_mana"`
		CurrentStamina    uint32 `json:"current_stamina"`
		MaxStamina        uint32 `json:"max_stamina"`
		Level             uint32 `json:"level"`
		Experience        uint32 `json:"experience"`
		Gold              uint32 `json:"gold"`
		StashedGold       uint32 `json:"stashed_gold"`
		// Fractions keeps the low byte of the fixed point stats, keyed by id.
		Fractions map[uint16]uint8 `json:"fractions,omitempty"`
	}
)

const (
	Header     = "gf"
	IDBits     = 9
	Terminator = 0x1FF
	NrOfStats  = 16

	// Ids from FixedPointFirst to FixedPointLast are stored shifted left by FixedPointShift.
	FixedPointFirst = 6
	FixedPointLast  = 11
	FixedPointShift = 8
)

func isFixedPoint(id uint16) bool {
	return id >= FixedPointFirst && id <= FixedPointLast
}

// field returns the attribute stored under id, or nil for ids outside the block's vocabulary.
func (a *Attributes) field(id uint16) *uint32 {
	switch id {
	case 0:
		return &a.Strength
	case 1:
		return &a.Energy
	case 2:
		return &a.Dexterity
	case 3:
		return &a.Vitality
	case 4:
		return &a.UnusedStats
	case 5:
		return &a.UnusedSkillPoints
	case 6:
		return &a.CurrentHP
	case 7:
		return &a.MaxHP
	case 8:
		return &a.CurrentMana
	case 9:
		return &a.MaxMana
	case 10:
		return &a.CurrentStamina
	case 11:
		return &a.MaxStamina
	case 12:
		return &a.Level
	case 13:
		return &a.Experience
	case 14:
		return &a.Gold
	case 15:
		return &a.StashedGold
	default:
		return nil
	}
}
