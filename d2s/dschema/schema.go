package dschema

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

func Load(path string) (*Schema, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		err := errors.Wrapf(err, `Load error reading schema file "%s"`, path)
		return nil, err
	}
	schema, err := Parse(bs)
	if err != nil {
		err := errors.Wrapf(err, `Load error parsing schema file "%s"`, path)
		return nil, err
	}
	return schema, nil
}

func Parse(bs []byte) (*Schema, error) {
	schema := Schema{}
	if err := yaml.Unmarshal(bs, &schema); err != nil {
		err := errors.Wrap(err, "Parse error unmarshalling YAML")
		return nil, err
	}
	schema.fillDefaults()
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (s *Schema) fillDefaults() {
	if s.Stats == nil {
		s.Stats = map[uint16]Stat{}
	}
	if s.Items == nil {
		s.Items = map[string]ItemType{}
	}
	if s.Gems == nil {
		s.Gems = map[string]Gem{}
	}
}

// Validate reports every inconsistency of the schema at once.
func (s *Schema) Validate() error {
	var result *multierror.Error
	for id, stat := range s.Stats {
		if stat.SaveBits <= 0 && stat.CSvBits <= 0 {
			result = multierror.Append(result, fmt.Errorf(`stat %d "%s" has no bit width`, id, stat.Name))
		}
		for i := 1; i < stat.NumProps; i++ {
			if _, ok := s.Stats[id+uint16(i)]; !ok {
				result = multierror.Append(
					result,
					fmt.Errorf(`stat %d "%s" chains to missing stat %d`, id, stat.Name, id+uint16(i)),
				)
			}
		}
	}
	for code, itemType := range s.Items {
		if len(code) < 3 || len(code) > 4 {
			result = multierror.Append(result, fmt.Errorf(`item type code "%s" is not 3-4 characters`, code))
		}
		if !itemType.Category.Valid() {
			result = multierror.Append(
				result,
				fmt.Errorf(`item type "%s" has invalid category "%s"`, code, itemType.Category),
			)
		}
	}
	for code, gem := range s.Gems {
		for _, mod := range lo.Flatten([][]GemMod{gem.Weapon, gem.Armor, gem.Shield}) {
			if _, ok := s.Stats[mod.ID]; !ok {
				result = multierror.Append(result, fmt.Errorf(`gem "%s" refers to missing stat %d`, code, mod.ID))
			}
		}
	}
	for _, adjustment := range s.Adjustments {
		for id := range adjustment.Stats {
			if _, ok := s.Stats[id]; !ok {
				result = multierror.Append(
					result,
					fmt.Errorf(`adjustment for version %d refers to missing stat %d`, adjustment.MinVersion, id),
				)
			}
		}
	}
	return result.ErrorOrNil()
}

func (s *Schema) Stat(id uint16) (Stat, bool) {
	stat, ok := s.Stats[id]
	return stat, ok
}

func (s *Schema) ItemType(code string) (ItemType, bool) {
	itemType, ok := s.Items[code]
	return itemType, ok
}

// ModsFor returns the socket modifiers a gem, rune or jewel grants inside a parent of the given
// category.
func (s *Schema) ModsFor(code string, parent Category) []GemMod {
	gem, ok := s.Gems[code]
	if !ok {
		return nil
	}
	switch parent {
	case CategoryWeapon:
		return gem.Weapon
	case CategoryArmor:
		return gem.Armor
	case CategoryShield:
		return gem.Shield
	default:
		return nil
	}
}

func (s *Schema) ClassName(class uint8) string {
	if int(class) < len(s.Classes) {
		return s.Classes[class]
	}
	return ""
}

// Name looks an id up in one of the name tables. Unknown ids have an empty name.
func Name(table map[uint16]string, id uint16) string {
	return table[id]
}

// adjusted derives the schema for a file version. The receiver is returned as is when no
// adjustment applies.
func (s *Schema) adjusted(version uint32) *Schema {
	applicable := make([]Adjustment, 0)
	for _, adjustment := range s.Adjustments {
		if version >= adjustment.MinVersion {
			applicable = append(applicable, adjustment)
		}
	}
	if len(applicable) == 0 {
		return s
	}

	derived := *s
	derived.Stats = make(map[uint16]Stat, len(s.Stats))
	for id, stat := range s.Stats {
		derived.Stats[id] = stat
	}
	for _, adjustment := range applicable {
		for id, patch := range adjustment.Stats {
			stat := derived.Stats[id]
			if patch.SaveBits != nil {
				stat.SaveBits = *patch.SaveBits
			}
			if patch.SaveAdd != nil {
				stat.SaveAdd = *patch.SaveAdd
			}
			derived.Stats[id] = stat
		}
	}
	return &derived
}
