package dheader

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
	"golang.org/x/text/encoding/charmap"
)

// decodeName splits a name slot into the name and whatever follows its terminator. The tail is
// kept only when it is not all zeros.
func decodeName(bs []byte) (string, []byte, error) {
	var tail []byte
	if i := bytes.IndexByte(bs, 0); i >= 0 {
		if bytes.Count(bs[i+1:], []byte{0}) != len(bs)-i-1 {
			tail = bytes.Clone(bs[i+1:])
		}
		bs = bs[:i]
	}
	name, err := charmap.ISO8859_1.NewDecoder().Bytes(bs)
	if err != nil {
		err := errors.Wrapf(err, `decodeName error decoding "%v"`, bs)
		return "", nil, err
	}
	return string(name), tail, nil
}

func decodeStatus(b uint8) Status {
	return Status{
		Hardcore:  b>>StatusHardcore&1 == 1,
		Died:      b>>StatusDied&1 == 1,
		Expansion: b>>StatusExpansion&1 == 1,
		Ladder:    b>>StatusLadder&1 == 1,
		Reserved:  b &^ statusMask,
	}
}

func decodeQuest(value uint16) Quest {
	return Quest{
		Completed:            value>>QuestCompleted&1 == 1,
		RequirementCompleted: value>>QuestRequirementCompleted&1 == 1,
		Received:             value>>QuestReceived&1 == 1,
		ConsumedScroll:       value>>QuestConsumedScroll&1 == 1,
		Closed:               value>>QuestClosed&1 == 1,
		DoneRecently:         value>>QuestDoneRecently&1 == 1,
		Reserved:             value &^ questMask,
	}
}

func decodeQuestAct(reader *lbits.Reader, names []string) (QuestAct, error) {
	act := QuestAct{}
	introduced, err := reader.ReadUInt16()
	if err != nil {
		return act, err
	}
	act.Introduced = introduced
	act.Quests = make([]Quest, 0, len(names))
	for _, name := range names {
		value, err := reader.ReadUInt16()
		if err != nil {
			err := errors.Wrapf(err, `decodeQuestAct error reading quest "%s"`, name)
			return act, err
		}
		quest := decodeQuest(value)
		quest.Name = name
		act.Quests = append(act.Quests, quest)
	}
	completed, err := reader.ReadUInt16()
	if err != nil {
		return act, err
	}
	act.Completed = completed
	return act, nil
}

// decodeQuestsDifficulty reads the 96 bytes of one difficulty. Act IV has three quests and is
// followed by reserved bytes, so act V starts at 0x44.
func decodeQuestsDifficulty(reader *lbits.Reader) (*QuestsDifficulty, error) {
	quests := QuestsDifficulty{
		Acts: make([]QuestAct, 0, len(QuestNames)),
	}
	for i, names := range QuestNames {
		act, err := decodeQuestAct(reader, names)
		if err != nil {
			err := errors.Wrapf(err, "decodeQuestsDifficulty error reading act %d", i+1)
			return nil, err
		}
		quests.Acts = append(quests.Acts, act)
		if i == 3 {
			reserved, err := reader.ReadBytes(QuestReservedIVLen)
			if err != nil {
				return nil, err
			}
			quests.ReservedIV = reserved
		}
	}
	reserved, err := reader.ReadBytes(QuestReservedVLen)
	if err != nil {
		return nil, err
	}
	quests.ReservedV = reserved
	return &quests, nil
}

func decodeWaypointsDifficulty(raw []byte) (*WaypointsDifficulty, error) {
	reader := lbits.NewReader(raw)
	if err := reader.SkipBytes(WaypointsPrefixLen); err != nil {
		return nil, err
	}
	waypoints := WaypointsDifficulty{}
	for act, names := range WaypointNames {
		for _, name := range names {
			active, err := reader.ReadBool()
			if err != nil {
				err := errors.Wrapf(err, `decodeWaypointsDifficulty error reading "%s"`, name)
				return nil, err
			}
			waypoints.Waypoints = append(
				waypoints.Waypoints,
				Waypoint{
					Act:    act + 1,
					Name:   name,
					Active: active,
				},
			)
		}
	}

	writer := lbits.NewWriter().WriteBytes(raw)
	writer.SeekByte(WaypointsPrefixLen)
	for range waypoints.Waypoints {
		writer.WriteBit(0)
	}
	waypoints.Reserved = writer.Bytes()
	return &waypoints, nil
}

func decodeNPCs(raw []byte) (*NPCs, error) {
	reader := lbits.NewReader(raw)
	writer := lbits.NewWriter().WriteBytes(raw)
	readBit := func(position int) (bool, error) {
		if err := reader.Seek(position); err != nil {
			return false, err
		}
		writer.Seek(position).WriteBit(0)
		return reader.ReadBool()
	}

	npcs := NPCs{
		Difficulties: make([][]NPC, 0, NrOfDifficulties),
	}
	for difficulty := 0; difficulty < NrOfDifficulties; difficulty++ {
		base := difficulty * NPCDifficultyBits
		entries := make([]NPC, 0, len(npcBits))
		for _, npc := range npcBits {
			intro, err := readBit(base + npc.Offset)
			if err != nil {
				return nil, err
			}
			congrats, err := readBit(NPCCongratsOffset + base + npc.Offset)
			if err != nil {
				return nil, err
			}
			entries = append(
				entries,
				NPC{
					Name:     npc.Name,
					Intro:    intro,
					Congrats: congrats,
				},
			)
		}
		npcs.Difficulties = append(npcs.Difficulties, entries)
	}
	npcs.Reserved = writer.Bytes()
	return &npcs, nil
}

func createMagicReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		offset := reader.Position()
		magic, err := reader.ReadUInt32()
		if err != nil {
			return nil, err
		}
		if magic != Magic {
			return nil, derr.ErrStructuralMismatch{
				Field:    "header.magic",
				Offset:   offset,
				Expected: fmt.Sprintf("%#x", Magic),
				Actual:   fmt.Sprintf("%#x", magic),
			}
		}
		return magic, nil
	}
}

func createTagReadFunction(reader *lbits.Reader, tag string, field string) lbits.ReadFunction {
	return func() (any, error) {
		return nil, reader.ExpectTag(tag, field)
	}
}

func createStatusReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		b, err := reader.ReadUInt8()
		if err != nil {
			return nil, err
		}
		return decodeStatus(b), nil
	}
}

func createAssignedSkillsReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		skills := make([]uint32, 0, AssignedSkillCount)
		for i := 0; i < AssignedSkillCount; i++ {
			skill, err := reader.ReadUInt32()
			if err != nil {
				return nil, err
			}
			skills = append(skills, skill)
		}
		return skills, nil
	}
}

func createAppearanceReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		graphics, err := reader.ReadBytes(AppearanceLen)
		if err != nil {
			return nil, err
		}
		tints, err := reader.ReadBytes(AppearanceLen)
		if err != nil {
			return nil, err
		}
		slots := make([]AppearanceSlot, 0, AppearanceLen)
		for i, slot := range AppearanceSlots {
			slots = append(
				slots,
				AppearanceSlot{
					Slot:    slot,
					Graphic: graphics[i],
					Tint:    tints[i],
				},
			)
		}
		return slots, nil
	}
}

func createDifficultyReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		bs, err := reader.ReadBytes(NrOfDifficulties)
		if err != nil {
			return nil, err
		}
		return Difficulty{
			Normal:    bs[0],
			Nightmare: bs[1],
			Hell:      bs[2],
		}, nil
	}
}

func createQuestsReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		quests := make([]QuestsDifficulty, 0, NrOfDifficulties)
		for i := 0; i < NrOfDifficulties; i++ {
			difficulty, err := decodeQuestsDifficulty(reader)
			if err != nil {
				err := errors.Wrapf(err, "reading quests of difficulty %d", i)
				return nil, err
			}
			quests = append(quests, *difficulty)
		}
		return quests, nil
	}
}

func createWaypointsReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		waypoints := make([]WaypointsDifficulty, 0, NrOfDifficulties)
		for i := 0; i < NrOfDifficulties; i++ {
			raw, err := reader.ReadBytes(WaypointsDifficultyLen)
			if err != nil {
				return nil, err
			}
			difficulty, err := decodeWaypointsDifficulty(raw)
			if err != nil {
				err := errors.Wrapf(err, "reading waypoints of difficulty %d", i)
				return nil, err
			}
			waypoints = append(waypoints, *difficulty)
		}
		return waypoints, nil
	}
}

func createNPCsReadFunction(reader *lbits.Reader) lbits.ReadFunction {
	return func() (any, error) {
		raw, err := reader.ReadBytes(NPCsLen)
		if err != nil {
			return nil, err
		}
		return decodeNPCs(raw)
	}
}

// Decode reads the header from the start of a character file.
func Decode(reader *lbits.Reader) (*Header, error) {
	readU8 := lbits.CreateUIntReadFunction(reader, 8)
	readU16 := lbits.CreateUIntReadFunction(reader, 16)
	readU32 := lbits.CreateUIntReadFunction(reader, 32)
	readNBytes := func(n int) lbits.ReadFunction {
		return lbits.CreateNBytesReadFunction(reader, n)
	}

	instructions := []lbits.Instruction{
		{Key: "", ReadFunction: createMagicReadFunction(reader)},
		{Key: "version", ReadFunction: readU32},
		{Key: "filesize", ReadFunction: readU32},
		{Key: "checksum", ReadFunction: readU32},
		{Key: "active_weapon", ReadFunction: readU32},
		{Key: "name_slot", ReadFunction: readNBytes(NameLen)},
		{Key: "status", ReadFunction: createStatusReadFunction(reader)},
		{Key: "progression", ReadFunction: readU8},
		{Key: "reserved_26", ReadFunction: readNBytes(2)},
		{Key: "class", ReadFunction: readU8},
		{Key: "reserved_29", ReadFunction: readNBytes(2)},
		{Key: "level", ReadFunction: readU8},
		{Key: "created", ReadFunction: readU32},
		{Key: "last_played", ReadFunction: readU32},
		{Key: "reserved_34", ReadFunction: readNBytes(4)},
		{Key: "assigned_skills", ReadFunction: createAssignedSkillsReadFunction(reader)},
		{Key: "left_skill", ReadFunction: readU32},
		{Key: "right_skill", ReadFunction: readU32},
		{Key: "left_swap_skill", ReadFunction: readU32},
		{Key: "right_swap_skill", ReadFunction: readU32},
		{Key: "appearance", ReadFunction: createAppearanceReadFunction(reader)},
		{Key: "difficulty", ReadFunction: createDifficultyReadFunction(reader)},
		{Key: "map_id", ReadFunction: readU32},
		{Key: "reserved_af", ReadFunction: readNBytes(2)},
		{Key: "dead_merc", ReadFunction: readU16},
		{Key: "merc_id", ReadFunction: readU32},
		{Key: "merc_name_id", ReadFunction: readU16},
		{Key: "merc_type", ReadFunction: readU16},
		{Key: "merc_experience", ReadFunction: readU32},
		{Key: "reserved_bf", ReadFunction: readNBytes(ReservedBFLen)},
		{Key: "", ReadFunction: createTagReadFunction(reader, QuestTag, "header.quests.tag")},
		{Key: "quest_header", ReadFunction: readNBytes(QuestHeaderLen)},
		{Key: "quests", ReadFunction: createQuestsReadFunction(reader)},
		{Key: "", ReadFunction: createTagReadFunction(reader, WaypointTag, "header.waypoints.tag")},
		{Key: "waypoint_header", ReadFunction: readNBytes(WaypointHeaderLen)},
		{Key: "waypoints", ReadFunction: createWaypointsReadFunction(reader)},
		{Key: "", ReadFunction: createTagReadFunction(reader, NPCTag, "header.npcs.tag")},
		{Key: "npc_size", ReadFunction: readU16},
		{Key: "npcs", ReadFunction: createNPCsReadFunction(reader)},
	}

	header, err := lbits.ExecuteInstructions[Header](instructions)
	if err != nil {
		err := errors.Wrap(err, "dheader.Decode error")
		return nil, err
	}

	slot := header.NameSlot
	header.NameSlot = nil
	if header.Version >= VersionNameRelocated {
		if bytes.Count(slot, []byte{0}) != len(slot) {
			header.NameSlot = slot
		}
		start := NameRelocatedOffset - OffsetReservedBF
		relocated := header.ReservedBF[start : start+NameLen]
		slot = bytes.Clone(relocated)
		copy(relocated, make([]byte, NameLen))
	}
	name, tail, err := decodeName(slot)
	if err != nil {
		return nil, err
	}
	header.Name = name
	header.NameTail = tail

	return header, nil
}
