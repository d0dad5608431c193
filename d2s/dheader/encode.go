package dheader

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
	"github.com/thanhnguyen2187/d2-savior/ds"
	"golang.org/x/text/encoding/charmap"
)

const (
	statusMask = 1<<StatusHardcore | 1<<StatusDied | 1<<StatusExpansion | 1<<StatusLadder
	questMask  = 1<<QuestCompleted | 1<<QuestRequirementCompleted | 1<<QuestReceived |
		1<<QuestConsumedScroll | 1<<QuestClosed | 1<<QuestDoneRecently
)

func bit[T uint8 | uint16](value bool, position int) T {
	if value {
		return T(1) << position
	}
	return 0
}

func orDefault(bs []byte, fallback []byte) []byte {
	if len(bs) == 0 {
		return fallback
	}
	return bs
}

// writeFixed writes bs into a field of exactly n bytes.
func writeFixed(writer *lbits.Writer, bs []byte, n int) {
	writer.WriteString(string(bs), n)
}

// encodeName fills a name slot with the name, its terminator and the kept tail.
func encodeName(name string, tail []byte) ([]byte, error) {
	bs, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(name))
	if err != nil {
		err := errors.Wrapf(err, `encodeName error encoding "%s"`, name)
		return nil, err
	}
	if len(bs) >= NameLen {
		return nil, derr.ErrStructuralMismatch{
			Field:    "header.name",
			Offset:   OffsetName * 8,
			Expected: "a name of at most 15 characters",
			Actual:   name,
		}
	}
	if len(bs)+1+len(tail) > NameLen {
		return nil, derr.ErrStructuralMismatch{
			Field:    "header.name_tail",
			Offset:   OffsetName * 8,
			Expected: fmt.Sprintf("at most %d bytes after the name", NameLen-1-len(bs)),
			Actual:   len(tail),
		}
	}
	slot := make([]byte, NameLen)
	copy(slot, bs)
	copy(slot[len(bs)+1:], tail)
	return slot, nil
}

func (s Status) encode() uint8 {
	return s.Reserved&^statusMask |
		bit[uint8](s.Hardcore, StatusHardcore) |
		bit[uint8](s.Died, StatusDied) |
		bit[uint8](s.Expansion, StatusExpansion) |
		bit[uint8](s.Ladder, StatusLadder)
}

func (q Quest) encode() uint16 {
	return q.Reserved&^questMask |
		bit[uint16](q.Completed, QuestCompleted) |
		bit[uint16](q.RequirementCompleted, QuestRequirementCompleted) |
		bit[uint16](q.Received, QuestReceived) |
		bit[uint16](q.ConsumedScroll, QuestConsumedScroll) |
		bit[uint16](q.Closed, QuestClosed) |
		bit[uint16](q.DoneRecently, QuestDoneRecently)
}

func encodeQuestsDifficulty(writer *lbits.Writer, quests QuestsDifficulty) error {
	for i, names := range QuestNames {
		act := QuestAct{}
		if i < len(quests.Acts) {
			act = quests.Acts[i]
		}
		if len(act.Quests) > len(names) {
			return derr.ErrStructuralMismatch{
				Field:    "header.quests",
				Offset:   writer.Position(),
				Expected: len(names),
				Actual:   len(act.Quests),
			}
		}
		writer.WriteUInt16(act.Introduced)
		for j := range names {
			quest := Quest{}
			if j < len(act.Quests) {
				quest = act.Quests[j]
			}
			writer.WriteUInt16(quest.encode())
		}
		writer.WriteUInt16(act.Completed)
		if i == 3 {
			writeFixed(writer, quests.ReservedIV, QuestReservedIVLen)
		}
	}
	writeFixed(writer, quests.ReservedV, QuestReservedVLen)
	return nil
}

func encodeWaypointsDifficulty(waypoints WaypointsDifficulty) ([]byte, error) {
	nrOfWaypoints := 0
	for _, names := range WaypointNames {
		nrOfWaypoints += len(names)
	}
	if len(waypoints.Waypoints) > nrOfWaypoints {
		return nil, derr.ErrStructuralMismatch{
			Field:    "header.waypoints",
			Offset:   0,
			Expected: nrOfWaypoints,
			Actual:   len(waypoints.Waypoints),
		}
	}

	reserved := waypoints.Reserved
	if len(reserved) == 0 {
		reserved = DefaultWaypointPrefix
	}
	writer := lbits.NewWriter()
	writeFixed(writer, reserved, WaypointsDifficultyLen)
	writer.SeekByte(WaypointsPrefixLen)
	for _, waypoint := range waypoints.Waypoints {
		writer.WriteBool(waypoint.Active)
	}
	return writer.Bytes(), nil
}

func encodeNPCs(npcs NPCs) ([]byte, error) {
	offsets := make(map[string]int, len(npcBits))
	for _, npc := range npcBits {
		offsets[npc.Name] = npc.Offset
	}

	writer := lbits.NewWriter()
	writeFixed(writer, npcs.Reserved, NPCsLen)
	for difficulty, entries := range npcs.Difficulties {
		if difficulty >= NrOfDifficulties {
			return nil, derr.ErrStructuralMismatch{
				Field:    "header.npcs.difficulties",
				Offset:   OffsetNPCs * 8,
				Expected: NrOfDifficulties,
				Actual:   len(npcs.Difficulties),
			}
		}
		base := difficulty * NPCDifficultyBits
		for _, npc := range entries {
			offset, ok := offsets[npc.Name]
			if !ok {
				return nil, derr.ErrSchemaLookup{
					Kind:   "NPC",
					Key:    npc.Name,
					Field:  "header.npcs",
					Offset: OffsetNPCs * 8,
				}
			}
			// a shared bit is set when any of its flags is set
			if npc.Intro {
				writer.Seek(base + offset).WriteBit(1)
			}
			if npc.Congrats {
				writer.Seek(NPCCongratsOffset + base + offset).WriteBit(1)
			}
		}
	}
	return writer.Bytes(), nil
}

// Encode writes the header at the writer's cursor. FileSize and Checksum are written as they are;
// FixHeader patches both once the whole file is known.
func Encode(writer *lbits.Writer, header Header) error {
	name, err := encodeName(header.Name, header.NameTail)
	if err != nil {
		return err
	}
	nameSlot := name
	reservedBF := make([]byte, ReservedBFLen)
	copy(reservedBF, header.ReservedBF)
	if header.Version >= VersionNameRelocated {
		start := NameRelocatedOffset - OffsetReservedBF
		copy(reservedBF[start:start+NameLen], name)
		nameSlot = header.NameSlot
	}

	writer.
		WriteUInt32(Magic).
		WriteUInt32(header.Version).
		WriteUInt32(header.FileSize).
		WriteUInt32(header.Checksum).
		WriteUInt32(header.ActiveWeapon)
	writeFixed(writer, nameSlot, NameLen)
	writer.
		WriteUInt8(header.Status.encode()).
		WriteUInt8(header.Progression)
	writeFixed(writer, header.Reserved26, 2)
	writer.WriteUInt8(header.Class)
	writeFixed(writer, header.Reserved29, 2)
	writer.
		WriteUInt8(header.Level).
		WriteUInt32(header.Created).
		WriteUInt32(header.LastPlayed)
	writeFixed(writer, header.Reserved34, 4)

	// unassigned hotkeys
	skills := ds.Repeat(AssignedSkillCount, uint32(DefaultSkillUnused))
	copy(skills, header.AssignedSkills)
	for _, skill := range skills {
		writer.WriteUInt32(skill)
	}
	writer.
		WriteUInt32(header.LeftSkill).
		WriteUInt32(header.RightSkill).
		WriteUInt32(header.LeftSwapSkill).
		WriteUInt32(header.RightSwapSkill)

	graphics := make([]byte, AppearanceLen)
	tints := make([]byte, AppearanceLen)
	for i, slot := range header.Appearance {
		if i >= AppearanceLen {
			break
		}
		graphics[i] = slot.Graphic
		tints[i] = slot.Tint
	}
	writer.
		WriteBytes(graphics).
		WriteBytes(tints).
		WriteUInt8(header.Difficulty.Normal).
		WriteUInt8(header.Difficulty.Nightmare).
		WriteUInt8(header.Difficulty.Hell).
		WriteUInt32(header.MapID)
	writeFixed(writer, header.ReservedAF, 2)
	writer.
		WriteUInt16(header.DeadMerc).
		WriteUInt32(header.MercID).
		WriteUInt16(header.MercNameID).
		WriteUInt16(header.MercType).
		WriteUInt32(header.MercExperience).
		WriteBytes(reservedBF)

	writer.WriteString(QuestTag, len(QuestTag))
	writeFixed(writer, orDefault(header.QuestHeader, DefaultQuestHeader), QuestHeaderLen)
	for i := 0; i < NrOfDifficulties; i++ {
		quests := QuestsDifficulty{}
		if i < len(header.Quests) {
			quests = header.Quests[i]
		}
		if err := encodeQuestsDifficulty(writer, quests); err != nil {
			err := errors.Wrapf(err, "dheader.Encode error writing quests of difficulty %d", i)
			return err
		}
	}

	writer.WriteString(WaypointTag, len(WaypointTag))
	writeFixed(writer, orDefault(header.WaypointHeader, DefaultWaypointHeader), WaypointHeaderLen)
	for i := 0; i < NrOfDifficulties; i++ {
		waypoints := WaypointsDifficulty{}
		if i < len(header.Waypoints) {
			waypoints = header.Waypoints[i]
		}
		bs, err := encodeWaypointsDifficulty(waypoints)
		if err != nil {
			err := errors.Wrapf(err, "dheader.Encode error writing waypoints of difficulty %d", i)
			return err
		}
		writer.WriteBytes(bs)
	}

	npcSize := header.NPCSize
	if npcSize == 0 {
		npcSize = DefaultNPCSize
	}
	writer.
		WriteString(NPCTag, len(NPCTag)).
		WriteUInt16(npcSize)
	npcs, err := encodeNPCs(header.NPCs)
	if err != nil {
		err := errors.Wrap(err, "dheader.Encode error writing NPCs")
		return err
	}
	writer.WriteBytes(npcs)
	return nil
}
