package dheader

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

func encodeHeader(t *testing.T, header Header) []byte {
	writer := lbits.NewWriter()
	require.NoError(t, Encode(writer, header))
	bs := writer.Bytes()
	require.Len(t, bs, Size)
	return bs
}

func decodeHeader(t *testing.T, bs []byte) *Header {
	reader := lbits.NewReader(bs)
	header, err := Decode(reader)
	require.NoError(t, err)
	assert.Equal(t, Size, reader.BytePosition())
	return header
}

func TestEncode_Layout(t *testing.T) {
	bs := encodeHeader(t, Header{Version: 0x60, Name: "Tester", Level: 7})

	assert.Equal(t, []byte{0x55, 0xaa, 0x55, 0xaa, 0x60, 0, 0, 0}, bs[:8])
	assert.Equal(t, []byte("Tester\x00"), bs[OffsetName:OffsetName+7])
	assert.Equal(t, byte(7), bs[0x2b])
	assert.Equal(t, []byte{0xff, 0xff, 0, 0}, bs[0x38:0x3c])
	assert.Equal(t, []byte(QuestTag), bs[OffsetQuestTag:OffsetQuestTag+4])
	assert.Equal(t, DefaultQuestHeader, bs[OffsetQuestTag+4:OffsetQuestTag+10])
	assert.Equal(t, []byte(WaypointTag), bs[OffsetWaypointTag:OffsetWaypointTag+2])
	assert.Equal(t, DefaultWaypointPrefix, bs[0x281:0x283])
	assert.Equal(t, []byte{0x01, 0x77, 0x34, 0x00}, bs[OffsetNPCTag:OffsetNPCs])

	// hotkeys past the assigned ones stay unused
	bs = encodeHeader(t, Header{Version: 0x60, AssignedSkills: []uint32{126}})
	assert.Equal(t, []byte{126, 0, 0, 0, 0xff, 0xff, 0, 0}, bs[0x38:0x40])
	assert.Equal(t, []byte{0xff, 0xff, 0, 0}, bs[0x74:0x78])
}

func TestDecode_Defaults(t *testing.T) {
	bs := encodeHeader(t, Header{Version: 0x60, Name: "Tester"})
	header := decodeHeader(t, bs)

	assert.Equal(t, "Tester", header.Name)
	assert.Equal(t, uint32(0x60), header.Version)
	require.Len(t, header.Quests, NrOfDifficulties)
	require.Len(t, header.Quests[0].Acts, 5)
	assert.Len(t, header.Quests[0].Acts[3].Quests, 3)
	assert.Equal(t, "eve_of_destruction", header.Quests[2].Acts[4].Quests[5].Name)
	require.Len(t, header.Waypoints, NrOfDifficulties)
	assert.Len(t, header.Waypoints[1].Waypoints, 39)
	assert.Equal(t, "river_of_flame", header.Waypoints[1].Waypoints[29].Name)
	assert.Equal(t, 4, header.Waypoints[1].Waypoints[29].Act)
	require.Len(t, header.NPCs.Difficulties, NrOfDifficulties)
	assert.Len(t, header.NPCs.Difficulties[2], 26)
	assert.Len(t, header.Appearance, AppearanceLen)
	assert.Equal(t, "shield", header.Appearance[7].Slot)

	assert.Equal(t, bs, encodeHeader(t, *header))
}

func createHeader() Header {
	header := Header{
		Version:      0x60,
		ActiveWeapon: 1,
		Name:         "Tester",
		Status: Status{
			Hardcore:  true,
			Expansion: true,
			Reserved:  1,
		},
		Progression: 5,
		Class:       4,
		Level:       42,
		Created:     0x11223344,
		LastPlayed:  0x55667788,
		LeftSkill:   126,
		RightSkill:  149,
		Difficulty: Difficulty{
			Normal: 0x84,
		},
		MapID:          0xdeadbeef,
		MercID:         0x1234,
		MercNameID:     3,
		MercType:       9,
		MercExperience: 100000,
		Quests: []QuestsDifficulty{
			{
				Acts: []QuestAct{
					{
						Introduced: 1,
						Quests: []Quest{
							{Completed: true, Closed: true},
							{Received: true, Reserved: 1 << 3},
						},
						Completed: 1,
					},
					{},
					{},
					{},
					{Introduced: 1},
				},
			},
		},
		Waypoints: []WaypointsDifficulty{
			{
				Waypoints: []Waypoint{
					{Active: true},
					{}, {}, {}, {}, {}, {}, {}, {},
					{Active: true},
				},
			},
		},
		NPCs: NPCs{
			Difficulties: [][]NPC{
				{{Name: "kashya", Congrats: true}},
				{{Name: "kashya", Intro: true}},
			},
		},
	}
	return header
}

func TestEncode_Bits(t *testing.T) {
	bs := encodeHeader(t, createHeader())

	assert.Equal(t, byte(1|1<<StatusHardcore|1<<StatusExpansion), bs[0x24])
	assert.Equal(t, byte(0x84), bs[0xa8])
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, bs[0xab:0xaf])

	quests := 0x159
	assert.Equal(t, []byte{0x01, 0x00}, bs[quests:quests+2])
	assert.Equal(t, []byte{0x01, 0x10}, bs[quests+2:quests+4])
	assert.Equal(t, []byte{0x0c, 0x00}, bs[quests+4:quests+6])
	assert.Equal(t, []byte{0x01, 0x00}, bs[quests+0x0e:quests+0x10])
	assert.Equal(t, []byte{0x01, 0x00}, bs[quests+0x44:quests+0x46])

	waypoints := 0x281
	assert.Equal(t, []byte{0x02, 0x01, 0x01, 0x02}, bs[waypoints:waypoints+4])
	assert.Equal(t, []byte{0x02, 0x01, 0x00}, bs[waypoints+24:waypoints+27])

	assert.Equal(t, byte(0x10), bs[OffsetNPCs+1])
	assert.Equal(t, byte(0x10), bs[OffsetNPCs+24])
	assert.Equal(t, byte(0x00), bs[OffsetNPCs])
}

func TestRoundTrip(t *testing.T) {
	bs := encodeHeader(t, createHeader())
	header := decodeHeader(t, bs)

	assert.True(t, header.Status.Hardcore)
	assert.True(t, header.Status.Expansion)
	assert.False(t, header.Status.Died)
	assert.Equal(t, uint8(1), header.Status.Reserved)
	assert.Equal(t, uint32(149), header.RightSkill)
	assert.Equal(t, uint32(0x1234), header.MercID)

	den := header.Quests[0].Acts[0].Quests[0]
	assert.Equal(t, "den_of_evil", den.Name)
	assert.True(t, den.Completed)
	assert.True(t, den.Closed)
	assert.False(t, den.Received)
	assert.Equal(t, uint16(1<<3), header.Quests[0].Acts[0].Quests[1].Reserved)

	assert.True(t, header.Waypoints[0].Waypoints[0].Active)
	assert.True(t, header.Waypoints[0].Waypoints[9].Active)
	assert.Equal(t, "lut_gholein", header.Waypoints[0].Waypoints[9].Name)
	assert.False(t, header.Waypoints[1].Waypoints[0].Active)

	kashya := header.NPCs.Difficulties[0][3]
	assert.Equal(t, NPC{Name: "kashya", Congrats: true}, kashya)
	assert.Equal(t, NPC{Name: "kashya", Intro: true}, header.NPCs.Difficulties[1][3])
	assert.Equal(t, make([]byte, NPCsLen), header.NPCs.Reserved)

	assert.Equal(t, bs, encodeHeader(t, *header))
}

func TestNPCs_DifficultyStride(t *testing.T) {
	header := Header{
		Version: 0x60,
		NPCs: NPCs{
			Difficulties: [][]NPC{
				{},
				{{Name: "warriv_act_ii", Intro: true}},
				{{Name: "charsi", Congrats: true}},
			},
		},
	}
	bs := encodeHeader(t, header)
	npcs := bs[OffsetNPCs : OffsetNPCs+NPCsLen]

	// nightmare starts 8 bits after normal, hell 16
	assert.Equal(t, byte(0x00), npcs[0])
	assert.Equal(t, byte(0x01), npcs[1])
	assert.Equal(t, byte(0x04), npcs[24+2])
	assert.Equal(t, NPCsLen-2, bytes.Count(npcs, []byte{0}))

	decoded := decodeHeader(t, bs)
	assert.Equal(t, NPC{Name: "warriv_act_ii", Intro: true}, decoded.NPCs.Difficulties[1][0])
	// normal greiz sits on the same bit
	assert.Equal(t, NPC{Name: "greiz", Intro: true}, decoded.NPCs.Difficulties[0][6])
	assert.Equal(t, NPC{Name: "charsi", Congrats: true}, decoded.NPCs.Difficulties[2][1])
	assert.Equal(t, make([]byte, NPCsLen), decoded.NPCs.Reserved)
	assert.Equal(t, bs, encodeHeader(t, *decoded))
}

func TestRoundTrip_ReservedBits(t *testing.T) {
	bs := encodeHeader(t, createHeader())
	// an unnamed NPC bit and a waypoint block byte past the named bits
	bs[OffsetNPCs] |= 1 << 1
	bs[0x281+10] = 0x5a

	header := decodeHeader(t, bs)
	assert.Equal(t, byte(1<<1), header.NPCs.Reserved[0])
	assert.Equal(t, byte(0x5a), header.Waypoints[0].Reserved[10])
	assert.Equal(t, bs, encodeHeader(t, *header))
}

func TestEncode_UnknownNPC(t *testing.T) {
	header := createHeader()
	header.NPCs.Difficulties[0] = append(header.NPCs.Difficulties[0], NPC{Name: "deckard"})

	err := Encode(lbits.NewWriter(), header)
	var errSchemaLookup derr.ErrSchemaLookup
	require.True(t, errors.As(err, &errSchemaLookup))
	assert.Equal(t, "deckard", errSchemaLookup.Key)
}

func TestNameRelocation(t *testing.T) {
	header := createHeader()
	header.Version = VersionNameRelocated
	header.Name = "Relocated"
	bs := encodeHeader(t, header)

	assert.Equal(t, make([]byte, NameLen), bs[OffsetName:OffsetName+NameLen])
	assert.Equal(t, []byte("Relocated\x00"), bs[NameRelocatedOffset:NameRelocatedOffset+10])

	decoded := decodeHeader(t, bs)
	assert.Equal(t, "Relocated", decoded.Name)
	assert.Equal(t, make([]byte, ReservedBFLen), decoded.ReservedBF)
	assert.Equal(t, bs, encodeHeader(t, *decoded))
}

func TestName_DirtyPadding(t *testing.T) {
	bs := encodeHeader(t, createHeader())
	bs[OffsetName+10] = 'x'

	decoded := decodeHeader(t, bs)
	assert.Equal(t, "Tester", decoded.Name)
	assert.Equal(t, []byte{0, 0, 0, 'x', 0, 0, 0, 0, 0}, decoded.NameTail)
	assert.Equal(t, bs, encodeHeader(t, *decoded))

	decoded.Name = "LongerName"
	err := Encode(lbits.NewWriter(), *decoded)
	var errStructuralMismatch derr.ErrStructuralMismatch
	require.True(t, errors.As(err, &errStructuralMismatch))
	assert.Equal(t, "header.name_tail", errStructuralMismatch.Field)
}

func TestNameRelocation_KeepsOldSlot(t *testing.T) {
	header := createHeader()
	header.Version = VersionNameRelocated + 1
	header.Name = "Relocated"
	bs := encodeHeader(t, header)
	copy(bs[OffsetName:], "Old\x00")
	bs[NameRelocatedOffset+NameLen-1] = 0x7f

	decoded := decodeHeader(t, bs)
	assert.Equal(t, "Relocated", decoded.Name)
	assert.Equal(t, append([]byte("Old"), make([]byte, NameLen-3)...), decoded.NameSlot)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0x7f}, decoded.NameTail)
	assert.Equal(t, make([]byte, ReservedBFLen), decoded.ReservedBF)
	assert.Equal(t, bs, encodeHeader(t, *decoded))
}

func TestName_Latin1(t *testing.T) {
	header := createHeader()
	header.Name = "Zoë"
	bs := encodeHeader(t, header)
	assert.Equal(t, []byte{'Z', 'o', 0xeb, 0}, bs[OffsetName:OffsetName+4])
	assert.Equal(t, "Zoë", decodeHeader(t, bs).Name)

	header.Name = "NameThatIsTooLong"
	err := Encode(lbits.NewWriter(), header)
	var errStructuralMismatch derr.ErrStructuralMismatch
	require.True(t, errors.As(err, &errStructuralMismatch))
	assert.Equal(t, "header.name", errStructuralMismatch.Field)

	header.Name = "日本"
	assert.Error(t, Encode(lbits.NewWriter(), header))
}

func TestDecode_StructuralMismatch(t *testing.T) {
	bs := encodeHeader(t, createHeader())

	badMagic := bytes.Clone(bs)
	badMagic[0] = 0
	_, err := Decode(lbits.NewReader(badMagic))
	var errStructuralMismatch derr.ErrStructuralMismatch
	require.True(t, errors.As(err, &errStructuralMismatch))
	assert.Equal(t, "header.magic", errStructuralMismatch.Field)
	assert.Equal(t, 0, errStructuralMismatch.Offset)

	badTag := bytes.Clone(bs)
	copy(badTag[OffsetWaypointTag:], "XX")
	_, err = Decode(lbits.NewReader(badTag))
	require.True(t, errors.As(err, &errStructuralMismatch))
	assert.Equal(t, "header.waypoints.tag", errStructuralMismatch.Field)
	assert.Equal(t, OffsetWaypointTag*8, errStructuralMismatch.Offset)

	_, err = Decode(lbits.NewReader(bs[:OffsetNPCs]))
	var errOutOfBounds lbits.ErrOutOfBounds
	assert.True(t, errors.As(err, &errOutOfBounds))
}

func TestChecksum(t *testing.T) {
	bs := make([]byte, 32)
	for i := range bs {
		bs[i] = byte(i)
	}
	assert.Equal(t, uint32(0xff40ffdf), Checksum(bs))

	ones := bytes.Repeat([]byte{0xff}, 40)
	assert.Equal(t, uint32(0x0f00fdf2), Checksum(ones))
}

func TestFixHeader(t *testing.T) {
	writer := lbits.NewWriter()
	require.NoError(t, Encode(writer, createHeader()))
	writer.WriteString("gf", 2).WriteUInt16(0x1ff)
	FixHeader(writer)

	bs := writer.Bytes()
	assert.Equal(t, Size+4, writer.Len())
	assert.Equal(t, (Size+4)*8, writer.Position())
	header := decodeHeader(t, bs)
	assert.Equal(t, uint32(Size+4), header.FileSize)
	assert.Equal(t, Checksum(bs), header.Checksum)

	ok, err := Verify(bs)
	require.NoError(t, err)
	assert.True(t, ok)

	// fixing again changes nothing
	FixHeader(writer)
	assert.Equal(t, bs, writer.Bytes())

	bs[Size] = 'x'
	ok, err = Verify(bs)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Verify(bs[:8])
	assert.Error(t, err)
}
