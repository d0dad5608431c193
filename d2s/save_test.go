package d2s

import (
	"bytes"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/thanhnguyen2187/d2-savior/d2s/dattr"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/dheader"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dprop"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/d2s/dskill"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

type SaveTestSuite struct {
	Cache *dschema.Cache
	R     *require.Assertions
	suite.Suite
}

func (suite *SaveTestSuite) SetupSuite() {
	suite.R = suite.Require()
	schema, err := dschema.Load("../testdata/schema.yaml")
	suite.R.NoError(err)
	suite.Cache = dschema.NewCache(schema)
}

func createPotion(x uint8) ditem.Item {
	return ditem.Item{
		Identified:    true,
		Simple:        true,
		FlagsReserved: 1 << 23,
		Version:       5,
		LocationID:    2,
		PositionX:     x,
		Type:          "hp5",
	}
}

func createCap() ditem.Item {
	return ditem.Item{
		Identified:         true,
		Socketed:           true,
		FlagsReserved:      1 << 23,
		Version:            5,
		LocationID:         1,
		EquippedID:         1,
		Type:               "cap",
		NrOfItemsInSockets: 1,
		ID:                 0x01020304,
		Level:              12,
		Quality:            ditem.QualityMagic,
		MagicPrefix:        3,
		DefenseRating:      5,
		MaxDurability:      12,
		CurrentDurability:  12,
		TotalNrOfSockets:   1,
		MagicAttributes: []dprop.Property{
			{ID: 0, Values: []int{4}},
		},
		SocketedItems: []ditem.Item{
			{
				Identified:    true,
				Simple:        true,
				FlagsReserved: 1 << 23,
				Version:       5,
				LocationID:    6,
				Type:          "gcv",
			},
		},
	}
}

func createSave(version uint32, level uint8) Save {
	golem := createPotion(0)
	skills := make([]dskill.Skill, dskill.NrOfSkills)
	skills[0].Points = 1
	skills[23].Points = 20
	return Save{
		Header: dheader.Header{
			Version:    version,
			Name:       "Builder",
			Status:     dheader.Status{Expansion: true},
			Class:      4,
			Level:      level,
			MercID:     0x1234,
			MercNameID: 7,
		},
		Attributes: dattr.Attributes{
			Strength:   30,
			Level:      uint32(level),
			Experience: 12345,
			Gold:       999,
		},
		Skills: skills,
		Items:  []ditem.Item{createPotion(0), createCap()},
		Corpses: []Corpse{
			{
				Unknown: 1,
				X:       0x1000,
				Y:       0x2000,
				Items:   []ditem.Item{createPotion(3)},
			},
		},
		MercItems: []ditem.Item{createPotion(1)},
		GolemItem: &golem,
	}
}

func (suite *SaveTestSuite) encode(save Save) []byte {
	bs, err := Encode(save, suite.Cache, Config{})
	suite.R.NoError(err)
	return bs
}

func (suite *SaveTestSuite) decode(bs []byte) *Save {
	save, err := Decode(bs, suite.Cache, Config{})
	suite.R.NoError(err)
	return save
}

func (suite *SaveTestSuite) TestRoundTrip() {
	for _, version := range []uint32{0x60, 0x61, 0x62} {
		bs := suite.encode(createSave(version, 10))
		save := suite.decode(bs)

		suite.R.Equal(uint32(len(bs)), save.Header.FileSize)
		suite.R.Equal("Barbarian", save.Header.ClassName)
		suite.R.Equal("Builder", save.Header.Name)
		suite.R.Equal("Bash", save.Skills[0].Name)
		suite.R.Equal(uint8(20), save.Skills[23].Points)
		suite.R.Equal(uint32(999), save.Attributes.Gold)
		suite.R.Len(save.Items, 2)
		suite.R.Equal(3, ditem.CountAll(save.Items))
		suite.R.True(save.IsDead())
		suite.R.Equal(uint32(0x2000), save.Corpses[0].Y)
		suite.R.Len(save.MercItems, 1)
		suite.R.NotNil(save.GolemItem)
		suite.R.Equal("hp5", save.GolemItem.Type)
		suite.R.Empty(save.Absent)

		suite.R.Equalf(bs, suite.encode(*save), "version %x", version)
		suite.R.Equal(save, suite.decode(suite.encode(*save)))
	}
}

func (suite *SaveTestSuite) TestChecksum() {
	bs := suite.encode(createSave(0x61, 10))
	ok, err := dheader.Verify(bs)
	suite.R.NoError(err)
	suite.R.True(ok)

	save := suite.decode(bs)
	suite.R.Equal(dheader.Checksum(bs), save.Header.Checksum)

	tampered := bytes.Clone(bs)
	tampered[len(tampered)-1] ^= 0xff
	ok, err = dheader.Verify(tampered)
	suite.R.NoError(err)
	suite.R.False(ok)
}

func (suite *SaveTestSuite) TestClassic() {
	save := createSave(0x60, 10)
	save.Header.Status.Expansion = false
	save.MercItems = nil
	save.GolemItem = nil
	bs := suite.encode(save)

	decoded := suite.decode(bs)
	suite.R.Empty(decoded.MercItems)
	suite.R.Nil(decoded.GolemItem)
	suite.R.Empty(decoded.Absent)
	suite.R.Equal(bs, suite.encode(*decoded))
}

func (suite *SaveTestSuite) TestNoMercenary() {
	save := createSave(0x61, 10)
	save.Header.MercID = 0
	save.MercItems = nil
	save.GolemItem = nil
	bs := suite.encode(save)

	decoded := suite.decode(bs)
	suite.R.NotNil(decoded.MercItems)
	suite.R.Empty(decoded.MercItems)
	suite.R.Nil(decoded.GolemItem)
	suite.R.Equal([]byte{'j', 'f', 'k', 'f', 0}, bs[len(bs)-5:])
	document, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(decoded)
	suite.R.NoError(err)
	suite.R.Contains(string(document), `"merc_items":[]`)
	suite.R.Contains(string(document), `"golem_item":null`)

	save.MercItems = []ditem.Item{createPotion(0)}
	_, err = Encode(save, suite.Cache, Config{})
	var errStructuralMismatch derr.ErrStructuralMismatch
	suite.R.True(errors.As(err, &errStructuralMismatch))
	suite.R.Equal(SectionMercItems, errStructuralMismatch.Field)
}

func (suite *SaveTestSuite) TestGolemFlag() {
	save := createSave(0x61, 10)
	save.GolemItem = nil
	bs := suite.encode(save)
	suite.R.Equal([]byte{'k', 'f', 0}, bs[len(bs)-3:])

	// only a flag of 1 is followed by an item
	bs[len(bs)-1] = 2
	decoded := suite.decode(bs)
	suite.R.Nil(decoded.GolemItem)
	suite.R.Equal(uint8(2), decoded.GolemFlag)
	suite.R.Equal(bs[dheader.Size:], suite.encode(*decoded)[dheader.Size:])

	decoded.GolemFlag = GolemItemPresent
	_, err := Encode(*decoded, suite.Cache, Config{})
	var errStructuralMismatch derr.ErrStructuralMismatch
	suite.R.True(errors.As(err, &errStructuralMismatch))
	suite.R.Equal("golem_flag", errStructuralMismatch.Field)
}

// truncateAfterItems cuts a save right after its item list.
func (suite *SaveTestSuite) truncateAfterItems(save Save) []byte {
	save.Corpses = nil
	bs := suite.encode(save)
	corpses := bytes.LastIndex(bs, []byte{'J', 'M', 0, 0, 'j', 'f'})
	suite.R.Positive(corpses)
	return bs[:corpses]
}

func (suite *SaveTestSuite) TestTruncated_FreshCharacter() {
	truncated := suite.truncateAfterItems(createSave(0x61, 1))

	save := suite.decode(truncated)
	suite.R.Empty(save.Corpses)
	suite.R.Empty(save.MercItems)
	suite.R.Nil(save.GolemItem)
	suite.R.False(save.IsDead())
	suite.R.Equal([]string{SectionCorpses, SectionMercItems, SectionGolemItem}, save.Absent)
	suite.R.Len(save.Items, 2)

	bs := suite.encode(*save)
	suite.R.Equal(len(truncated), len(bs))
	suite.R.Equal(truncated[dheader.Size:], bs[dheader.Size:])
	ok, err := dheader.Verify(bs)
	suite.R.NoError(err)
	suite.R.True(ok)
}

func (suite *SaveTestSuite) TestTruncated_Rejected() {
	truncated := suite.truncateAfterItems(createSave(0x61, 10))

	_, err := Decode(truncated, suite.Cache, Config{})
	var errStructuralMismatch derr.ErrStructuralMismatch
	suite.R.True(errors.As(err, &errStructuralMismatch))
	suite.R.Equal("corpses.header", errStructuralMismatch.Field)
	suite.R.Equal("end of buffer", errStructuralMismatch.Actual)
}

func (suite *SaveTestSuite) TestMissingSkills_FreshCharacter() {
	save := createSave(0x61, 1)
	bs := suite.encode(save)
	attributes := lbits.NewWriter()
	suite.R.NoError(dattr.Encode(attributes, suite.Cache.For(0x61), save.Attributes))
	skills := dheader.Size + attributes.Len()
	suite.R.Equal(dskill.Header, string(bs[skills:skills+2]))
	withoutSkills := append(
		bytes.Clone(bs[:skills]),
		bs[skills+len(dskill.Header)+dskill.NrOfSkills:]...,
	)

	decoded := suite.decode(withoutSkills)
	suite.R.Empty(decoded.Skills)
	suite.R.Equal([]string{SectionSkills}, decoded.Absent)
	suite.R.Len(decoded.Items, 2)
	suite.R.True(decoded.IsDead())

	reencoded := suite.encode(*decoded)
	suite.R.Equal(withoutSkills[dheader.Size:], reencoded[dheader.Size:])

	decoded.Header.Level = 2
	_, err := Decode(suite.encode(*decoded), suite.Cache, Config{})
	var errStructuralMismatch derr.ErrStructuralMismatch
	suite.R.True(errors.As(err, &errStructuralMismatch))
	suite.R.Equal("skills.header", errStructuralMismatch.Field)
}

func (suite *SaveTestSuite) TestDecode_BadMagic() {
	bs := suite.encode(createSave(0x61, 10))
	bs[0] = 0
	_, err := Decode(bs, suite.Cache, Config{})
	var errStructuralMismatch derr.ErrStructuralMismatch
	suite.R.True(errors.As(err, &errStructuralMismatch))
	suite.R.Equal("header.magic", errStructuralMismatch.Field)
}

func (suite *SaveTestSuite) TestItemRecord() {
	bs := []byte{16, 0, 160, 0, 5, 228, 4, 79, 180, 0}
	item, err := DecodeItem(bs, 0x61, suite.Cache, Config{})
	suite.R.NoError(err)
	suite.R.Equal("hp5", item.Type)

	encoded, err := EncodeItem(*item, 0x61, suite.Cache, Config{})
	suite.R.NoError(err)
	suite.R.Equal(bs, encoded)

	_, err = DecodeItem(bs, 0x60, suite.Cache, Config{})
	suite.R.Error(err)
}

func TestSave(t *testing.T) {
	suite.Run(t, new(SaveTestSuite))
}
