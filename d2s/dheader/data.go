// Package dheader reads and writes the fixed 765-byte character header, including the quest,
// waypoint and NPC blocks, and computes the file checksum.
package dheader

type (
	Header struct {
		Version      uint32 `json:"version"`
		FileSize     uint32 `json:"filesize"`
		Checksum     uint32 `json:"checksum"`
		ActiveWeapon uint32 `json:"active_weapon"`
		Name         string `json:"name"`
		// NameTail holds non-zero bytes found after the name terminator.
		NameTail []byte `json:"name_tail,omitempty"`
		// NameSlot holds a non-zero slot at OffsetName once the name is relocated.
		NameSlot    []byte `json:"name_slot,omitempty"`
		Status      Status `json:"status"`
		Progression uint8  `json:"progression"`
		Reserved26  []byte `json:"reserved_26"`
		Class       uint8  `json:"class"`
		// ClassName is filled from the schema by the save codec and is not written.
		ClassName      string           `json:"class_name,omitempty"`
		Reserved29     []byte           `json:"reserved_29"`
		Level          uint8            `json:"level"`
		Created        uint32           `json:"created"`
		LastPlayed     uint32           `json:"last_played"`
		Reserved34     []byte           `json:"reserved_34"`
		AssignedSkills []uint32         `json:"assigned_skills"`
		LeftSkill      uint32           `json:"left_skill"`
		RightSkill     uint32           `json:"right_skill"`
		LeftSwapSkill  uint32           `json:"left_swap_skill"`
		RightSwapSkill uint32           `json:"right_swap_skill"`
		Appearance     []AppearanceSlot `json:"appearance"`
		Difficulty     Difficulty       `json:"difficulty"`
		MapID          uint32           `json:"map_id"`
		ReservedAF     []byte           `json:"reserved_af"`
		DeadMerc       uint16           `json:"dead_merc"`
		MercID         uint32           `json:"merc_id"`
		MercNameID     uint16           `json:"merc_name_id"`
		MercType       uint16           `json:"merc_type"`
		MercExperience uint32           `json:"merc_experience"`
		// ReservedBF holds the relocated name from VersionNameRelocated on, zeroed here.
		ReservedBF     []byte                `json:"reserved_bf"`
		QuestHeader    []byte                `json:"quest_header"`
		Quests         []QuestsDifficulty    `json:"quests"`
		WaypointHeader []byte                `json:"waypoint_header"`
		Waypoints      []WaypointsDifficulty `json:"waypoints"`
		NPCSize        uint16                `json:"npc_size"`
		NPCs           NPCs                  `json:"npcs"`
	}

	Status struct {
		Hardcore  bool  `json:"hardcore"`
		Died      bool  `json:"died"`
		Expansion bool  `json:"expansion"`
		Ladder    bool  `json:"ladder"`
		Reserved  uint8 `json:"reserved"`
	}

	AppearanceSlot struct {
		Slot    string `json:"slot"`
		Graphic uint8  `json:"graphic"`
		Tint    uint8  `json:"tint"`
	}

	// Difficulty holds one byte per tier: bit 7 marks the active tier, the low bits the act.
	Difficulty struct {
		Normal    uint8 `json:"normal"`
		Nightmare uint8 `json:"nightmare"`
		Hell      uint8 `json:"hell"`
	}

	Quest struct {
		Name                 string `json:"name,omitempty"`
		Completed            bool   `json:"completed"`
		RequirementCompleted bool   `json:"requirement_completed"`
		Received             bool   `json:"received"`
		ConsumedScroll       bool   `json:"consumed_scroll"`
		Closed               bool   `json:"closed"`
		DoneRecently         bool   `json:"done_recently"`
		Reserved             uint16 `json:"reserved"`
	}
	QuestAct struct {
		Introduced uint16  `json:"introduced"`
		Quests     []Quest `json:"quests"`
		Completed  uint16  `json:"completed"`
	}
	QuestsDifficulty struct {
		Acts []QuestAct `json:"acts"`
		// ReservedIV follows act IV, ReservedV closes the block.
		ReservedIV []byte `json:"reserved_iv"`
		ReservedV  []byte `json:"reserved_v"`
	}

	Waypoint struct {
		Act    int    `json:"act"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	WaypointsDifficulty struct {
		Waypoints []Waypoint `json:"waypoints"`
		// Reserved is the raw block with the waypoint bits cleared.
		Reserved []byte `json:"reserved"`
	}

	NPC struct {
		Name     string `json:"name"`
		Intro    bool   `json:"intro"`
		Congrats bool   `json:"congrats"`
	}
	NPCs struct {
		Difficulties [][]NPC `json:"difficulties"`
		// Reserved is the raw block with the named bits cleared.
		Reserved []byte `json:"reserved"`
	}

	npcBit struct {
		Name   string
		Offset int
	}
)

const (
	Size  = 765
	Magic = 0xAA55AA55

	// VersionNameRelocated is the first version that stores the name inside ReservedBF. Later
	// versions keep the relocated slot.
	VersionNameRelocated = 0x62
	NameLen              = 16
	NameRelocatedOffset  = 267

	OffsetFileSize     = 0x08
	OffsetChecksum     = 0x0c
	OffsetName         = 0x14
	OffsetReservedBF   = 0xbf
	OffsetQuestTag     = 0x14f
	OffsetWaypointTag  = 0x279
	OffsetNPCTag       = 0x2c9
	OffsetNPCs         = 0x2cd
	ReservedBFLen      = 144
	QuestHeaderLen     = 6
	WaypointHeaderLen  = 6
	NrOfDifficulties   = 3
	AssignedSkillCount = 16
	AppearanceLen      = 16

	QuestTag    = "Woo!"
	WaypointTag = "WS"
	NPCTag      = "\x01\x77"

	QuestsDifficultyLen = 96
	QuestReservedIVLen  = 10
	QuestReservedVLen   = 12

	WaypointsDifficultyLen = 24
	WaypointsPrefixLen     = 2

	NPCsLen            = 48
	NPCDifficultyBits  = 8
	NPCCongratsOffset  = 192
	DefaultNPCSize     = 0x34
	DefaultSkillUnused = 0xffff
)

const (
	StatusHardcore  = 2
	StatusDied      = 3
	StatusExpansion = 5
	StatusLadder    = 6
)

const (
	QuestCompleted            = 0
	QuestRequirementCompleted = 1
	QuestReceived             = 2
	QuestConsumedScroll       = 7
	QuestClosed               = 12
	QuestDoneRecently         = 13
)

var (
	DefaultQuestHeader    = []byte{0x06, 0x00, 0x00, 0x00, 0x2a, 0x01}
	DefaultWaypointHeader = []byte{0x01, 0x00, 0x00, 0x00, 0x50, 0x00}
	DefaultWaypointPrefix = []byte{0x02, 0x01}

	AppearanceSlots = []string{
		"head", "torso", "legs", "right_arm", "left_arm", "right_hand", "left_hand", "shield",
		"special1", "special2", "special3", "special4",
		"special5", "special6", "special7", "special8",
	}

	// QuestNames lists the quests of each act in stored order.
	QuestNames = [][]string{
		{
			"den_of_evil", "sisters_burial_grounds", "tools_of_the_trade",
			"the_search_for_cain", "the_forgotten_tower", "sisters_to_the_slaughter",
		},
		{
			"radaments_lair", "the_horadric_staff", "tainted_sun",
			"arcane_sanctuary", "the_summoner", "the_seven_tombs",
		},
		{
			"lam_esens_tome", "khalims_will", "blade_of_the_old_religion",
			"the_golden_bird", "the_blackened_temple", "the_guardian",
		},
		{"the_fallen_angel", "terrors_end", "hellforge"},
		{
			"siege_on_harrogath", "rescue_on_mount_arreat", "prison_of_ice",
			"betrayal_of_harrogath", "rite_of_passage", "eve_of_destruction",
		},
	}

	// WaypointNames lists the waypoints of each act in bit order.
	WaypointNames = [][]string{
		{
			"rogue_encampment", "cold_plains", "stony_field", "dark_woods", "black_marsh",
			"outer_cloister", "jail_lvl_1", "inner_cloister", "catacombs_lvl_2",
		},
		{
			"lut_gholein", "sewers_lvl_2", "dry_hills", "halls_of_the_dead_lvl_2", "far_oasis",
			"lost_city", "palace_cellar_lvl_1", "arcane_sanctuary", "canyon_of_the_magi",
		},
		{
			"kurast_docks", "spider_forest", "great_marsh", "flayer_jungle", "lower_kurast",
			"kurast_bazaar", "upper_kurast", "travincal", "durance_of_hate_lvl_2",
		},
		{"the_pandemonium_fortress", "city_of_the_damned", "river_of_flame"},
		{
			"harrogath", "frigid_highlands", "arreat_plateau", "crystalline_passage",
			"halls_of_pain", "glacial_trail", "frozen_tundra", "the_ancients_way",
			"worldstone_keep_lvl_2",
		},
	}

	// npcBits are the bit offsets of the named NPCs inside one difficulty. The gaps are real.
	// Difficulties are NPCDifficultyBits apart, so one bit can back several named flags.
	npcBits = []npcBit{
		{"warriv_act_ii", 0},
		{"charsi", 2},
		{"warriv_act_i", 3},
		{"kashya", 4},
		{"akara", 5},
		{"gheed", 6},
		{"greiz", 8},
		{"jerhyn", 9},
		{"meshif_act_ii", 10},
		{"geglash", 11},
		{"lysnader", 12},
		{"fara", 13},
		{"drogan", 14},
		{"alkor", 16},
		{"hratli", 17},
		{"ashera", 18},
		{"cain_act_iii", 21},
		{"elzix", 23},
		{"malah", 24},
		{"anya", 25},
		{"natalya", 27},
		{"meshif_act_iii", 28},
		{"ormus", 31},
		{"cain_act_v", 37},
		{"qualkehk", 38},
		{"nihlathak", 39},
	}
)
