package main

import "fmt"

type SkillID string

const (
	SkillRemovePiece  SkillID = "remove_piece"
	SkillRestorePiece SkillID = "restore_piece"
	SkillBlockRemoval SkillID = "block_removal"
	SkillFreeze       SkillID = "freeze"
	SkillUnfreeze     SkillID = "unfreeze"
	SkillBreakBoard   SkillID = "break_board"
	SkillReverseBreak SkillID = "reverse_break"
	SkillRestoreBoard SkillID = "restore_board"
)

type SkillCategory int

const (
	CategoryAttack SkillCategory = iota
	CategoryDefense
	CategoryCounter
	CategoryControl
	CategoryDecontrol
	CategoryFinisher
	CategorySuppress
	CategoryRevive
)

func (c SkillCategory) String() string {
	switch c {
	case CategoryAttack:
		return "attack"
	case CategoryDefense:
		return "defense"
	case CategoryCounter:
		return "counter"
	case CategoryControl:
		return "control"
	case CategoryDecontrol:
		return "decontrol"
	case CategoryFinisher:
		return "finisher"
	case CategorySuppress:
		return "suppress"
	case CategoryRevive:
		return "revive"
	default:
		return "unknown"
	}
}

func (c SkillCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type SkillCondition int

const (
	ConditionNone SkillCondition = iota
	ConditionPieceRemoved
	ConditionFrozen
	ConditionBoardBroken
)

func (c SkillCondition) String() string {
	switch c {
	case ConditionPieceRemoved:
		return "piece_removed"
	case ConditionFrozen:
		return "frozen"
	case ConditionBoardBroken:
		return "board_broken"
	default:
		return "none"
	}
}

func (c SkillCondition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// SkillDefinition is the static description of one skill. CounterSkillIDs
// names the skills that answer this one; CounterTargetID is set on skills
// that exist only to answer another.
type SkillDefinition struct {
	ID                SkillID        `json:"id"`
	Name              string         `json:"name"`
	Category          SkillCategory  `json:"category"`
	Description       string         `json:"description"`
	Counterable       bool           `json:"counterable"`
	CounterSkillIDs   []SkillID      `json:"counter_skill_ids"`
	CounterTargetID   SkillID        `json:"counter_target_id,omitempty"`
	RequiresCondition SkillCondition `json:"requires_condition"`
	FreezeTurns       int            `json:"freeze_turns,omitempty"`
	NeedsTarget       bool           `json:"needs_target"`
}

func (d SkillDefinition) IsCounterOnly() bool {
	return d.CounterTargetID != ""
}

var skillOrder = []SkillID{
	SkillRemovePiece,
	SkillRestorePiece,
	SkillBlockRemoval,
	SkillFreeze,
	SkillUnfreeze,
	SkillBreakBoard,
	SkillReverseBreak,
	SkillRestoreBoard,
}

var skillCatalog = map[SkillID]SkillDefinition{
	SkillRemovePiece: {
		ID:              SkillRemovePiece,
		Name:            "Sandstorm",
		Category:        CategoryAttack,
		Description:     "Blow one opponent stone off the board.",
		Counterable:     true,
		CounterSkillIDs: []SkillID{SkillBlockRemoval},
		NeedsTarget:     true,
	},
	SkillRestorePiece: {
		ID:                SkillRestorePiece,
		Name:              "Honest Finder",
		Category:          CategoryDefense,
		Description:       "Put the most recently removed stone back where it was.",
		CounterSkillIDs:   []SkillID{},
		RequiresCondition: ConditionPieceRemoved,
	},
	SkillBlockRemoval: {
		ID:              SkillBlockRemoval,
		Name:            "Snatch",
		Category:        CategoryCounter,
		Description:     "Catch a stone blown away by Sandstorm and return it.",
		CounterSkillIDs: []SkillID{},
		CounterTargetID: SkillRemovePiece,
	},
	SkillFreeze: {
		ID:              SkillFreeze,
		Name:            "Still Water",
		Category:        CategoryControl,
		Description:     "Freeze the opponent for two of their turns.",
		CounterSkillIDs: []SkillID{SkillUnfreeze},
		FreezeTurns:     2,
	},
	SkillUnfreeze: {
		ID:                SkillUnfreeze,
		Name:              "Dripping Water",
		Category:          CategoryDecontrol,
		Description:       "Thaw yourself out of a freeze.",
		CounterSkillIDs:   []SkillID{},
		RequiresCondition: ConditionFrozen,
	},
	SkillBreakBoard: {
		ID:              SkillBreakBoard,
		Name:            "Mountain Strength",
		Category:        CategoryFinisher,
		Description:     "Smash the board and win on the spot.",
		Counterable:     true,
		CounterSkillIDs: []SkillID{SkillReverseBreak},
	},
	SkillReverseBreak: {
		ID:              SkillReverseBreak,
		Name:            "Polar Reversal",
		Category:        CategorySuppress,
		Description:     "Undo a board smash before it lands.",
		CounterSkillIDs: []SkillID{},
		CounterTargetID: SkillBreakBoard,
	},
	SkillRestoreBoard: {
		ID:                SkillRestoreBoard,
		Name:              "Rise Again",
		Category:          CategoryRevive,
		Description:       "Rebuild a smashed board and keep playing.",
		CounterSkillIDs:   []SkillID{},
		RequiresCondition: ConditionBoardBroken,
	},
}

func init() {
	if err := validateSkillCatalog(skillCatalog, skillOrder); err != nil {
		panic(err)
	}
}

func validateSkillCatalog(catalog map[SkillID]SkillDefinition, order []SkillID) error {
	if len(order) != len(catalog) {
		return fmt.Errorf("skill catalog: order lists %d skills, catalog has %d", len(order), len(catalog))
	}
	for _, id := range order {
		def, ok := catalog[id]
		if !ok {
			return fmt.Errorf("skill catalog: %q listed but not defined", id)
		}
		if def.ID != id {
			return fmt.Errorf("skill catalog: key %q holds definition %q", id, def.ID)
		}
		for _, counter := range def.CounterSkillIDs {
			if _, ok := catalog[counter]; !ok {
				return fmt.Errorf("skill catalog: %q counters via unknown %q", id, counter)
			}
		}
		if def.CounterTargetID != "" {
			target, ok := catalog[def.CounterTargetID]
			if !ok {
				return fmt.Errorf("skill catalog: %q targets unknown %q", id, def.CounterTargetID)
			}
			if !target.Counterable {
				return fmt.Errorf("skill catalog: %q targets non-counterable %q", id, target.ID)
			}
		}
		if def.Counterable && len(def.CounterSkillIDs) == 0 {
			return fmt.Errorf("skill catalog: counterable %q has no counter skill", id)
		}
	}
	return nil
}

func LookupSkill(id SkillID) (SkillDefinition, bool) {
	def, ok := skillCatalog[id]
	return def, ok
}

// SkillCatalog returns the definitions in display order.
func SkillCatalog() []SkillDefinition {
	defs := make([]SkillDefinition, 0, len(skillOrder))
	for _, id := range skillOrder {
		defs = append(defs, skillCatalog[id])
	}
	return defs
}

func skillsInCategory(category SkillCategory) []SkillID {
	ids := []SkillID{}
	for _, id := range skillOrder {
		if skillCatalog[id].Category == category {
			ids = append(ids, id)
		}
	}
	return ids
}

func newSkillUsages() SkillUsages {
	usages := make(SkillUsages, len(skillOrder))
	for _, id := range skillOrder {
		usages[id] = SkillUsage{IsAvailable: true}
	}
	return usages
}
