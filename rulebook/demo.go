package rulebook

import (
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// Populate seeds the store with the demo roster used by the simulator:
// a small party and a handful of monsters.
func Populate(st *store.Store) {
	st.SetEntity(&types.Entity{
		ID: "brand", Name: "Brand", Kind: "character",
		Stats: map[string]int{
			"hp": 16, "max_hp": 16, "level": 2,
			"armor_class": 14, "attack_bonus": 3,
			"xp": 2400, "prime_bonus": 10,
		},
		Props: map[string]any{"class": "fighter"},
	})
	st.SetEntity(&types.Entity{
		ID: "mira", Name: "Mira", Kind: "character",
		Stats: map[string]int{
			"hp": 11, "max_hp": 11, "level": 3,
			"armor_class": 12, "attack_bonus": 1,
			"xp": 6200,
		},
		Props: map[string]any{"class": "cleric"},
	})
	st.SetEntity(&types.Entity{
		ID: "goblin", Name: "Goblin", Kind: "monster",
		Stats: map[string]int{
			"hp": 5, "max_hp": 5, "hit_dice": 1,
			"armor_class": 12, "attack_bonus": 0, "morale": 7,
		},
	})
	st.SetEntity(&types.Entity{
		ID: "skeleton", Name: "Skeleton", Kind: "monster",
		Stats: map[string]int{
			"hp": 6, "max_hp": 6, "hit_dice": 1,
			"armor_class": 13, "attack_bonus": 0, "morale": 12,
		},
		Props: map[string]any{"undead": true},
	})
	st.SetEntity(&types.Entity{
		ID: "wight", Name: "Wight", Kind: "monster",
		Stats: map[string]int{
			"hp": 14, "max_hp": 14, "hit_dice": 3,
			"armor_class": 14, "attack_bonus": 2, "morale": 10,
		},
		Props: map[string]any{"undead": true},
	})

	st.SetItem(&types.Item{
		ID: "longsword", Name: "Longsword", Kind: "weapon",
		Props: map[string]any{"damage": "1d8"},
	})
	st.SetItem(&types.Item{
		ID: "healing_potion", Name: "Potion of Healing", Kind: "potion",
		Props: map[string]any{"heal": "1d6+1"},
	})
}
