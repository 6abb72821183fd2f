package rulebook

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// MoraleChain resolves a morale check for a monster: 2d6 against its
// morale score, with a +2 penalty to the roll once wounded below half
// hit points. Characters never check morale.
func MoraleChain() *rules.Chain {
	c := rules.NewChain(rules.Config{
		MergeResults:   true,
		ClearTemporary: true,
	})
	c.Add(
		rules.Func{
			RuleName: "morale_applies",
			Prio:     10,
			Run:      moraleApplies,
		},
		rules.Func{
			RuleName: "morale_check",
			Prio:     50,
			Requires: []string{"morale_applies"},
			When: func(st *store.Store, cmd rules.Command) bool {
				// A creature already in flight does not check again.
				if len(cmd.Targets) == 0 {
					return false
				}
				target, ok := st.Entity(cmd.Targets[0])
				if !ok {
					return false
				}
				fleeing, _ := target.Props["fleeing"].(bool)
				return !fleeing
			},
			Run: moraleCheck,
		},
	)
	return c
}

func moraleApplies(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	if len(cmd.Targets) == 0 {
		return rules.Failure("morale check has no target"), nil
	}
	target, ok := st.Entity(cmd.Targets[0])
	if !ok {
		return rules.Failure(fmt.Sprintf("%s is not present", cmd.Targets[0])), nil
	}
	if target.Kind != "monster" {
		return rules.Failure(fmt.Sprintf("%s does not check morale", target.Name)), nil
	}
	if !target.Alive() {
		return rules.Failure(fmt.Sprintf("%s is already dead", target.Name)), nil
	}
	return rules.Success(""), nil
}

func moraleCheck(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	target, _ := st.Entity(cmd.Targets[0])

	morale := target.Stat("morale")
	if morale == 0 {
		morale = 7
	}

	roll := st.Roller().RollN(2, 6)
	if target.Stat("hp")*2 < target.Stat("max_hp") {
		roll += 2
	}

	if roll <= morale {
		res := rules.Success(fmt.Sprintf("%s stands fast (%d vs morale %d)", target.Name, roll, morale))
		res.Data = map[string]any{"roll": roll, "morale": morale}
		return res, nil
	}

	if target.Props == nil {
		target.Props = map[string]any{}
	}
	target.Props["fleeing"] = true

	res := rules.Failure(fmt.Sprintf("%s breaks and flees (%d vs morale %d)", target.Name, roll, morale))
	res.Data = map[string]any{"roll": roll, "morale": morale}
	res.Effects = []string{"flees:" + target.ID}
	return res, nil
}
