package rulebook

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// FallingDamageChain resolves a fall: 1d6 per full ten feet, capped at
// 20d6. A fall that drops the actor to zero hit points is a critical
// failure so batch callers stop.
func FallingDamageChain() *rules.Chain {
	c := rules.NewChain(rules.Config{
		StopOnFailure:  true,
		MergeResults:   true,
		ClearTemporary: true,
	})
	c.Add(
		rules.Func{
			RuleName: "actor_can_act",
			Prio:     10,
			Run:      actorCanAct,
		},
		rules.Func{
			RuleName: "height_valid",
			Prio:     20,
			Run:      fallHeightValid,
		},
		rules.Func{
			RuleName: "roll_falling_damage",
			Prio:     50,
			Requires: []string{"height_valid"},
			When: func(_ *store.Store, cmd rules.Command) bool {
				// Falls under ten feet are harmless.
				return cmd.ParamInt("feet") >= 10
			},
			Run: rollFallingDamage,
		},
	)
	return c
}

func fallHeightValid(_ *store.Store, cmd rules.Command) (types.RuleResult, error) {
	if cmd.ParamInt("feet") <= 0 {
		return rules.Failure("fall height must be positive"), nil
	}
	return rules.Success(""), nil
}

func rollFallingDamage(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, _ := st.Entity(cmd.Actor)

	dice := cmd.ParamInt("feet") / 10
	if dice > 20 {
		dice = 20
	}

	dmg := st.Roller().RollN(dice, 6)
	remaining := st.AdjustStat(actor.ID, "hp", -dmg)

	if remaining == 0 {
		res := rules.CriticalFailure(fmt.Sprintf("%s falls %d feet and dies on impact", actor.Name, cmd.ParamInt("feet")))
		res.Damage = []int{dmg}
		res.Data = map[string]any{"damage": dmg, "dice": dice}
		res.Effects = []string{"slain:" + actor.ID}
		return res, nil
	}

	res := rules.Success(fmt.Sprintf("%s falls %d feet, taking %d damage", actor.Name, cmd.ParamInt("feet"), dmg))
	res.Damage = []int{dmg}
	res.Data = map[string]any{"damage": dmg, "dice": dice, "remaining_hp": remaining}
	return res, nil
}
