package rulebook

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// Saving-throw categories and their base targets at level 1. The target
// drops by one per level above first, to a floor of 2.
var saveTargets = map[string]int{
	"death":   11,
	"wands":   12,
	"petrify": 14,
	"breath":  15,
	"spells":  16,
}

// SavingThrowChain resolves a saving throw against a hazard category.
// A failed save applies the hazard's full damage; a successful save
// applies half, rounded down.
func SavingThrowChain() *rules.Chain {
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
			RuleName: "category_known",
			Prio:     20,
			Run:      saveCategoryKnown,
		},
		rules.Func{
			RuleName: "roll_save",
			Prio:     50,
			Requires: []string{"category_known"},
			Run:      rollSave,
		},
	)
	return c
}

func saveCategoryKnown(_ *store.Store, cmd rules.Command) (types.RuleResult, error) {
	category := cmd.ParamString("category")
	if _, ok := saveTargets[category]; !ok {
		return rules.Failure(fmt.Sprintf("unknown saving-throw category %q", category)), nil
	}
	return rules.Success(""), nil
}

func rollSave(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, ok := st.Entity(cmd.Actor)
	if !ok {
		return rules.Failure(fmt.Sprintf("%s is not present", cmd.Actor)), nil
	}

	category := cmd.ParamString("category")
	target := saveTargets[category] - (actor.Stat("level") - 1)
	if target < 2 {
		target = 2
	}

	roll := st.Roller().Roll(20)
	made := roll >= target

	// Hazard damage, if any: full on a failed save, half on a made save.
	dmg := 0
	if expr := cmd.ParamString("damage"); expr != "" {
		full, err := st.Roller().RollExpr(expr)
		if err != nil {
			return types.RuleResult{}, fmt.Errorf("hazard damage %q: %w", expr, err)
		}
		dmg = full
		if made {
			dmg = full / 2
		}
	}

	var res types.RuleResult
	if made {
		res = rules.Success(fmt.Sprintf("%s saves vs %s (%d vs %d)", actor.Name, category, roll, target))
	} else {
		res = rules.Failure(fmt.Sprintf("%s fails the save vs %s (%d vs %d)", actor.Name, category, roll, target))
	}
	res.Data = map[string]any{"roll": roll, "target": target, "made": made}

	if dmg > 0 {
		remaining := st.AdjustStat(actor.ID, "hp", -dmg)
		res.Damage = []int{dmg}
		res.Data["damage"] = dmg
		res.Message += fmt.Sprintf(", taking %d damage", dmg)
		if remaining == 0 {
			res.Success = false
			res.Critical = true
			res.Message += fmt.Sprintf("; %s dies", actor.Name)
			res.Effects = append(res.Effects, "slain:"+actor.ID)
		}
	}

	return res, nil
}
