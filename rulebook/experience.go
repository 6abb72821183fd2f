package rulebook

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// xpThreshold returns the total experience needed to reach the next level.
func xpThreshold(level int) int {
	return level * 2000
}

// ExperienceChain resolves an experience award: validate the amount,
// apply the prime-requisite adjustment, then check for level gain.
func ExperienceChain() *rules.Chain {
	c := rules.NewChain(rules.Config{
		StopOnFailure:  true,
		MergeResults:   true,
		ClearTemporary: true,
	})
	c.Add(
		rules.Func{
			RuleName: "amount_valid",
			Prio:     10,
			Run:      xpAmountValid,
		},
		rules.Func{
			RuleName: "apply_award",
			Prio:     50,
			Requires: []string{"amount_valid"},
			Run:      applyAward,
		},
		rules.Func{
			RuleName: "check_level_gain",
			Prio:     60,
			Requires: []string{"apply_award"},
			Run:      checkLevelGain,
		},
	)
	return c
}

func xpAmountValid(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	if !st.HasEntity(cmd.Actor) {
		return rules.Failure(fmt.Sprintf("%s is not present", cmd.Actor)), nil
	}
	if cmd.ParamInt("amount") <= 0 {
		return rules.Failure("experience award must be positive"), nil
	}
	return rules.Success(""), nil
}

// applyAward adds the award, adjusted by the character's prime-requisite
// bonus percentage, and records the adjusted amount for the level check.
func applyAward(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, _ := st.Entity(cmd.Actor)

	amount := cmd.ParamInt("amount")
	if bonus := actor.Stat("prime_bonus"); bonus != 0 {
		amount += amount * bonus / 100
	}

	total := st.AdjustStat(actor.ID, "xp", amount)
	st.SetTemp("xp.awarded", amount)

	res := rules.Success(fmt.Sprintf("%s gains %d experience (%d total)", actor.Name, amount, total))
	res.Data = map[string]any{"awarded": amount, "total": total}
	return res, nil
}

func checkLevelGain(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, _ := st.Entity(cmd.Actor)

	gained := 0
	for actor.Stat("xp") >= xpThreshold(actor.Stat("level")) {
		st.AdjustStat(actor.ID, "level", 1)
		hp := st.Roller().Roll(8)
		st.AdjustStat(actor.ID, "max_hp", hp)
		st.AdjustStat(actor.ID, "hp", hp)
		gained++
	}

	if gained == 0 {
		res := rules.Success("")
		res.Data = map[string]any{"levels_gained": 0}
		return res, nil
	}

	res := rules.Success(fmt.Sprintf("%s rises to level %d", actor.Name, actor.Stat("level")))
	res.Data = map[string]any{"levels_gained": gained, "level": actor.Stat("level")}
	res.Effects = []string{"level_up:" + actor.ID}
	return res, nil
}
