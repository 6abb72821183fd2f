package rulebook

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// Temporary keys used for communication between attack rules.
const (
	tempAttackHit  = "attack.hit"
	tempAttackCrit = "attack.crit"
)

// AttackChain resolves a melee or missile attack: actor check, target
// check, to-hit roll, then damage. It stops on the first failure so a
// miss never rolls damage.
func AttackChain() *rules.Chain {
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
			RuleName: "target_valid",
			Prio:     20,
			Run:      attackTargetValid,
		},
		rules.Func{
			RuleName: "roll_to_hit",
			Prio:     50,
			Requires: []string{"target_valid"},
			Run:      rollToHit,
		},
		rules.Func{
			RuleName: "roll_damage",
			Prio:     60,
			Requires: []string{"roll_to_hit"},
			When: func(st *store.Store, _ rules.Command) bool {
				hit, _ := st.Temp(tempAttackHit)
				return hit == true
			},
			Run: rollDamage,
		},
	)
	return c
}

// actorCanAct fails critically when the acting entity is missing or dead:
// nothing later in a batch can matter once the actor is gone.
func actorCanAct(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, ok := st.Entity(cmd.Actor)
	if !ok {
		return rules.CriticalFailure(fmt.Sprintf("%s is not present", cmd.Actor)), nil
	}
	if !actor.Alive() {
		return rules.CriticalFailure(fmt.Sprintf("%s is dead and can act no further", actor.Name)), nil
	}
	return rules.Success(""), nil
}

func attackTargetValid(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	if len(cmd.Targets) == 0 {
		return rules.Failure("attack has no target"), nil
	}
	target, ok := st.Entity(cmd.Targets[0])
	if !ok {
		return rules.Failure(fmt.Sprintf("%s is not present", cmd.Targets[0])), nil
	}
	if !target.Alive() {
		return rules.Failure(fmt.Sprintf("%s is already dead", target.Name)), nil
	}
	return rules.Success(""), nil
}

// rollToHit compares d20 + attack bonus against the target's armor class.
// A natural 20 always hits and doubles the damage dice.
func rollToHit(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, _ := st.Entity(cmd.Actor)
	target, _ := st.Entity(cmd.Targets[0])

	roll := st.Roller().Roll(20)
	total := roll + actor.Stat("attack_bonus")
	ac := target.Stat("armor_class")

	if roll == 20 {
		st.SetTemp(tempAttackHit, true)
		st.SetTemp(tempAttackCrit, true)
		res := rules.Success(fmt.Sprintf("%s strikes true against %s (natural 20)", actor.Name, target.Name))
		res.Data = map[string]any{"roll": roll, "total": total, "crit": true}
		res.Effects = []string{"critical_hit"}
		return res, nil
	}

	if total < ac {
		res := rules.Failure(fmt.Sprintf("%s misses %s (%d vs AC %d)", actor.Name, target.Name, total, ac))
		res.Data = map[string]any{"roll": roll, "total": total}
		return res, nil
	}

	st.SetTemp(tempAttackHit, true)
	res := rules.Success(fmt.Sprintf("%s hits %s (%d vs AC %d)", actor.Name, target.Name, total, ac))
	res.Data = map[string]any{"roll": roll, "total": total}
	return res, nil
}

func rollDamage(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, _ := st.Entity(cmd.Actor)
	target, _ := st.Entity(cmd.Targets[0])

	expr := cmd.ParamString("damage")
	if expr == "" {
		expr = "1d6"
	}

	dmg, err := st.Roller().RollExpr(expr)
	if err != nil {
		return types.RuleResult{}, fmt.Errorf("damage expression %q: %w", expr, err)
	}
	if crit, _ := st.Temp(tempAttackCrit); crit == true {
		dmg *= 2
	}
	if dmg < 1 {
		dmg = 1
	}

	remaining := st.AdjustStat(target.ID, "hp", -dmg)

	res := rules.Success(fmt.Sprintf("%s deals %d damage to %s", actor.Name, dmg, target.Name))
	res.Damage = []int{dmg}
	res.Data = map[string]any{"damage": dmg, "remaining_hp": remaining}
	if remaining == 0 {
		res.Message += fmt.Sprintf("; %s is slain", target.Name)
		res.Effects = append(res.Effects, "slain:"+target.ID)
	}
	return res, nil
}
