package rulebook

import (
	"fmt"
	"strings"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// TurnUndeadChain resolves a cleric's attempt to turn undead targets.
func TurnUndeadChain() *rules.Chain {
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
			RuleName: "actor_is_cleric",
			Prio:     20,
			Run:      actorIsCleric,
		},
		rules.Func{
			RuleName: "turning_roll",
			Prio:     50,
			Requires: []string{"actor_is_cleric"},
			Run:      turningRoll,
		},
	)
	return c
}

func actorIsCleric(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, _ := st.Entity(cmd.Actor)
	if class, _ := actor.Props["class"].(string); class != "cleric" {
		return rules.Failure(fmt.Sprintf("%s is no cleric and cannot turn undead", actor.Name)), nil
	}
	return rules.Success(""), nil
}

// turningRoll checks each undead target in order. A cleric four or more
// levels above the creature's hit dice destroys it outright; otherwise
// 2d6 against a target of 7 + 2×(HD − level) decides. The first creature
// to resist stops the attempt.
func turningRoll(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	actor, _ := st.Entity(cmd.Actor)
	level := actor.Stat("level")

	var turned, destroyed []string
	for _, id := range cmd.Targets {
		target, ok := st.Entity(id)
		if !ok {
			return rules.Failure(fmt.Sprintf("%s is not present", id)), nil
		}
		if undead, _ := target.Props["undead"].(bool); !undead {
			return rules.Failure(fmt.Sprintf("%s is not undead", target.Name)), nil
		}

		hd := target.Stat("hit_dice")
		if level-hd >= 4 {
			st.RemoveEntity(id)
			destroyed = append(destroyed, target.Name)
			continue
		}

		need := 7 + 2*(hd-level)
		if need < 2 {
			need = 2
		}
		if need > 12 {
			need = 12
		}
		if st.Roller().RollN(2, 6) >= need {
			if target.Props == nil {
				target.Props = map[string]any{}
			}
			target.Props["turned"] = true
			turned = append(turned, target.Name)
			continue
		}

		// The line holds: this creature resisted, the rest are unmoved.
		res := rules.Failure(fmt.Sprintf("%s stands against %s's turning", target.Name, actor.Name))
		res.Data = map[string]any{"turned": len(turned), "destroyed": len(destroyed)}
		return res, nil
	}

	var parts []string
	if len(destroyed) > 0 {
		parts = append(parts, fmt.Sprintf("%s crumble to dust", strings.Join(destroyed, ", ")))
	}
	if len(turned) > 0 {
		parts = append(parts, fmt.Sprintf("%s flee the holy symbol", strings.Join(turned, ", ")))
	}
	if len(parts) == 0 {
		return rules.Failure("there is nothing to turn"), nil
	}

	res := rules.Success(strings.Join(parts, "; "))
	res.Data = map[string]any{"turned": len(turned), "destroyed": len(destroyed)}
	for _, name := range turned {
		res.Effects = append(res.Effects, "turned:"+name)
	}
	for _, name := range destroyed {
		res.Effects = append(res.Effects, "destroyed:"+name)
	}
	return res, nil
}
