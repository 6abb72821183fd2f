// Package rulebook provides the built-in rule content: the command types,
// rule chains, and action wrappers for classic dungeon-crawl procedures
// (attacks, saving throws, turning undead, falling damage, morale checks,
// experience awards). Table values here are illustrative house rules, not
// a reproduction of any published ruleset.
package rulebook

import (
	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/types"
)

// Command types resolved by the built-in chains.
const (
	CmdAttack          types.CommandType = "attack"
	CmdSavingThrow     types.CommandType = "saving_throw"
	CmdTurnUndead      types.CommandType = "turn_undead"
	CmdFallingDamage   types.CommandType = "falling_damage"
	CmdMorale          types.CommandType = "morale"
	CmdAwardExperience types.CommandType = "award_experience"
)

// Chains builds the full set of built-in chains, ready for registration.
func Chains() map[types.CommandType]*rules.Chain {
	return map[types.CommandType]*rules.Chain{
		CmdAttack:          AttackChain(),
		CmdSavingThrow:     SavingThrowChain(),
		CmdTurnUndead:      TurnUndeadChain(),
		CmdFallingDamage:   FallingDamageChain(),
		CmdMorale:          MoraleChain(),
		CmdAwardExperience: ExperienceChain(),
	}
}
