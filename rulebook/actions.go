package rulebook

import (
	"fmt"

	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// Action is the command-side contract: a game action that validates its
// own parameters, publishes them into the store's temporary namespace,
// and defers domain computation to the engine.
type Action interface {
	// Command returns the value object the engine dispatches on.
	Command() rules.Command
	// Execute validates, publishes parameters, and processes the command.
	Execute(eng *engine.Engine, st *store.Store) (types.CommandResult, error)
}

// run is the shared execute path: existence check, parameter publication,
// then engine dispatch.
func run(eng *engine.Engine, st *store.Store, cmd rules.Command) (types.CommandResult, error) {
	if !cmd.CanExecute(st) {
		return types.CommandResult{}, fmt.Errorf("%s: not all entities exist: %v", cmd.Type, cmd.EntityIDs())
	}
	for k, v := range cmd.Params {
		st.SetTemp("cmd."+k, v)
	}
	return eng.Process(cmd, st)
}

// Attack is one entity attacking another with an optional damage die.
type Attack struct {
	Actor  string
	Target string
	Damage string // dice expression, default "1d6"
}

func (a Attack) Command() rules.Command {
	return rules.NewCommand(CmdAttack, a.Actor, []string{a.Target},
		map[string]any{"damage": a.Damage})
}

func (a Attack) Execute(eng *engine.Engine, st *store.Store) (types.CommandResult, error) {
	if a.Actor == "" || a.Target == "" {
		return types.CommandResult{}, fmt.Errorf("attack: actor and target are required")
	}
	return run(eng, st, a.Command())
}

// SavingThrow is one entity resisting a hazard category, optionally with
// hazard damage on a failed (full) or made (half) save.
type SavingThrow struct {
	Actor    string
	Category string // "death", "wands", "petrify", "breath", "spells"
	Damage   string // optional dice expression
}

func (s SavingThrow) Command() rules.Command {
	return rules.NewCommand(CmdSavingThrow, s.Actor, nil,
		map[string]any{"category": s.Category, "damage": s.Damage})
}

func (s SavingThrow) Execute(eng *engine.Engine, st *store.Store) (types.CommandResult, error) {
	if s.Actor == "" || s.Category == "" {
		return types.CommandResult{}, fmt.Errorf("saving throw: actor and category are required")
	}
	return run(eng, st, s.Command())
}

// TurnUndead is a cleric attempting to turn a group of undead, checked
// in the order given.
type TurnUndead struct {
	Actor   string
	Targets []string
}

func (t TurnUndead) Command() rules.Command {
	return rules.NewCommand(CmdTurnUndead, t.Actor, t.Targets, nil)
}

func (t TurnUndead) Execute(eng *engine.Engine, st *store.Store) (types.CommandResult, error) {
	if t.Actor == "" || len(t.Targets) == 0 {
		return types.CommandResult{}, fmt.Errorf("turn undead: actor and at least one target are required")
	}
	return run(eng, st, t.Command())
}

// FallingDamage is an entity falling a given distance in feet.
type FallingDamage struct {
	Actor string
	Feet  int
}

func (f FallingDamage) Command() rules.Command {
	return rules.NewCommand(CmdFallingDamage, f.Actor, nil,
		map[string]any{"feet": f.Feet})
}

func (f FallingDamage) Execute(eng *engine.Engine, st *store.Store) (types.CommandResult, error) {
	if f.Actor == "" {
		return types.CommandResult{}, fmt.Errorf("falling damage: actor is required")
	}
	if f.Feet <= 0 {
		return types.CommandResult{}, fmt.Errorf("falling damage: feet must be positive, got %d", f.Feet)
	}
	return run(eng, st, f.Command())
}

// Morale is a morale check for a monster. The actor is whoever forced
// the check (may equal the target for self-triggered checks).
type Morale struct {
	Actor  string
	Target string
}

func (m Morale) Command() rules.Command {
	return rules.NewCommand(CmdMorale, m.Actor, []string{m.Target}, nil)
}

func (m Morale) Execute(eng *engine.Engine, st *store.Store) (types.CommandResult, error) {
	if m.Target == "" {
		return types.CommandResult{}, fmt.Errorf("morale: target is required")
	}
	return run(eng, st, m.Command())
}

// AwardExperience grants experience points to a character.
type AwardExperience struct {
	Actor  string
	Amount int
}

func (a AwardExperience) Command() rules.Command {
	return rules.NewCommand(CmdAwardExperience, a.Actor, nil,
		map[string]any{"amount": a.Amount})
}

func (a AwardExperience) Execute(eng *engine.Engine, st *store.Store) (types.CommandResult, error) {
	if a.Actor == "" {
		return types.CommandResult{}, fmt.Errorf("award experience: actor is required")
	}
	if a.Amount <= 0 {
		return types.CommandResult{}, fmt.Errorf("award experience: amount must be positive, got %d", a.Amount)
	}
	return run(eng, st, a.Command())
}
