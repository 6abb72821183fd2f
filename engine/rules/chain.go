package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// Config controls a chain's execution policy.
type Config struct {
	// StopOnFailure halts the run after the first failing rule.
	StopOnFailure bool
	// MergeResults combines every rule's data/effects/damage into the
	// chain result; later rules overwrite same-named data keys.
	MergeResults bool
	// ClearTemporary wipes the store's temporary namespace after the run.
	ClearTemporary bool
}

// Chain is an ordered, mutable collection of rules bound to one command
// type. It owns its rule list for the lifetime of the engine.
type Chain struct {
	cfg         Config
	ruleList    []Rule
	invocations map[string]int
}

// NewChain creates an empty chain with the given configuration.
func NewChain(cfg Config) *Chain {
	return &Chain{
		cfg:         cfg,
		invocations: map[string]int{},
	}
}

// Add registers rules in order. Registration order is preserved and breaks
// priority ties; duplicate names are reported by Validate, not here.
func (c *Chain) Add(rules ...Rule) *Chain {
	c.ruleList = append(c.ruleList, rules...)
	return c
}

// Len returns the number of registered rules.
func (c *Chain) Len() int {
	return len(c.ruleList)
}

// Rules returns the registered rules in registration order.
func (c *Chain) Rules() []Rule {
	return c.ruleList
}

// Invocations returns how many times each rule has actually been invoked.
// Skipped rules and prerequisite failures do not count.
func (c *Chain) Invocations() map[string]int {
	out := make(map[string]int, len(c.invocations))
	for k, v := range c.invocations {
		out[k] = v
	}
	return out
}

// Validate reports structural problems: an empty chain or duplicate rule
// names. These are setup faults, never runtime outcomes.
func (c *Chain) Validate() error {
	if len(c.ruleList) == 0 {
		return fmt.Errorf("chain has no rules")
	}
	seen := map[string]bool{}
	var dups []string
	for _, r := range c.ruleList {
		if seen[r.Name()] {
			dups = append(dups, r.Name())
			continue
		}
		seen[r.Name()] = true
	}
	if len(dups) > 0 {
		return fmt.Errorf("duplicate rule name(s): %s", strings.Join(dups, ", "))
	}
	return nil
}

// Execute runs every applicable rule against the command/store pair in
// ascending priority order and merges the individual results into one
// verdict.
func (c *Chain) Execute(st *store.Store, cmd Command) types.ChainResult {
	// Stable sort keeps registration order for equal priorities.
	ordered := make([]Rule, len(c.ruleList))
	copy(ordered, c.ruleList)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	var results []types.RuleResult
	succeeded := map[string]bool{}
	stopped := false

	for _, r := range ordered {
		// Applicability is re-evaluated at this point in the sequence;
		// earlier rules may have set temporary data this check reads.
		applicable, fault := canApply(r, st, cmd)
		if fault != nil {
			fault.Rule = r.Name()
			results = append(results, *fault)
			if c.cfg.StopOnFailure {
				stopped = true
				break
			}
			continue
		}
		if !applicable {
			continue
		}

		if missing := unmetPrerequisites(r, succeeded); len(missing) > 0 {
			// Synthetic failure: recorded, never invoked, never stops the
			// chain, and absent from the invocation counters.
			results = append(results, types.RuleResult{
				Rule:    r.Name(),
				Success: false,
				Message: fmt.Sprintf("prerequisites not met: %s", strings.Join(missing, ", ")),
			})
			continue
		}

		res := invoke(r, st, cmd)
		res.Rule = r.Name()
		results = append(results, res)
		c.invocations[r.Name()]++

		if res.Success {
			succeeded[r.Name()] = true
		}

		if res.StopChain {
			stopped = true
			break
		}
		if !res.Success && c.cfg.StopOnFailure {
			stopped = true
			break
		}
	}

	out := c.merge(results)
	out.StoppedEarly = stopped

	if c.cfg.ClearTemporary {
		st.ClearTemp()
	}

	return out
}

// canApply evaluates a rule's applicability, converting a panic in the
// predicate into a failure result so no content rule can escape the
// chain. The rule is never invoked and never counted.
func canApply(r Rule, st *store.Store, cmd Command) (applicable bool, fault *types.RuleResult) {
	defer func() {
		if rec := recover(); rec != nil {
			applicable = false
			fault = &types.RuleResult{
				Success: false,
				Message: fmt.Sprintf("rule %s: %v", r.Name(), rec),
			}
		}
	}()
	return r.CanApply(st, cmd), nil
}

// invoke runs a rule, converting a returned error or a panic into a
// failure result carrying the rule's identity.
func invoke(r Rule, st *store.Store, cmd Command) (res types.RuleResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = types.RuleResult{
				Success: false,
				Message: fmt.Sprintf("rule %s: %v", r.Name(), rec),
			}
		}
	}()

	res, err := r.Apply(st, cmd)
	if err != nil {
		return types.RuleResult{
			Success: false,
			Message: fmt.Sprintf("rule %s: %v", r.Name(), err),
		}
	}
	return res
}

func unmetPrerequisites(r Rule, succeeded map[string]bool) []string {
	var missing []string
	for _, name := range r.Prerequisites() {
		if !succeeded[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// merge folds individual results into one chain result. Success is the
// AND of all executed rules (vacuously true); messages are always
// concatenated; data/effects/damage merge only when configured, with
// later data keys overwriting earlier ones.
func (c *Chain) merge(results []types.RuleResult) types.ChainResult {
	out := types.ChainResult{
		Success: true,
		Results: results,
	}

	var messages []string
	for _, res := range results {
		if !res.Success {
			out.Success = false
			if res.Critical {
				out.Critical = true
			}
		}
		if res.Message != "" {
			messages = append(messages, res.Message)
		}

		if !c.cfg.MergeResults {
			continue
		}
		if len(res.Data) > 0 {
			if out.Data == nil {
				out.Data = map[string]any{}
			}
			for k, v := range res.Data {
				out.Data[k] = v
			}
		}
		out.Effects = append(out.Effects, res.Effects...)
		out.Damage = append(out.Damage, res.Damage...)
	}

	out.Message = strings.Join(messages, "; ")
	return out
}
