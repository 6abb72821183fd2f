package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"temp_set": true,
	"temp_is":  true,
	"stat_gt":  true,
	"stat_lt":  true,
	"prop_is":  true,
	"exists":   true,
	"has_item": true,
	"not":      true,
}

// validate checks the compiled chains for structural integrity: every
// chain has rules and unique rule names, dice expressions parse, rule
// references in requires lists resolve, and condition types are known.
func validate(chains map[types.CommandType]*rules.Chain) error {
	ve := &ValidationError{}

	// Deterministic error ordering.
	keys := make([]string, 0, len(chains))
	for t := range chains {
		keys = append(keys, string(t))
	}
	sort.Strings(keys)

	for _, key := range keys {
		chain := chains[types.CommandType(key)]

		if err := chain.Validate(); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("chain %q: %v", key, err))
		}

		names := map[string]bool{}
		for _, r := range chain.Rules() {
			names[r.Name()] = true
		}

		for _, r := range chain.Rules() {
			lr, ok := r.(*luaRule)
			if !ok {
				continue
			}
			prefix := fmt.Sprintf("chain %q rule %q", key, lr.name)

			for _, req := range lr.requires {
				if !names[req] {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"%s: requires unknown rule %q", prefix, req))
				}
			}

			if lr.roll != "" {
				if _, err := dice.Parse(lr.roll); err != nil {
					ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %v", prefix, err))
				}
			}
			if lr.damage != "" {
				if _, err := dice.Parse(lr.damage); err != nil {
					ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %v", prefix, err))
				}
			}

			validateConditions(lr.conditions, prefix, ve)

			if lr.roll != "" && lr.successAt == nil && lr.successUnder == nil {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"%s: roll without success_at/success_under always succeeds", prefix))
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateConditions(conds []condDef, prefix string, ve *ValidationError) {
	for _, c := range conds {
		if !validConditionTypes[c.condType] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: unknown condition type %q", prefix, c.condType))
		}
		if c.inner != nil {
			validateConditions([]condDef{*c.inner}, prefix, ve)
		}
	}
}
