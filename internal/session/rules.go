package session

import "fmt"

// Rule names accepted by the cleaning endpoints. The flags are passed
// through verbatim; the server decides what each one means per metric.
const (
	RuleRemoveDuplicates = "removeDuplicates"
	RuleGroupUnits       = "groupUnits"
	RuleValidateFormats  = "validateFormats"
	RuleStandardizeNames = "standardizeNames"
	RuleRemoveOutliers   = "removeOutliers"
	RuleNormalizeData    = "normalizeData"
)

// ruleOrder fixes display and payload iteration order.
var ruleOrder = []string{
	RuleRemoveDuplicates,
	RuleGroupUnits,
	RuleValidateFormats,
	RuleStandardizeNames,
	RuleRemoveOutliers,
	RuleNormalizeData,
}

// RuleSet is the set of optional cleaning behaviors. All 64 combinations
// are legal payloads; no cross-rule validation happens client-side.
type RuleSet map[string]bool

// DefaultRules returns the rule defaults used by a fresh session.
func DefaultRules() RuleSet {
	return RuleSet{
		RuleRemoveDuplicates: true,
		RuleGroupUnits:       true,
		RuleValidateFormats:  true,
		RuleStandardizeNames: false,
		RuleRemoveOutliers:   false,
		RuleNormalizeData:    false,
	}
}

// RuleNames returns the fixed rule names in display order.
func RuleNames() []string {
	out := make([]string, len(ruleOrder))
	copy(out, ruleOrder)
	return out
}

// Toggle flips one rule. Unknown names are rejected so a typo cannot
// silently grow the payload.
func (r RuleSet) Toggle(name string) error {
	if _, ok := r[name]; !ok {
		return fmt.Errorf("unknown cleaning rule %q", name)
	}
	r[name] = !r[name]
	return nil
}

// Clone returns an independent copy of the rule set.
func (r RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
