package validator

import "time"

// Result is the outcome of validating one external resource requirement.
// Expected outcomes (resource absent, rule violated) live in these fields;
// they are never raised as errors.
type Result struct {
	Valid                   bool              `json:"valid"`
	Exists                  bool              `json:"exists"`
	FollowsNamingConvention bool              `json:"follows_naming_convention"`
	HasRequiredPermissions  bool              `json:"has_required_permissions"`
	Errors                  []string          `json:"errors,omitempty"`
	Warnings                []string          `json:"warnings,omitempty"`
	Metadata                map[string]string `json:"metadata,omitempty"`
	ValidatedAt             time.Time         `json:"validated_at"`
}

// checkState is the per-requirement validation state machine. Each
// requirement walks NotStarted -> Checked, then -> RulesEvaluated only when
// the resource exists; absence is terminal at Checked.
type checkState int

const (
	stateNotStarted checkState = iota
	stateChecked
	stateRulesEvaluated
)

func (s checkState) String() string {
	switch s {
	case stateChecked:
		return "checked"
	case stateRulesEvaluated:
		return "rules-evaluated"
	default:
		return "not-started"
	}
}
