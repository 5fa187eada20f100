package validator

import (
	"fmt"
	"strconv"
	"strings"
)

// evalRule evaluates one declared rule against the live facts. It returns an
// empty string when the rule holds, otherwise the violation message, plus
// whether the rule speaks to the resource's permissions.
//
// Rules are string-encoded as "name" or "name:argument". An unknown rule
// name is itself a violation: a misdeclared requirement must show up in the
// report, not crash the run.
func evalRule(rule string, live *liveFacts) (violation string, permissionRelated bool) {
	name, arg := splitRule(rule)

	switch name {
	case "assumable-by":
		for _, svc := range live.trustedServices {
			if svc == arg {
				return "", false
			}
		}
		return fmt.Sprintf("role %q cannot assume %s: service is not a trusted principal", live.name, arg), true

	case "has-managed-policy":
		for _, policy := range live.managedPolicies {
			if policy == arg {
				return "", false
			}
		}
		return fmt.Sprintf("role %q is missing attached managed policy %s", live.name, arg), true

	case "path-prefix":
		if strings.HasPrefix(live.path, arg) {
			return "", false
		}
		return fmt.Sprintf("role %q has path %q, expected prefix %q", live.name, live.path, arg), false

	case "max-session-duration":
		limit, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Sprintf("rule %q has a non-numeric argument", rule), false
		}
		if int(live.maxSessionSeconds) <= limit {
			return "", false
		}
		return fmt.Sprintf("role %q allows sessions of %ds, limit is %ds", live.name, live.maxSessionSeconds, limit), false

	case "has-tag":
		key, want, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Sprintf("rule %q must be has-tag:Key=Value", rule), false
		}
		if got, present := live.tags[key]; present && got == want {
			return "", false
		}
		return fmt.Sprintf("%q is missing required tag %s=%s", live.name, key, want), false

	case "region-match":
		// Global services (IAM) always satisfy region-match.
		if live.region == "global" || live.region == "" || live.region == live.wantRegion {
			return "", false
		}
		return fmt.Sprintf("%q lives in %s, expected %s", live.name, live.region, live.wantRegion), false

	case "active":
		if strings.EqualFold(live.status, "ACTIVE") {
			return "", false
		}
		return fmt.Sprintf("%q has status %s, expected ACTIVE", live.name, live.status), false

	default:
		return fmt.Sprintf("unknown validation rule %q", rule), false
	}
}

func splitRule(rule string) (name, arg string) {
	name, arg, _ = strings.Cut(rule, ":")
	return name, arg
}
