// Package checklist renders the requirement registry as an operator-facing
// markdown document: what must exist before a deployment, how each resource
// is validated, and the commands that create anything missing. It is a pure
// downstream renderer over the registry and validator output.
package checklist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/requirements"
	"github.com/yairfalse/varmista/validator"
)

// Render produces the markdown checklist for one context's requirements.
func Render(registry requirements.Registry, dctx *deploy.Context) (string, error) {
	reqs := registry.Requirements(dctx)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Key() < reqs[j].Key() })

	var b strings.Builder
	fmt.Fprintf(&b, "# External Dependency Checklist\n\n")
	fmt.Fprintf(&b, "Environment: **%s** (account %s, %s)\n\n",
		dctx.Environment.Name, dctx.Environment.AccountID, dctx.Environment.Region)
	fmt.Fprintf(&b, "Application: **%s** %s\n\n", dctx.Application.Name, dctx.Application.Version)
	fmt.Fprintf(&b, "These resources must exist before `varmista preflight` will pass.\n\n")

	for _, req := range reqs {
		if err := renderRequirement(&b, req, dctx); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

func renderRequirement(b *strings.Builder, req requirements.Requirement, dctx *deploy.Context) error {
	name, err := req.ExpectedName(dctx)
	if err != nil {
		return fmt.Errorf("derive name for %s: %w", req.Key(), err)
	}

	fmt.Fprintf(b, "## %s\n\n", req.Key())
	if req.Description != "" {
		fmt.Fprintf(b, "%s\n\n", req.Description)
	}

	fmt.Fprintf(b, "- [ ] `%s` exists", name)
	if !req.Required {
		fmt.Fprintf(b, " (optional)")
	}
	fmt.Fprintf(b, "\n")

	for _, rule := range req.Rules {
		fmt.Fprintf(b, "- [ ] %s\n", describeRule(rule))
	}
	for _, key := range sortedTagKeys(req.ExpectedTags) {
		fmt.Fprintf(b, "- [ ] tagged `%s=%s`\n", key, req.ExpectedTags[key])
	}
	fmt.Fprintf(b, "\n")

	commands, err := validator.CreationCommands(req, dctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "<details><summary>Create if missing</summary>\n\n```sh\n%s```\n\n</details>\n\n", commands)

	return nil
}

// describeRule turns a rule string into checklist prose.
func describeRule(rule string) string {
	name, arg, _ := strings.Cut(rule, ":")
	switch name {
	case "assumable-by":
		return fmt.Sprintf("trust policy allows `%s` to assume the role", arg)
	case "has-managed-policy":
		return fmt.Sprintf("managed policy `%s` is attached", arg)
	case "path-prefix":
		return fmt.Sprintf("role path starts with `%s`", arg)
	case "max-session-duration":
		return fmt.Sprintf("maximum session duration is at most %s seconds", arg)
	case "has-tag":
		return fmt.Sprintf("carries tag `%s`", arg)
	case "region-match":
		return "lives in the deployment region"
	case "active":
		return "status is ACTIVE"
	default:
		return fmt.Sprintf("satisfies `%s`", rule)
	}
}

func sortedTagKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
