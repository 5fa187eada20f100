package preflight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yairfalse/varmista/validator"
)

// Summary is the folded outcome of one preflight run.
type Summary struct {
	TotalResources   int      `json:"total_resources"`
	ValidResources   int      `json:"valid_resources"`
	InvalidResources int      `json:"invalid_resources"`
	MissingResources int      `json:"missing_resources"`
	InvalidNames     int      `json:"invalid_names"`
	AllValid         bool     `json:"all_valid"`
	AllErrors        []string `json:"all_errors,omitempty"`
	AllWarnings      []string `json:"all_warnings,omitempty"`
}

// Summarize folds a result map into counts and flattened, key-prefixed
// error/warning lists. It is pure and deterministic: map iteration order
// never affects the counts, and lists are sorted by requirement key for
// reproducible output. AllValid is always recomputed from the invalid count;
// an empty map is vacuously valid.
func Summarize(results map[string]validator.Result) Summary {
	summary := Summary{TotalResources: len(results)}

	keys := make([]string, 0, len(results))
	for key := range results {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		result := results[key]

		if result.Valid {
			summary.ValidResources++
		} else {
			summary.InvalidResources++
		}
		if !result.Exists {
			summary.MissingResources++
		}
		if result.Exists && !result.FollowsNamingConvention {
			summary.InvalidNames++
		}

		for _, msg := range result.Errors {
			summary.AllErrors = append(summary.AllErrors, fmt.Sprintf("%s: %s", key, msg))
		}
		for _, msg := range result.Warnings {
			summary.AllWarnings = append(summary.AllWarnings, fmt.Sprintf("%s: %s", key, msg))
		}
	}

	summary.AllValid = summary.InvalidResources == 0
	return summary
}

// FormatReport renders the preflight outcome for operators: counts, every
// error and warning, and for each missing resource its remediation command
// block. One pass surfaces the complete remediation list.
func (r *Runner) FormatReport(results map[string]validator.Result) string {
	summary := Summarize(results)

	var b strings.Builder
	b.WriteString("════════════════════════════════════════════════════\n")
	if summary.AllValid {
		fmt.Fprintf(&b, "  PREFLIGHT PASSED - %d external dependencies verified\n", summary.TotalResources)
	} else {
		fmt.Fprintf(&b, "  PREFLIGHT FAILED - %d of %d dependencies invalid\n",
			summary.InvalidResources, summary.TotalResources)
	}
	b.WriteString("════════════════════════════════════════════════════\n\n")

	fmt.Fprintf(&b, "DEPENDENCY STATUS\n")
	fmt.Fprintf(&b, "  %3d  verified\n", summary.ValidResources)
	fmt.Fprintf(&b, "  %3d  invalid\n", summary.InvalidResources)
	fmt.Fprintf(&b, "  %3d  missing\n", summary.MissingResources)
	fmt.Fprintf(&b, "  %3d  naming violations\n\n", summary.InvalidNames)

	if len(summary.AllErrors) > 0 {
		b.WriteString("ERRORS\n")
		for _, msg := range summary.AllErrors {
			fmt.Fprintf(&b, "  ✗ %s\n", msg)
		}
		b.WriteString("\n")
	}

	if len(summary.AllWarnings) > 0 {
		b.WriteString("WARNINGS\n")
		for _, msg := range summary.AllWarnings {
			fmt.Fprintf(&b, "  ! %s\n", msg)
		}
		b.WriteString("\n")
	}

	r.writeRemediation(&b, results)

	b.WriteString("────────────────────────────────────────────────────\n")
	if summary.AllValid {
		b.WriteString("All external dependencies verified. Safe to deploy.\n")
	} else {
		b.WriteString("Fix the issues above and re-run preflight before deploying.\n")
	}
	b.WriteString("════════════════════════════════════════════════════\n")

	return b.String()
}

// writeRemediation emits creation command blocks for missing required
// resources, for operator review only.
func (r *Runner) writeRemediation(b *strings.Builder, results map[string]validator.Result) {
	reqs := r.registry.Requirements(r.dctx)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Key() < reqs[j].Key() })

	wroteHeader := false
	for _, req := range reqs {
		result, ok := results[req.Key()]
		if !ok || result.Exists || !req.Required {
			continue
		}
		commands, err := validator.CreationCommands(req, r.dctx)
		if err != nil {
			continue
		}
		if !wroteHeader {
			b.WriteString("REMEDIATION (review before running)\n\n")
			wroteHeader = true
		}
		b.WriteString(indent(commands, "  "))
		b.WriteString("\n")
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
