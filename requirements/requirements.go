// Package requirements declares the external resources a deployment assumes
// exist but does not itself provision: pre-created identity roles, shared
// clusters, artifact buckets. Registries are pure functions of the deployment
// context; no I/O happens here.
package requirements

import (
	"fmt"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/naming"
)

// Requirement describes one externally provisioned dependency.
//
// The expected name is deliberately NOT stored: the validator re-derives it
// from the naming codec using Kind and Purpose under the same context, which
// prevents drift between declaration and verification.
type Requirement struct {
	Kind           naming.ResourceKind
	Purpose        naming.Purpose
	Description    string
	ArnPattern     string
	Rules          []string
	Required       bool
	ExpectedTags   map[string]string
	PerEnvironment map[string]Override
}

// Override adjusts a requirement for one environment. Nil/empty fields keep
// the base values; Rules and ExpectedTags are appended, not replaced.
type Override struct {
	Rules        []string
	ExpectedTags map[string]string
	Required     *bool
}

// ResourceType returns the kind's display name, e.g. "iam-role".
func (r Requirement) ResourceType() string {
	return r.Kind.String()
}

// Key identifies a requirement as "{resourceType}:{purpose}".
func (r Requirement) Key() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.Purpose)
}

// ExpectedName re-derives the canonical name this requirement must resolve
// to under the given context.
func (r Requirement) ExpectedName(dctx *deploy.Context) (string, error) {
	return dctx.Name(r.Kind, r.Purpose)
}

// ForEnvironment applies the per-environment override, if any, returning a
// copy. The receiver is never mutated.
func (r Requirement) ForEnvironment(envName string) Requirement {
	override, ok := r.PerEnvironment[envName]
	if !ok {
		return r
	}

	out := r
	out.Rules = append(append([]string{}, r.Rules...), override.Rules...)
	if len(override.ExpectedTags) > 0 {
		tags := make(map[string]string, len(r.ExpectedTags)+len(override.ExpectedTags))
		for k, v := range r.ExpectedTags {
			tags[k] = v
		}
		for k, v := range override.ExpectedTags {
			tags[k] = v
		}
		out.ExpectedTags = tags
	}
	if override.Required != nil {
		out.Required = *override.Required
	}
	return out
}

// Registry produces the requirement list for one deployment context. It must
// be pure: same context, same list, no I/O.
type Registry interface {
	Requirements(dctx *deploy.Context) []Requirement
}
