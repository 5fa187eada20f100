// Package naming produces canonical, constraint-checked resource names from
// pre-registered short codes. Names are deterministic for identical inputs,
// injective across purposes, and validated against per-kind provider limits
// rather than silently truncated.
package naming

import "strings"

// Codec composes canonical names for one (environment, application, region)
// binding. All three short codes are resolved at construction, so an unknown
// name surfaces before any resource naming begins.
type Codec struct {
	envCode    string
	appCode    string
	regionCode string
}

// NewCodec resolves all three short codes against the registry and returns a
// codec bound to them. Resolution failures are the typed Unknown*Error values
// so callers can abort with a configuration error before naming starts.
func NewCodec(reg *Registry, environment, application, region string) (*Codec, error) {
	envCode, err := reg.EnvironmentCode(environment)
	if err != nil {
		return nil, err
	}
	appCode, err := reg.ApplicationCode(application)
	if err != nil {
		return nil, err
	}
	regionCode, err := reg.RegionCode(region)
	if err != nil {
		return nil, err
	}
	return &Codec{envCode: envCode, appCode: appCode, regionCode: regionCode}, nil
}

// EnvironmentCode returns the bound environment short code.
func (c *Codec) EnvironmentCode() string { return c.envCode }

// ApplicationCode returns the bound application short code.
func (c *Codec) ApplicationCode() string { return c.appCode }

// RegionCode returns the bound region short code.
func (c *Codec) RegionCode() string { return c.regionCode }

// ComposeName builds the canonical name for (kind, purpose) under this
// codec's binding. Fields are joined with hyphens in fixed order: environment,
// application, region, kind token, purpose token, then an optional
// disambiguator. The result is validated against the kind's length limit and
// the lowercase-alphanumeric-plus-hyphen character set; violations return
// NameTooLongError or InvalidCharacterError, never a truncated name.
//
// For identical inputs the result is identical across calls and across
// processes: no randomness, no wall clock.
func (c *Codec) ComposeName(kind ResourceKind, purpose Purpose, disambiguator ...string) (string, error) {
	if purpose.IsZero() {
		return "", &InvalidCharacterError{Detail: "purpose is not set"}
	}

	parts := []string{c.envCode, c.appCode, c.regionCode, kind.Token(), purpose.Token()}
	for _, d := range disambiguator {
		if err := checkToken(d); err != nil {
			return "", err
		}
		parts = append(parts, d)
	}

	name := strings.Join(parts, "-")
	if err := checkName(name, kind); err != nil {
		return "", err
	}
	return name, nil
}

// checkName validates a fully composed name against a kind's constraints.
func checkName(name string, kind ResourceKind) error {
	spec := kindSpecs[kind]
	if len(name) > spec.maxLen {
		return &NameTooLongError{Name: name, Kind: kind, Limit: spec.maxLen}
	}
	if len(name) < spec.minLen {
		return &InvalidCharacterError{Name: name, Detail: "name is too short for kind " + spec.name}
	}
	if strings.Contains(name, "--") {
		return &InvalidCharacterError{Name: name, Detail: "consecutive hyphens"}
	}
	return checkToken(name)
}
