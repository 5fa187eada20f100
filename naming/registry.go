package naming

import "fmt"

// Registry maps environment, region and application names to the short codes
// embedded in canonical names. Environments and applications form a closed,
// pre-registered universe; looking up anything unregistered is an error, not
// a fallback.
type Registry struct {
	environments map[string]string
	regions      map[string]string
	applications map[string]string
	appByCode    map[string]string // reverse index, enforces injectivity
}

// NewRegistry creates a registry seeded with the default environment and
// region codes. Applications always register explicitly.
func NewRegistry() *Registry {
	r := &Registry{
		environments: make(map[string]string),
		regions:      make(map[string]string),
		applications: make(map[string]string),
		appByCode:    make(map[string]string),
	}
	for name, code := range defaultEnvironmentCodes {
		r.environments[name] = code
	}
	for name, code := range defaultRegionCodes {
		r.regions[name] = code
	}
	return r
}

var defaultEnvironmentCodes = map[string]string{
	"Development":    "d",
	"Integration":    "i",
	"Staging":        "s",
	"Production":     "p",
	"Sandbox":        "sb",
	"Security":       "sc",
	"SharedServices": "ss",
}

var defaultRegionCodes = map[string]string{
	"us-east-1":      "ue1",
	"us-east-2":      "ue2",
	"us-west-1":      "uw1",
	"us-west-2":      "uw2",
	"eu-west-1":      "ew1",
	"eu-west-2":      "ew2",
	"eu-central-1":   "ec1",
	"ap-southeast-1": "as1",
	"ap-southeast-2": "as2",
	"ap-northeast-1": "an1",
	"ca-central-1":   "cc1",
	"sa-east-1":      "se1",
}

// RegisterEnvironment adds or replaces an environment short code. Codes are
// 1-2 lowercase letters.
func (r *Registry) RegisterEnvironment(name, code string) error {
	if err := checkShortCode(code, 2); err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("environment %q", name), Err: err}
	}
	r.environments[name] = code
	return nil
}

// RegisterRegion adds or replaces a region short code.
func (r *Registry) RegisterRegion(name, code string) error {
	if err := checkShortCode(code, 4); err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("region %q", name), Err: err}
	}
	r.regions[name] = code
	return nil
}

// RegisterApplication adds an application abbreviation. Codes must be
// injective across the whole deployment universe: two applications colliding
// on a code is a startup-time configuration error, never a silent runtime
// naming collision.
func (r *Registry) RegisterApplication(name, code string) error {
	if err := checkShortCode(code, 8); err != nil {
		return &ConfigurationError{Reason: fmt.Sprintf("application %q", name), Err: err}
	}
	if existing, ok := r.appByCode[code]; ok && existing != name {
		return &ConfigurationError{
			Reason: fmt.Sprintf("applications %q and %q both map to short code %q", existing, name, code),
		}
	}
	if prev, ok := r.applications[name]; ok && prev != code {
		delete(r.appByCode, prev)
	}
	r.applications[name] = code
	r.appByCode[code] = name
	return nil
}

// EnvironmentCode resolves an environment name to its short code.
func (r *Registry) EnvironmentCode(name string) (string, error) {
	code, ok := r.environments[name]
	if !ok {
		return "", &UnknownEnvironmentError{Name: name}
	}
	return code, nil
}

// RegionCode resolves a provider region identifier to its short code.
func (r *Registry) RegionCode(name string) (string, error) {
	code, ok := r.regions[name]
	if !ok {
		return "", &UnknownRegionError{Name: name}
	}
	return code, nil
}

// ApplicationCode resolves an application name to its abbreviation.
func (r *Registry) ApplicationCode(name string) (string, error) {
	code, ok := r.applications[name]
	if !ok {
		return "", &UnknownApplicationError{Name: name}
	}
	return code, nil
}

func checkShortCode(code string, maxLen int) error {
	if code == "" {
		return fmt.Errorf("short code is empty")
	}
	if len(code) > maxLen {
		return fmt.Errorf("short code %q exceeds %d characters", code, maxLen)
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			continue
		}
		return fmt.Errorf("short code %q must be lowercase alphanumeric", code)
	}
	return nil
}
