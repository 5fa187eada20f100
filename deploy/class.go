package deploy

import "fmt"

// EnvironmentClass drives sizing and security policy for a deployable target.
// It is a closed enum; anything else fails YAML decoding.
type EnvironmentClass string

const (
	ClassNonProduction  EnvironmentClass = "nonprod"
	ClassProduction     EnvironmentClass = "prod"
	ClassSandbox        EnvironmentClass = "sandbox"
	ClassSecurity       EnvironmentClass = "security"
	ClassSharedServices EnvironmentClass = "shared-services"
)

// AllClasses returns every environment class.
func AllClasses() []EnvironmentClass {
	return []EnvironmentClass{
		ClassNonProduction,
		ClassProduction,
		ClassSandbox,
		ClassSecurity,
		ClassSharedServices,
	}
}

// Valid reports whether the class is one of the closed set.
func (c EnvironmentClass) Valid() bool {
	switch c {
	case ClassNonProduction, ClassProduction, ClassSandbox, ClassSecurity, ClassSharedServices:
		return true
	}
	return false
}

// UnmarshalYAML enforces the closed set at config load time.
func (c *EnvironmentClass) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	class := EnvironmentClass(raw)
	if !class.Valid() {
		return fmt.Errorf("unknown environment class %q", raw)
	}
	*c = class
	return nil
}

// defaultClassByEnvironment maps the well-known environment names to classes.
var defaultClassByEnvironment = map[string]EnvironmentClass{
	"Development":    ClassNonProduction,
	"Integration":    ClassNonProduction,
	"Staging":        ClassNonProduction,
	"Production":     ClassProduction,
	"Sandbox":        ClassSandbox,
	"Security":       ClassSecurity,
	"SharedServices": ClassSharedServices,
}

// ClassForEnvironment resolves a well-known environment name to its class.
// The second return reports whether the name was recognized.
func ClassForEnvironment(name string) (EnvironmentClass, bool) {
	class, ok := defaultClassByEnvironment[name]
	return class, ok
}
