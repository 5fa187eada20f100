package naming

import "fmt"

// UnknownEnvironmentError means an environment name was never registered.
type UnknownEnvironmentError struct {
	Name string
}

func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("unknown environment %q: environments must be registered before use", e.Name)
}

// UnknownRegionError means a region has no short code registered.
type UnknownRegionError struct {
	Name string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q: no short code registered", e.Name)
}

// UnknownApplicationError means an application name was never registered.
type UnknownApplicationError struct {
	Name string
}

func (e *UnknownApplicationError) Error() string {
	return fmt.Sprintf("unknown application %q: applications must be registered before use", e.Name)
}

// ConfigurationError is a fatal pre-flight misconfiguration. It aborts a run
// before any resource naming begins.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NameTooLongError means a composed name exceeds the kind's provider limit.
// Names are never truncated silently.
type NameTooLongError struct {
	Name  string
	Kind  ResourceKind
	Limit int
}

func (e *NameTooLongError) Error() string {
	return fmt.Sprintf("name %q is %d characters, exceeds %s limit of %d",
		e.Name, len(e.Name), e.Kind, e.Limit)
}

// InvalidCharacterError means a composed name contains characters outside
// lowercase alphanumerics and hyphens.
type InvalidCharacterError struct {
	Name   string
	Detail string
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("name %q is invalid: %s", e.Name, e.Detail)
}
