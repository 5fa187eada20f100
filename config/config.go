// Package config loads the deployment manifest (varmista.yaml): the
// environments that exist, the applications and their short codes, and
// preflight tuning. The manifest feeds the naming registry and the
// deployment context builders; all code errors surface at load time.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/naming"
)

// Config represents the main configuration
type Config struct {
	Version      string            `yaml:"version"`
	Environments []Environment     `yaml:"environments"`
	Applications []Application     `yaml:"applications"`
	Regions      map[string]string `yaml:"regions,omitempty"`
	Preflight    Preflight         `yaml:"preflight,omitempty"`
	Telemetry    Telemetry         `yaml:"telemetry,omitempty"`
}

// Environment is one deployable target in the manifest.
type Environment struct {
	Name      string                  `yaml:"name"`
	Code      string                  `yaml:"code,omitempty"`
	AccountID string                  `yaml:"account_id"`
	Region    string                  `yaml:"region"`
	Class     deploy.EnvironmentClass `yaml:"class"`
	Tags      map[string]string       `yaml:"tags,omitempty"`
}

// Application is one deployable application and its naming short code.
type Application struct {
	Name             string                   `yaml:"name"`
	Code             string                   `yaml:"code"`
	Version          string                   `yaml:"version,omitempty"`
	Settings         map[string]string        `yaml:"settings,omitempty"`
	SizingOverride   *deploy.SizingOverride   `yaml:"sizing_override,omitempty"`
	SecurityOverride *deploy.SecurityOverride `yaml:"security_override,omitempty"`
}

// Preflight tunes the validation run.
type Preflight struct {
	Workers int           `yaml:"workers,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Telemetry configures trace export.
type Telemetry struct {
	OTELEndpoint string `yaml:"otel_endpoint,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty"`
}

// Load loads the manifest from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate ensures the manifest is internally consistent. Short-code
// collisions are caught here, at startup, by building a throwaway registry.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if len(c.Environments) == 0 {
		return fmt.Errorf("at least one environment is required")
	}

	seen := make(map[string]bool, len(c.Environments))
	for _, env := range c.Environments {
		if env.Name == "" {
			return fmt.Errorf("environment name is required")
		}
		if seen[env.Name] {
			return fmt.Errorf("environment %q declared twice", env.Name)
		}
		seen[env.Name] = true
		if env.AccountID == "" {
			return fmt.Errorf("environment %q: account_id is required", env.Name)
		}
		if env.Region == "" {
			return fmt.Errorf("environment %q: region is required", env.Name)
		}
		if env.Class != "" && !env.Class.Valid() {
			return fmt.Errorf("environment %q: unknown class %q", env.Name, env.Class)
		}
	}

	for _, app := range c.Applications {
		if app.Name == "" {
			return fmt.Errorf("application name is required")
		}
		if app.Code == "" {
			return fmt.Errorf("application %q: code is required", app.Name)
		}
	}

	if _, err := c.NamingRegistry(); err != nil {
		return err
	}
	return nil
}

// NamingRegistry builds a naming registry from the manifest, on top of the
// default environment and region codes. Application code collisions fail
// here with a ConfigurationError.
func (c *Config) NamingRegistry() (*naming.Registry, error) {
	reg := naming.NewRegistry()
	for name, code := range c.Regions {
		if err := reg.RegisterRegion(name, code); err != nil {
			return nil, err
		}
	}
	for _, env := range c.Environments {
		if env.Code == "" {
			continue
		}
		if err := reg.RegisterEnvironment(env.Name, env.Code); err != nil {
			return nil, err
		}
	}
	for _, app := range c.Applications {
		if err := reg.RegisterApplication(app.Name, app.Code); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// EnvironmentDescriptor resolves one environment by name. The class defaults
// from the well-known environment names when the manifest omits it.
func (c *Config) EnvironmentDescriptor(name string) (deploy.EnvironmentDescriptor, error) {
	for _, env := range c.Environments {
		if env.Name != name {
			continue
		}
		class := env.Class
		if class == "" {
			if known, ok := deploy.ClassForEnvironment(env.Name); ok {
				class = known
			} else {
				class = deploy.ClassNonProduction
			}
		}
		return deploy.EnvironmentDescriptor{
			Name:      env.Name,
			AccountID: env.AccountID,
			Region:    env.Region,
			Class:     class,
			Tags:      env.Tags,
		}, nil
	}
	return deploy.EnvironmentDescriptor{}, fmt.Errorf("environment %q not in manifest", name)
}

// ApplicationDescriptor resolves one application by name.
func (c *Config) ApplicationDescriptor(name string) (deploy.ApplicationDescriptor, error) {
	for _, app := range c.Applications {
		if app.Name != name {
			continue
		}
		version := app.Version
		if version == "" {
			version = "0.0.0"
		}
		return deploy.ApplicationDescriptor{
			Name:             app.Name,
			Version:          version,
			Settings:         app.Settings,
			SizingOverride:   app.SizingOverride,
			SecurityOverride: app.SecurityOverride,
		}, nil
	}
	return deploy.ApplicationDescriptor{}, fmt.Errorf("application %q not in manifest", name)
}
