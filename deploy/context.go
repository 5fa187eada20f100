// Package deploy holds the composition root for one deployment run: the
// environment and application descriptors, the naming codec bound to them,
// and the common tag set every constructed resource carries.
package deploy

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yairfalse/varmista/naming"
)

// Context binds one environment and one application for a single deployment
// invocation. It is immutable after construction except for the internal
// name memoization cache. The naming codec is built once here and passed by
// reference; there is no ambient global naming state.
type Context struct {
	Environment  EnvironmentDescriptor
	Application  ApplicationDescriptor
	DeploymentID string
	DeployedBy   string
	DeployedAt   time.Time

	codec *naming.Codec

	mu        sync.Mutex
	nameCache map[nameKey]string
}

type nameKey struct {
	kind    naming.ResourceKind
	purpose string
	disamb  string
}

// Option adjusts context construction.
type Option func(*Context)

// WithDeployedBy overrides the operator identity recorded in common tags.
func WithDeployedBy(who string) Option {
	return func(c *Context) { c.DeployedBy = who }
}

// WithTimestamp overrides the deployment timestamp. Used by tests.
func WithTimestamp(t time.Time) Option {
	return func(c *Context) { c.DeployedAt = t }
}

// NewContext builds the composition root for one deployment run. All three
// short codes are resolved eagerly so a misconfigured environment, region or
// application surfaces here as a ConfigurationError, before any resource
// naming begins.
func NewContext(reg *naming.Registry, env EnvironmentDescriptor, app ApplicationDescriptor, opts ...Option) (*Context, error) {
	if err := checkDescriptors(env, app); err != nil {
		return nil, err
	}

	codec, err := naming.NewCodec(reg, env.Name, app.Name, env.Region)
	if err != nil {
		return nil, &naming.ConfigurationError{
			Reason: fmt.Sprintf("cannot bind naming codec for %s/%s", env.Name, app.Name),
			Err:    err,
		}
	}

	ctx := &Context{
		Environment:  env,
		Application:  app,
		DeploymentID: uuid.NewString(),
		DeployedBy:   deployedBy(),
		DeployedAt:   time.Now().UTC(),
		codec:        codec,
		nameCache:    make(map[nameKey]string),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx, nil
}

func checkDescriptors(env EnvironmentDescriptor, app ApplicationDescriptor) error {
	if env.Name == "" {
		return &naming.ConfigurationError{Reason: "environment name is empty"}
	}
	if env.Region == "" {
		return &naming.ConfigurationError{Reason: "environment region is empty"}
	}
	if !env.Class.Valid() {
		return &naming.ConfigurationError{Reason: fmt.Sprintf("environment %s has invalid class %q", env.Name, env.Class)}
	}
	if app.Name == "" {
		return &naming.ConfigurationError{Reason: "application name is empty"}
	}
	return nil
}

func deployedBy() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "varmista"
}

// Codec returns the naming codec bound at construction.
func (c *Context) Codec() *naming.Codec {
	return c.codec
}

// Name composes the canonical name for (kind, purpose) under this context,
// memoizing the result. Memoization is an optimization only; the codec is
// deterministic with or without it.
func (c *Context) Name(kind naming.ResourceKind, purpose naming.Purpose, disambiguator ...string) (string, error) {
	// The key must cover the whole disambiguator list; keying on a prefix
	// would let distinct inputs share a cache entry.
	key := nameKey{kind: kind, purpose: purpose.Token(), disamb: strings.Join(disambiguator, "-")}

	c.mu.Lock()
	cached, ok := c.nameCache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	name, err := c.codec.ComposeName(kind, purpose, disambiguator...)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.nameCache[key] = name
	c.mu.Unlock()
	return name, nil
}

// CommonTags derives the fixed tag set applied to every constructed resource,
// merged with environment-level custom tags. Context-level keys win on
// collision.
func (c *Context) CommonTags() map[string]string {
	tags := make(map[string]string, len(c.Environment.Tags)+6)
	for k, v := range c.Environment.Tags {
		tags[k] = v
	}
	tags["Environment"] = c.Environment.Name
	tags["Application"] = c.Application.Name
	tags["Version"] = c.Application.Version
	tags["DeploymentId"] = c.DeploymentID
	tags["DeployedBy"] = c.DeployedBy
	tags["DeployedAt"] = c.DeployedAt.Format("2006-01-02")
	return tags
}

// Validate re-resolves all three short codes against the registry and fails
// fast with a ConfigurationError on any miss. NewContext already performs
// this; Validate exists for callers that hold descriptors from elsewhere and
// want the fail-fast check at the top of a run.
func (c *Context) Validate(reg *naming.Registry) error {
	if _, err := reg.EnvironmentCode(c.Environment.Name); err != nil {
		return &naming.ConfigurationError{Reason: "environment short code", Err: err}
	}
	if _, err := reg.ApplicationCode(c.Application.Name); err != nil {
		return &naming.ConfigurationError{Reason: "application short code", Err: err}
	}
	if _, err := reg.RegionCode(c.Environment.Region); err != nil {
		return &naming.ConfigurationError{Reason: "region short code", Err: err}
	}
	return nil
}
