// Package preflight runs the full external-dependency validation pipeline
// before any infrastructure-affecting operation: every requirement from the
// registry is validated concurrently against the live account, and the
// results fold into one pass/fail summary with the complete remediation list.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/requirements"
	"github.com/yairfalse/varmista/telemetry"
	"github.com/yairfalse/varmista/validator"
)

const (
	defaultWorkers = 4
	defaultTimeout = 10 * time.Second
)

// Validator is the per-requirement verification contract the runner drives.
type Validator interface {
	Validate(ctx context.Context, req requirements.Requirement, dctx *deploy.Context) (validator.Result, error)
}

// Runner validates all of a registry's requirements for one context.
type Runner struct {
	registry  requirements.Registry
	validator Validator
	dctx      *deploy.Context
	workers   int
	timeout   time.Duration
	logger    *telemetry.Logger
}

// RunnerOption adjusts runner construction.
type RunnerOption func(*Runner)

// WithWorkers bounds the validation worker pool.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTimeout sets the hard per-requirement timeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRunner creates a runner for one registry, validator and context.
func NewRunner(registry requirements.Registry, v Validator, dctx *deploy.Context, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry:  registry,
		validator: v,
		dctx:      dctx,
		workers:   defaultWorkers,
		timeout:   defaultTimeout,
		logger:    telemetry.NewLogger("preflight"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidateAll validates every requirement concurrently and returns the
// result map keyed by requirement key. Requirements are mutually independent
// and read-only, so there is no ordering or locking discipline across them.
//
// Each requirement gets a hard timeout; a requirement that exceeds it is
// marked invalid with a timeout-specific message instead of hanging the
// whole preflight. External cancellation aborts in-flight calls promptly and
// discards the partial map.
func (r *Runner) ValidateAll(ctx context.Context) (map[string]validator.Result, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "preflight.validate_all")
	defer span.End()

	started := time.Now()
	reqs := r.registry.Requirements(r.dctx)
	span.SetAttributes(attribute.Int("requirements.count", len(reqs)))

	var mu sync.Mutex
	results := make(map[string]validator.Result, len(reqs))

	p := pool.New().WithMaxGoroutines(r.workers)
	for _, req := range reqs {
		req := req
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			result := r.validateOne(ctx, req)
			mu.Lock()
			results[req.Key()] = result
			mu.Unlock()
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		// Partial results are discarded, never left as shared state.
		return nil, fmt.Errorf("preflight aborted: %w", err)
	}

	summary := Summarize(results)
	telemetry.RecordPreflightDuration(ctx, time.Since(started).Seconds(), summary.AllValid)
	r.logger.LogPreflightComplete(ctx, summary.TotalResources, summary.InvalidResources,
		summary.MissingResources, float64(time.Since(started).Milliseconds()))

	return results, nil
}

func (r *Runner) validateOne(ctx context.Context, req requirements.Requirement) validator.Result {
	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reqCtx, span := telemetry.Tracer.Start(reqCtx, "preflight.validate")
	span.SetAttributes(attribute.String("requirement.key", req.Key()))
	defer span.End()

	result, err := r.validator.Validate(reqCtx, req, r.dctx)
	if err != nil {
		// Transport failures and timeouts become reported results, never
		// silently dropped.
		result = r.failureResult(reqCtx, req, err)
	}

	r.logger.LogRequirementChecked(ctx, req.Key(), result.Valid, result.Exists)
	switch {
	case result.Valid:
		telemetry.RecordRequirement(ctx, "valid")
	case !result.Exists:
		telemetry.RecordRequirement(ctx, "missing")
		telemetry.RecordMissing(ctx, req.ResourceType())
	default:
		telemetry.RecordRequirement(ctx, "invalid")
	}
	return result
}

func (r *Runner) failureResult(ctx context.Context, req requirements.Requirement, err error) validator.Result {
	r.logger.LogValidationFailure(ctx, req.Key(), err)

	msg := fmt.Sprintf("validation failed: %v", err)
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("validation timed out after %s; the resource could not be verified", r.timeout)
	}
	return validator.Result{
		Valid:       false,
		Exists:      false,
		Errors:      []string{msg},
		ValidatedAt: time.Now().UTC(),
	}
}
