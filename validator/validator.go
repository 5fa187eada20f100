// Package validator performs read-only verification of external dependencies
// against the live AWS account. It re-derives every expected name from the
// naming codec, fetches the resource by that name, and evaluates all declared
// rules independently so one pass surfaces the complete remediation list.
package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/time/rate"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/naming"
	"github.com/yairfalse/varmista/requirements"
	"github.com/yairfalse/varmista/telemetry"
)

// AWSValidator verifies requirements against a live account through narrow,
// read-only client interfaces.
type AWSValidator struct {
	iamClient IAMAPI
	s3Client  S3API
	ecsClient ECSAPI
	stsClient STSAPI

	limiter *rate.Limiter
	logger  *telemetry.Logger
}

// New builds a validator with real AWS clients for the given region.
func New(ctx context.Context, region string) (*AWSValidator, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewWithClients(
		iam.NewFromConfig(cfg),
		s3.NewFromConfig(cfg),
		ecs.NewFromConfig(cfg),
		sts.NewFromConfig(cfg),
	), nil
}

// NewWithClients builds a validator from explicit clients. Tests inject
// mocks through the narrow interfaces here.
func NewWithClients(iamClient IAMAPI, s3Client S3API, ecsClient ECSAPI, stsClient STSAPI) *AWSValidator {
	return &AWSValidator{
		iamClient: iamClient,
		s3Client:  s3Client,
		ecsClient: ecsClient,
		stsClient: stsClient,
		limiter:   rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		logger:    telemetry.NewLogger("validator"),
	}
}

// CheckAccount verifies the caller identity matches the context's account
// before any per-requirement work, so preflight never validates (or worse,
// passes) against the wrong account.
func (v *AWSValidator) CheckAccount(ctx context.Context, dctx *deploy.Context) error {
	out, err := v.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("get caller identity: %w", err)
	}

	caller := aws.ToString(out.Account)
	if caller != dctx.Environment.AccountID {
		return &naming.ConfigurationError{
			Reason: fmt.Sprintf("credentials are for account %s but environment %s expects account %s",
				caller, dctx.Environment.Name, dctx.Environment.AccountID),
		}
	}
	return nil
}

// Validate checks one requirement against the live account.
//
// The expected canonical name is re-derived from the naming codec under the
// same context; stored name literals are never trusted. An absent resource
// short-circuits with Exists=false and skips rule evaluation. A present
// resource has every declared rule evaluated independently, collecting all
// violations rather than stopping at the first.
//
// Validate returns an error only for programmer errors (nil arguments) and
// unexpected transport failures after the retry budget is spent; callers
// convert the latter into an invalid result so the failure is reported, not
// dropped.
func (v *AWSValidator) Validate(ctx context.Context, req requirements.Requirement, dctx *deploy.Context) (Result, error) {
	if dctx == nil {
		return Result{}, errors.New("validate: nil deployment context")
	}
	if req.Purpose.IsZero() {
		return Result{}, errors.New("validate: requirement has no purpose")
	}

	expectedName, err := req.ExpectedName(dctx)
	if err != nil {
		return Result{}, fmt.Errorf("derive expected name for %s: %w", req.Key(), err)
	}

	state := stateNotStarted
	result := Result{
		Metadata:    map[string]string{"expected_name": expectedName},
		ValidatedAt: time.Now().UTC(),
	}

	live, err := v.fetch(ctx, req.Kind, expectedName)
	if err != nil {
		if isNotFound(err) {
			state = stateChecked
			v.finishAbsent(&result, req, expectedName)
			result.Metadata["state"] = state.String()
			return result, nil
		}
		return Result{}, fmt.Errorf("fetch %s %q: %w", req.ResourceType(), expectedName, err)
	}
	state = stateChecked
	live.wantRegion = dctx.Environment.Region

	result.Exists = true
	result.FollowsNamingConvention = live.name == expectedName
	if !result.FollowsNamingConvention {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s %q does not match canonical name %q", req.ResourceType(), live.name, expectedName))
	}

	v.evaluateRules(&result, req, live)
	v.checkExpectedTags(&result, req, live)
	state = stateRulesEvaluated

	result.Valid = len(result.Errors) == 0
	result.Metadata["state"] = state.String()

	v.logger.WithContext(ctx).Debug().
		Str("requirement", req.Key()).
		Str("name", expectedName).
		Bool("valid", result.Valid).
		Int("violations", len(result.Errors)).
		Msg("requirement validated")

	return result, nil
}

// finishAbsent records the terminal missing-resource outcome. Optional
// requirements degrade to a warning.
func (v *AWSValidator) finishAbsent(result *Result, req requirements.Requirement, expectedName string) {
	result.Exists = false
	if req.Required {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s %q does not exist in the target account", req.ResourceType(), expectedName))
		return
	}
	result.Valid = true
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("optional %s %q does not exist", req.ResourceType(), expectedName))
}

// fetch retrieves the live resource facts by canonical name.
func (v *AWSValidator) fetch(ctx context.Context, kind naming.ResourceKind, name string) (*liveFacts, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	switch kind {
	case naming.KindIamRole:
		return v.fetchRole(ctx, name)
	case naming.KindS3Bucket:
		return v.fetchBucket(ctx, name)
	case naming.KindEcsCluster:
		return v.fetchCluster(ctx, name)
	default:
		return nil, fmt.Errorf("no live validator for resource kind %s", kind)
	}
}

func (v *AWSValidator) evaluateRules(result *Result, req requirements.Requirement, live *liveFacts) {
	result.HasRequiredPermissions = true

	for _, rule := range req.Rules {
		violation, permissionRelated := evalRule(rule, live)
		if violation == "" {
			continue
		}
		result.Errors = append(result.Errors, violation)
		if permissionRelated {
			result.HasRequiredPermissions = false
		}
	}
}

func (v *AWSValidator) checkExpectedTags(result *Result, req requirements.Requirement, live *liveFacts) {
	for key, want := range req.ExpectedTags {
		got, ok := live.tags[key]
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s %q is missing expected tag %s=%s", req.ResourceType(), live.name, key, want))
			continue
		}
		if got != want {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s %q tag %s is %q, expected %q", req.ResourceType(), live.name, key, got, want))
		}
	}
}
