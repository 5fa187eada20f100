package validator

import (
	"context"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/naming"
	"github.com/yairfalse/varmista/requirements"
)

type mockIAM struct {
	role         *iamtypes.Role
	getRoleErr   error
	getRoleCalls int
	// errors returned on successive GetRole calls before role is served
	transientErrs []error
	attached      []iamtypes.AttachedPolicy
	tags          []iamtypes.Tag
}

func (m *mockIAM) GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	m.getRoleCalls++
	if len(m.transientErrs) > 0 {
		err := m.transientErrs[0]
		m.transientErrs = m.transientErrs[1:]
		return nil, err
	}
	if m.getRoleErr != nil {
		return nil, m.getRoleErr
	}
	return &iam.GetRoleOutput{Role: m.role}, nil
}

func (m *mockIAM) ListAttachedRolePolicies(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error) {
	return &iam.ListAttachedRolePoliciesOutput{AttachedPolicies: m.attached}, nil
}

func (m *mockIAM) ListRoleTags(ctx context.Context, params *iam.ListRoleTagsInput, optFns ...func(*iam.Options)) (*iam.ListRoleTagsOutput, error) {
	return &iam.ListRoleTagsOutput{Tags: m.tags}, nil
}

type mockS3 struct {
	headErr error
	region  string
	tags    []s3types.Tag
}

func (m *mockS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	return &s3.HeadBucketOutput{BucketRegion: aws.String(m.region)}, nil
}

func (m *mockS3) GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	return &s3.GetBucketTaggingOutput{TagSet: m.tags}, nil
}

type mockECS struct {
	clusters []ecstypes.Cluster
}

func (m *mockECS) DescribeClusters(ctx context.Context, params *ecs.DescribeClustersInput, optFns ...func(*ecs.Options)) (*ecs.DescribeClustersOutput, error) {
	return &ecs.DescribeClustersOutput{Clusters: m.clusters}, nil
}

type mockSTS struct {
	account string
}

func (m *mockSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: aws.String(m.account)}, nil
}

func testContext(t *testing.T) *deploy.Context {
	t.Helper()
	reg := naming.NewRegistry()
	require.NoError(t, reg.RegisterApplication("TrialFinderV2", "tf2"))
	dctx, err := deploy.NewContext(reg,
		deploy.EnvironmentDescriptor{
			Name:      "Development",
			AccountID: "111122223333",
			Region:    "us-east-2",
			Class:     deploy.ClassNonProduction,
		},
		deploy.ApplicationDescriptor{Name: "TrialFinderV2", Version: "2.4.1"},
	)
	require.NoError(t, err)
	return dctx
}

func taskExecRequirement() requirements.Requirement {
	return requirements.Requirement{
		Kind:        naming.KindIamRole,
		Purpose:     naming.PurposeTaskExecution,
		Description: "ECS task execution role",
		Rules: []string{
			"assumable-by:ecs-tasks.amazonaws.com",
			"has-managed-policy:AmazonECSTaskExecutionRolePolicy",
		},
		Required: true,
	}
}

func encodedTrustPolicy(service string) *string {
	doc := `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":"` +
		service + `"},"Action":"sts:AssumeRole"}]}`
	return aws.String(url.QueryEscape(doc))
}

func goodRole(name string) *iamtypes.Role {
	return &iamtypes.Role{
		RoleName:                 aws.String(name),
		Arn:                      aws.String("arn:aws:iam::111122223333:role/" + name),
		Path:                     aws.String("/"),
		MaxSessionDuration:       aws.Int32(3600),
		AssumeRolePolicyDocument: encodedTrustPolicy("ecs-tasks.amazonaws.com"),
	}
}

func TestValidateRoleMissing(t *testing.T) {
	dctx := testContext(t)
	v := NewWithClients(
		&mockIAM{getRoleErr: &iamtypes.NoSuchEntityException{Message: aws.String("no such role")}},
		&mockS3{}, &mockECS{}, &mockSTS{},
	)

	result, err := v.Validate(context.Background(), taskExecRequirement(), dctx)
	require.NoError(t, err)

	assert.False(t, result.Exists)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "d-tf2-ue2-role-task-exec")
	assert.Contains(t, result.Errors[0], "does not exist")
	// Absent resources short-circuit before rule evaluation.
	assert.Equal(t, "checked", result.Metadata["state"])
}

func TestValidateRoleWrongTrustPolicy(t *testing.T) {
	dctx := testContext(t)
	role := goodRole("d-tf2-ue2-role-task-exec")
	role.AssumeRolePolicyDocument = encodedTrustPolicy("lambda.amazonaws.com")

	v := NewWithClients(
		&mockIAM{
			role: role,
			attached: []iamtypes.AttachedPolicy{
				{PolicyName: aws.String("AmazonECSTaskExecutionRolePolicy")},
			},
		},
		&mockS3{}, &mockECS{}, &mockSTS{},
	)

	result, err := v.Validate(context.Background(), taskExecRequirement(), dctx)
	require.NoError(t, err)

	assert.True(t, result.Exists)
	assert.False(t, result.Valid)
	assert.False(t, result.HasRequiredPermissions)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cannot assume")
	assert.Equal(t, "rules-evaluated", result.Metadata["state"])
}

func TestValidateRoleCollectsAllViolations(t *testing.T) {
	dctx := testContext(t)
	role := goodRole("d-tf2-ue2-role-task-exec")
	role.AssumeRolePolicyDocument = encodedTrustPolicy("lambda.amazonaws.com")

	// Wrong trust AND missing managed policy: one pass must report both.
	v := NewWithClients(&mockIAM{role: role}, &mockS3{}, &mockECS{}, &mockSTS{})

	result, err := v.Validate(context.Background(), taskExecRequirement(), dctx)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
}

func TestValidateRoleValid(t *testing.T) {
	dctx := testContext(t)
	v := NewWithClients(
		&mockIAM{
			role: goodRole("d-tf2-ue2-role-task-exec"),
			attached: []iamtypes.AttachedPolicy{
				{PolicyName: aws.String("AmazonECSTaskExecutionRolePolicy")},
			},
			tags: []iamtypes.Tag{
				{Key: aws.String("Environment"), Value: aws.String("Development")},
			},
		},
		&mockS3{}, &mockECS{}, &mockSTS{},
	)

	req := taskExecRequirement()
	req.ExpectedTags = map[string]string{"Environment": "Development"}

	result, err := v.Validate(context.Background(), req, dctx)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.True(t, result.Exists)
	assert.True(t, result.FollowsNamingConvention)
	assert.True(t, result.HasRequiredPermissions)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateRetriesThrottleOnce(t *testing.T) {
	dctx := testContext(t)
	iamMock := &mockIAM{
		role: goodRole("d-tf2-ue2-role-task-exec"),
		attached: []iamtypes.AttachedPolicy{
			{PolicyName: aws.String("AmazonECSTaskExecutionRolePolicy")},
		},
		transientErrs: []error{
			&smithy.GenericAPIError{Code: "Throttling", Message: "slow down"},
		},
	}
	v := NewWithClients(iamMock, &mockS3{}, &mockECS{}, &mockSTS{})

	result, err := v.Validate(context.Background(), taskExecRequirement(), dctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 2, iamMock.getRoleCalls)
}

func TestValidateThrottleBudgetExhausted(t *testing.T) {
	dctx := testContext(t)
	iamMock := &mockIAM{
		transientErrs: []error{
			&smithy.GenericAPIError{Code: "Throttling", Message: "slow down"},
			&smithy.GenericAPIError{Code: "Throttling", Message: "slow down"},
			&smithy.GenericAPIError{Code: "Throttling", Message: "slow down"},
		},
	}
	v := NewWithClients(iamMock, &mockS3{}, &mockECS{}, &mockSTS{})

	_, err := v.Validate(context.Background(), taskExecRequirement(), dctx)
	require.Error(t, err)
	// One retry only: initial call plus one more.
	assert.Equal(t, 2, iamMock.getRoleCalls)
}

func TestValidateBucketRegionMismatch(t *testing.T) {
	dctx := testContext(t)
	v := NewWithClients(&mockIAM{}, &mockS3{region: "eu-west-1"}, &mockECS{}, &mockSTS{})

	req := requirements.Requirement{
		Kind:     naming.KindS3Bucket,
		Purpose:  naming.PurposeArtifacts,
		Rules:    []string{"region-match"},
		Required: true,
	}

	result, err := v.Validate(context.Background(), req, dctx)
	require.NoError(t, err)
	assert.True(t, result.Exists)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "eu-west-1")
}

func TestValidateClusterMissing(t *testing.T) {
	dctx := testContext(t)
	v := NewWithClients(&mockIAM{}, &mockS3{}, &mockECS{clusters: nil}, &mockSTS{})

	req := requirements.Requirement{
		Kind:     naming.KindEcsCluster,
		Purpose:  naming.PurposeMain,
		Rules:    []string{"active"},
		Required: true,
	}

	result, err := v.Validate(context.Background(), req, dctx)
	require.NoError(t, err)
	assert.False(t, result.Exists)
	assert.False(t, result.Valid)
}

func TestValidateClusterActive(t *testing.T) {
	dctx := testContext(t)
	v := NewWithClients(&mockIAM{}, &mockS3{}, &mockECS{
		clusters: []ecstypes.Cluster{
			{
				ClusterName: aws.String("d-tf2-ue2-ecs-main"),
				ClusterArn:  aws.String("arn:aws:ecs:us-east-2:111122223333:cluster/d-tf2-ue2-ecs-main"),
				Status:      aws.String("ACTIVE"),
			},
		},
	}, &mockSTS{})

	req := requirements.Requirement{
		Kind:     naming.KindEcsCluster,
		Purpose:  naming.PurposeMain,
		Rules:    []string{"active", "region-match"},
		Required: true,
	}

	result, err := v.Validate(context.Background(), req, dctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateOptionalMissingIsWarning(t *testing.T) {
	dctx := testContext(t)
	v := NewWithClients(
		&mockIAM{getRoleErr: &iamtypes.NoSuchEntityException{Message: aws.String("gone")}},
		&mockS3{}, &mockECS{}, &mockSTS{},
	)

	req := taskExecRequirement()
	req.Required = false

	result, err := v.Validate(context.Background(), req, dctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.False(t, result.Exists)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidateNilContext(t *testing.T) {
	v := NewWithClients(&mockIAM{}, &mockS3{}, &mockECS{}, &mockSTS{})
	_, err := v.Validate(context.Background(), taskExecRequirement(), nil)
	require.Error(t, err)
}

func TestCheckAccount(t *testing.T) {
	dctx := testContext(t)

	match := NewWithClients(&mockIAM{}, &mockS3{}, &mockECS{}, &mockSTS{account: "111122223333"})
	require.NoError(t, match.CheckAccount(context.Background(), dctx))

	mismatch := NewWithClients(&mockIAM{}, &mockS3{}, &mockECS{}, &mockSTS{account: "999999999999"})
	err := mismatch.CheckAccount(context.Background(), dctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "999999999999")
}
