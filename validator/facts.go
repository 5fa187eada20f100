package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// liveFacts is the normalized view of a fetched resource that rules evaluate
// against. Fields irrelevant to a resource type stay zero.
type liveFacts struct {
	name              string
	arn               string
	region            string // where the resource actually lives
	wantRegion        string // the context's region
	path              string
	status            string
	maxSessionSeconds int32
	trustedServices   []string
	managedPolicies   []string
	tags              map[string]string
}

func (v *AWSValidator) fetchRole(ctx context.Context, name string) (*liveFacts, error) {
	var role *iam.GetRoleOutput
	err := v.callWithRetry(ctx, func() error {
		var err error
		role, err = v.iamClient.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
		return err
	})
	if err != nil {
		return nil, err
	}

	facts := &liveFacts{
		name:   aws.ToString(role.Role.RoleName),
		arn:    aws.ToString(role.Role.Arn),
		region: "global", // IAM is global
		path:   aws.ToString(role.Role.Path),
		status: "active",
		tags:   make(map[string]string),
	}
	if role.Role.MaxSessionDuration != nil {
		facts.maxSessionSeconds = *role.Role.MaxSessionDuration
	}

	services, err := trustedServices(aws.ToString(role.Role.AssumeRolePolicyDocument))
	if err != nil {
		return nil, fmt.Errorf("parse trust policy for role %s: %w", name, err)
	}
	facts.trustedServices = services

	if err := v.fillRolePolicies(ctx, name, facts); err != nil {
		return nil, err
	}
	v.fillRoleTags(ctx, name, facts)

	return facts, nil
}

func (v *AWSValidator) fillRolePolicies(ctx context.Context, name string, facts *liveFacts) error {
	var attached *iam.ListAttachedRolePoliciesOutput
	err := v.callWithRetry(ctx, func() error {
		var err error
		attached, err = v.iamClient.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{
			RoleName: aws.String(name),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("list attached policies for role %s: %w", name, err)
	}
	for _, p := range attached.AttachedPolicies {
		facts.managedPolicies = append(facts.managedPolicies, aws.ToString(p.PolicyName))
	}
	return nil
}

// fillRoleTags is best effort; a tag listing failure degrades to no tags
// rather than failing the whole check.
func (v *AWSValidator) fillRoleTags(ctx context.Context, name string, facts *liveFacts) {
	output, err := v.iamClient.ListRoleTags(ctx, &iam.ListRoleTagsInput{RoleName: aws.String(name)})
	if err != nil {
		v.logger.WithContext(ctx).Warn().Err(err).Str("role", name).Msg("could not list role tags")
		return
	}
	for _, tag := range output.Tags {
		facts.tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
}

func (v *AWSValidator) fetchBucket(ctx context.Context, name string) (*liveFacts, error) {
	var head *s3.HeadBucketOutput
	err := v.callWithRetry(ctx, func() error {
		var err error
		head, err = v.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
		return err
	})
	if err != nil {
		return nil, err
	}

	facts := &liveFacts{
		name:   name,
		region: aws.ToString(head.BucketRegion),
		status: "active",
		tags:   make(map[string]string),
	}

	// NoSuchTagSet just means an untagged bucket.
	tagging, err := v.s3Client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(name)})
	if err == nil {
		for _, tag := range tagging.TagSet {
			facts.tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
	}

	return facts, nil
}

func (v *AWSValidator) fetchCluster(ctx context.Context, name string) (*liveFacts, error) {
	var out *ecs.DescribeClustersOutput
	err := v.callWithRetry(ctx, func() error {
		var err error
		out, err = v.ecsClient.DescribeClusters(ctx, &ecs.DescribeClustersInput{
			Clusters: []string{name},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(out.Clusters) == 0 {
		return nil, &notFoundError{resource: "ecs cluster", name: name}
	}

	cluster := out.Clusters[0]
	arn := aws.ToString(cluster.ClusterArn)
	facts := &liveFacts{
		name:   aws.ToString(cluster.ClusterName),
		arn:    arn,
		region: regionFromARN(arn),
		status: aws.ToString(cluster.Status),
		tags:   make(map[string]string),
	}
	for _, tag := range cluster.Tags {
		facts.tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return facts, nil
}

// regionFromARN extracts the region field, e.g.
// arn:aws:ecs:us-east-2:111122223333:cluster/name -> us-east-2.
func regionFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 4 {
		return ""
	}
	return parts[3]
}

// trustedServices decodes a URL-encoded trust policy document and collects
// the service principals allowed to assume the role.
func trustedServices(encoded string) ([]string, error) {
	if encoded == "" {
		return nil, nil
	}
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return nil, err
	}

	var doc trustPolicy
	if err := json.Unmarshal([]byte(decoded), &doc); err != nil {
		return nil, err
	}

	var services []string
	for _, stmt := range doc.Statement {
		if !strings.EqualFold(stmt.Effect, "Allow") {
			continue
		}
		services = append(services, stmt.Principal.Service...)
	}
	return services, nil
}

type trustPolicy struct {
	Statement []trustStatement `json:"Statement"`
}

type trustStatement struct {
	Effect    string         `json:"Effect"`
	Principal trustPrincipal `json:"Principal"`
}

type trustPrincipal struct {
	Service stringOrSlice `json:"Service"`
}

// stringOrSlice accepts both the single-string and list forms AWS emits for
// policy principals.
type stringOrSlice []string

func (s *stringOrSlice) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}
