package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/naming"
	"github.com/yairfalse/varmista/requirements"
)

// CreationCommands renders shell-executable remediation commands for a
// missing requirement, purely from requirement and context data. The engine
// never runs these; they are emitted for operator review.
func CreationCommands(req requirements.Requirement, dctx *deploy.Context) (string, error) {
	name, err := req.ExpectedName(dctx)
	if err != nil {
		return "", fmt.Errorf("derive name for %s: %w", req.Key(), err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", req.Description)
	fmt.Fprintf(&b, "# requirement: %s\n", req.Key())

	switch req.Kind {
	case naming.KindIamRole:
		writeRoleCommands(&b, req, name)
	case naming.KindS3Bucket:
		writeBucketCommands(&b, req, dctx, name)
	case naming.KindEcsCluster:
		writeClusterCommands(&b, req, dctx, name)
	default:
		fmt.Fprintf(&b, "# no remediation template for resource kind %s\n", req.Kind)
	}

	return b.String(), nil
}

func writeRoleCommands(b *strings.Builder, req requirements.Requirement, name string) {
	service := trustServiceFromRules(req.Rules)
	if service == "" {
		service = "ecs-tasks.amazonaws.com"
	}

	fmt.Fprintf(b, "aws iam create-role \\\n")
	fmt.Fprintf(b, "  --role-name %s \\\n", name)
	fmt.Fprintf(b, "  --assume-role-policy-document '%s'\n", trustDocument(service))

	for _, rule := range req.Rules {
		ruleName, arg := splitRule(rule)
		if ruleName != "has-managed-policy" {
			continue
		}
		fmt.Fprintf(b, "aws iam attach-role-policy \\\n")
		fmt.Fprintf(b, "  --role-name %s \\\n", name)
		fmt.Fprintf(b, "  --policy-arn arn:aws:iam::aws:policy/%s\n", arg)
	}

	if len(req.ExpectedTags) > 0 {
		fmt.Fprintf(b, "aws iam tag-role --role-name %s --tags %s\n", name, iamTagArgs(req.ExpectedTags))
	}
}

func writeBucketCommands(b *strings.Builder, req requirements.Requirement, dctx *deploy.Context, name string) {
	region := dctx.Environment.Region
	fmt.Fprintf(b, "aws s3api create-bucket --bucket %s --region %s", name, region)
	if region != "us-east-1" {
		fmt.Fprintf(b, " \\\n  --create-bucket-configuration LocationConstraint=%s", region)
	}
	fmt.Fprintf(b, "\n")

	if len(req.ExpectedTags) > 0 {
		fmt.Fprintf(b, "aws s3api put-bucket-tagging --bucket %s \\\n  --tagging 'TagSet=[%s]'\n",
			name, s3TagSet(req.ExpectedTags))
	}
}

func writeClusterCommands(b *strings.Builder, req requirements.Requirement, dctx *deploy.Context, name string) {
	fmt.Fprintf(b, "aws ecs create-cluster --cluster-name %s --region %s", name, dctx.Environment.Region)
	if len(req.ExpectedTags) > 0 {
		fmt.Fprintf(b, " \\\n  --tags %s", ecsTagArgs(req.ExpectedTags))
	}
	fmt.Fprintf(b, "\n")
}

func trustServiceFromRules(rules []string) string {
	for _, rule := range rules {
		name, arg := splitRule(rule)
		if name == "assumable-by" {
			return arg
		}
	}
	return ""
}

func trustDocument(service string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":"%s"},"Action":"sts:AssumeRole"}]}`, service)
}

func sortedKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func iamTagArgs(tags map[string]string) string {
	parts := make([]string, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		parts = append(parts, fmt.Sprintf("Key=%s,Value=%s", k, tags[k]))
	}
	return strings.Join(parts, " ")
}

func ecsTagArgs(tags map[string]string) string {
	parts := make([]string, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		parts = append(parts, fmt.Sprintf("key=%s,value=%s", k, tags[k]))
	}
	return strings.Join(parts, " ")
}

func s3TagSet(tags map[string]string) string {
	parts := make([]string, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		parts = append(parts, fmt.Sprintf("{Key=%s,Value=%s}", k, tags[k]))
	}
	return strings.Join(parts, ",")
}
