package requirements

import (
	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/naming"
)

// ECSServiceRegistry declares the external dependencies every ECS-based
// service deployment assumes: the two task roles, the shared cluster and the
// artifacts bucket, all pre-provisioned by the platform team.
type ECSServiceRegistry struct{}

// NewECSServiceRegistry returns the standard ECS service requirement set.
func NewECSServiceRegistry() *ECSServiceRegistry {
	return &ECSServiceRegistry{}
}

// Requirements returns the requirement list for one context. Expected names
// are never stored here; the validator derives them from the codec.
func (g *ECSServiceRegistry) Requirements(dctx *deploy.Context) []Requirement {
	env := dctx.Environment.Name

	base := []Requirement{
		{
			Kind:        naming.KindIamRole,
			Purpose:     naming.PurposeTaskExecution,
			Description: "ECS task execution role: pulls images and writes logs on behalf of the service",
			ArnPattern:  "arn:aws:iam::" + dctx.Environment.AccountID + ":role/*",
			Rules: []string{
				"assumable-by:ecs-tasks.amazonaws.com",
				"has-managed-policy:AmazonECSTaskExecutionRolePolicy",
			},
			Required:     true,
			ExpectedTags: map[string]string{"Environment": env},
			PerEnvironment: map[string]Override{
				"Production": {
					Rules: []string{"max-session-duration:3600"},
				},
			},
		},
		{
			Kind:        naming.KindIamRole,
			Purpose:     naming.PurposeTask,
			Description: "ECS task role: runtime identity of the application containers",
			ArnPattern:  "arn:aws:iam::" + dctx.Environment.AccountID + ":role/*",
			Rules: []string{
				"assumable-by:ecs-tasks.amazonaws.com",
			},
			Required:     true,
			ExpectedTags: map[string]string{"Environment": env},
		},
		{
			Kind:        naming.KindEcsCluster,
			Purpose:     naming.PurposeMain,
			Description: "Shared ECS cluster the service deploys into",
			Rules: []string{
				"active",
				"region-match",
			},
			Required: true,
		},
		{
			Kind:        naming.KindS3Bucket,
			Purpose:     naming.PurposeArtifacts,
			Description: "Artifacts bucket holding task definition assets and build output",
			Rules: []string{
				"region-match",
			},
			Required:     true,
			ExpectedTags: map[string]string{"Environment": env},
		},
	}

	out := make([]Requirement, 0, len(base))
	for _, req := range base {
		out = append(out, req.ForEnvironment(env))
	}
	return out
}
