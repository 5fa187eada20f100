package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/naming"
)

func testContext(t *testing.T, env string) *deploy.Context {
	t.Helper()
	reg := naming.NewRegistry()
	require.NoError(t, reg.RegisterApplication("TrialFinderV2", "tf2"))

	class, ok := deploy.ClassForEnvironment(env)
	require.True(t, ok)

	dctx, err := deploy.NewContext(reg,
		deploy.EnvironmentDescriptor{
			Name:      env,
			AccountID: "111122223333",
			Region:    "us-east-2",
			Class:     class,
		},
		deploy.ApplicationDescriptor{Name: "TrialFinderV2", Version: "2.4.1"},
	)
	require.NoError(t, err)
	return dctx
}

func TestRequirementKey(t *testing.T) {
	req := Requirement{Kind: naming.KindIamRole, Purpose: naming.PurposeTaskExecution}
	assert.Equal(t, "iam-role:task-exec", req.Key())
}

func TestExpectedNameDerivedFromCodec(t *testing.T) {
	dctx := testContext(t, "Development")
	req := Requirement{Kind: naming.KindIamRole, Purpose: naming.PurposeTaskExecution}

	name, err := req.ExpectedName(dctx)
	require.NoError(t, err)
	assert.Equal(t, "d-tf2-ue2-role-task-exec", name)

	// Must match what the resource-construction layer would compose.
	composed, err := dctx.Codec().ComposeName(naming.KindIamRole, naming.PurposeTaskExecution)
	require.NoError(t, err)
	assert.Equal(t, composed, name)
}

func TestECSServiceRegistryIsPure(t *testing.T) {
	dctx := testContext(t, "Development")
	reg := NewECSServiceRegistry()

	first := reg.Requirements(dctx)
	second := reg.Requirements(dctx)
	assert.Equal(t, first, second)

	keys := map[string]bool{}
	for _, req := range first {
		assert.False(t, keys[req.Key()], "duplicate key %s", req.Key())
		keys[req.Key()] = true
	}
	assert.True(t, keys["iam-role:task-exec"])
	assert.True(t, keys["iam-role:task"])
	assert.True(t, keys["ecs-cluster:main"])
	assert.True(t, keys["s3-bucket:artifacts"])
}

func TestPerEnvironmentOverride(t *testing.T) {
	req := Requirement{
		Kind:     naming.KindIamRole,
		Purpose:  naming.PurposeTaskExecution,
		Rules:    []string{"assumable-by:ecs-tasks.amazonaws.com"},
		Required: true,
		PerEnvironment: map[string]Override{
			"Production": {
				Rules:        []string{"max-session-duration:3600"},
				ExpectedTags: map[string]string{"Compliance": "sox"},
			},
			"Sandbox": {
				Required: boolPtr(false),
			},
		},
	}

	prod := req.ForEnvironment("Production")
	assert.Equal(t, []string{"assumable-by:ecs-tasks.amazonaws.com", "max-session-duration:3600"}, prod.Rules)
	assert.Equal(t, "sox", prod.ExpectedTags["Compliance"])
	assert.True(t, prod.Required)

	sandbox := req.ForEnvironment("Sandbox")
	assert.False(t, sandbox.Required)
	assert.Equal(t, req.Rules, sandbox.Rules)

	// Base requirement untouched.
	assert.Equal(t, []string{"assumable-by:ecs-tasks.amazonaws.com"}, req.Rules)
	assert.True(t, req.Required)

	// No override registered: identical copy.
	dev := req.ForEnvironment("Development")
	assert.Equal(t, req.Rules, dev.Rules)
}

func TestProductionOverrideApplied(t *testing.T) {
	dctx := testContext(t, "Production")
	reqs := NewECSServiceRegistry().Requirements(dctx)

	for _, req := range reqs {
		if req.Key() == "iam-role:task-exec" {
			assert.Contains(t, req.Rules, "max-session-duration:3600")
			return
		}
	}
	t.Fatal("task-exec requirement not found")
}

func boolPtr(b bool) *bool { return &b }
