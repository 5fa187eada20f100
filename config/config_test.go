package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/naming"
)

const manifest = `
version: "1"
environments:
  - name: Development
    account_id: "111122223333"
    region: us-east-2
  - name: Production
    account_id: "444455556666"
    region: us-east-1
    class: prod
    tags:
      CostCenter: trials
applications:
  - name: TrialFinderV2
    code: tf2
    version: 2.4.1
  - name: BillingEngine
    code: bil
preflight:
  workers: 8
  timeout: 15s
`

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "varmista.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeManifest(t, manifest))
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.Version)
	assert.Len(t, cfg.Environments, 2)
	assert.Len(t, cfg.Applications, 2)
	assert.Equal(t, 8, cfg.Preflight.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsDuplicateEnvironment(t *testing.T) {
	bad := `
version: "1"
environments:
  - name: Development
    account_id: "1"
    region: us-east-2
  - name: Development
    account_id: "2"
    region: us-west-2
`
	_, err := Load(writeManifest(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")
}

func TestValidateRejectsShortCodeCollision(t *testing.T) {
	bad := `
version: "1"
environments:
  - name: Development
    account_id: "1"
    region: us-east-2
applications:
  - name: TrialFinderV2
    code: tf2
  - name: TrafficFlow2
    code: tf2
`
	_, err := Load(writeManifest(t, bad))
	require.Error(t, err)

	var cfgErr *naming.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "collision must surface as a ConfigurationError")
}

func TestNamingRegistry(t *testing.T) {
	cfg, err := Load(writeManifest(t, manifest))
	require.NoError(t, err)

	reg, err := cfg.NamingRegistry()
	require.NoError(t, err)

	code, err := reg.ApplicationCode("TrialFinderV2")
	require.NoError(t, err)
	assert.Equal(t, "tf2", code)
}

func TestEnvironmentDescriptorDefaultsClass(t *testing.T) {
	cfg, err := Load(writeManifest(t, manifest))
	require.NoError(t, err)

	dev, err := cfg.EnvironmentDescriptor("Development")
	require.NoError(t, err)
	assert.Equal(t, deploy.ClassNonProduction, dev.Class)

	prod, err := cfg.EnvironmentDescriptor("Production")
	require.NoError(t, err)
	assert.Equal(t, deploy.ClassProduction, prod.Class)
	assert.Equal(t, "trials", prod.Tags["CostCenter"])

	_, err = cfg.EnvironmentDescriptor("Nowhere")
	assert.Error(t, err)
}

func TestApplicationDescriptor(t *testing.T) {
	cfg, err := Load(writeManifest(t, manifest))
	require.NoError(t, err)

	app, err := cfg.ApplicationDescriptor("BillingEngine")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", app.Version)

	_, err = cfg.ApplicationDescriptor("Nowhere")
	assert.Error(t, err)
}
