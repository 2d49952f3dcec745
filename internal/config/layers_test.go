package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-host/internal/models"
)

func writeLayerFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layers.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

/**
 * Test decoding a layer spec with expression expansion
 * @param {*testing.T} t - Testing framework instance
 * @description
 * - Blocks must come out in file order
 * - env.* references must expand against the deployment parameters
 * - Defaults: action install, source defaults to the layer name
 */
func TestLoadLayerSpec(t *testing.T) {
	path := writeLayerFile(t, `
layer "gromacs-tools" {
}

layer "radical-pilot" {
  action = "remove"
  source = "radical.pilot"
}

layer "radical-pilot-variant" {
  source  = "radical.pilot${env.variant_suffix}"
  version = "1.20.0"
}
`)

	ec := &EnvironmentConfig{
		VenvDir:       "/opt/venv",
		VariantSuffix: "-dev",
	}
	spec, err := LoadLayerSpec(path, ec)
	require.NoError(t, err)
	require.Len(t, spec.Steps, 3)

	assert.Equal(t, "gromacs-tools", spec.Steps[0].Name)
	assert.Equal(t, models.LayerInstall, spec.Steps[0].Action)
	assert.Equal(t, "gromacs-tools", spec.Steps[0].Source)
	assert.Equal(t, "/opt/venv", spec.Steps[0].Target)

	assert.Equal(t, models.LayerRemove, spec.Steps[1].Action)
	assert.Equal(t, "radical.pilot", spec.Steps[1].Source)

	assert.Equal(t, "radical.pilot-dev", spec.Steps[2].Source)
	assert.Equal(t, "1.20.0", spec.Steps[2].Version)
}

func TestLoadLayerSpecMissingFile(t *testing.T) {
	_, err := LoadLayerSpec(filepath.Join(t.TempDir(), "nope.hcl"), &EnvironmentConfig{})
	assert.Error(t, err)
}

func TestLoadLayerSpecParseError(t *testing.T) {
	path := writeLayerFile(t, `layer "broken" {`)
	_, err := LoadLayerSpec(path, &EnvironmentConfig{})
	assert.Error(t, err)
}

func TestLoadLayerSpecUnknownVariable(t *testing.T) {
	path := writeLayerFile(t, `
layer "x" {
  source = "pkg${env.unknown_field}"
}
`)
	_, err := LoadLayerSpec(path, &EnvironmentConfig{})
	assert.Error(t, err)
}
