package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-host/internal/env"
	"workshop-host/internal/models"
)

// fakeRunner records applied steps and fails the configured ones
type fakeRunner struct {
	applied []string
	failOn  map[string]bool
}

func (f *fakeRunner) run(ctx context.Context, step models.LayerStep, ec *models.ExecutionContext) error {
	f.applied = append(f.applied, step.Action+":"+step.Name)
	if f.failOn[step.Name] {
		return fmt.Errorf("synthetic failure")
	}
	return nil
}

func newTestManager(t *testing.T, steps []models.LayerStep) (*LayerManager, *fakeRunner) {
	t.Helper()
	env.WorkshopDir = t.TempDir()

	runner := &fakeRunner{failOn: map[string]bool{}}
	lm := NewLayerManager(
		&models.LayerSpecification{Steps: steps},
		&models.ExecutionContext{VenvDir: filepath.Join(env.WorkshopDir, "venv")},
	)
	lm.SetStepRunner(runner.run)
	return lm, runner
}

/**
 * Test that steps run strictly in declared order
 * @param {*testing.T} t - Testing framework instance
 */
func TestApplyOrder(t *testing.T) {
	lm, runner := newTestManager(t, []models.LayerStep{
		{Name: "base-tools", Action: models.LayerInstall, Source: "base-tools"},
		{Name: "pilot", Action: models.LayerRemove, Source: "radical.pilot"},
		{Name: "pilot", Action: models.LayerInstall, Source: "radical.pilot-dev"},
	})

	require.NoError(t, lm.Apply(context.Background()))
	assert.Equal(t, []string{
		"install:base-tools",
		"remove:pilot",
		"install:pilot",
	}, runner.applied)
}

/**
 * Test that the first failure aborts the remaining steps
 * @param {*testing.T} t - Testing framework instance
 * @description Nothing after the failed step may run, and the error must
 * name the failed step
 */
func TestApplyAbortsOnFailure(t *testing.T) {
	lm, runner := newTestManager(t, []models.LayerStep{
		{Name: "first", Action: models.LayerInstall, Source: "first"},
		{Name: "second", Action: models.LayerInstall, Source: "second"},
		{Name: "third", Action: models.LayerInstall, Source: "third"},
	})
	runner.failOn["second"] = true

	err := lm.Apply(context.Background())
	require.Error(t, err)

	var installErr *models.InstallError
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, "second", installErr.Step)

	assert.Equal(t, []string{"install:first", "install:second"}, runner.applied)
}

func TestApplyWritesReceipts(t *testing.T) {
	lm, _ := newTestManager(t, []models.LayerStep{
		{Name: "tools", Action: models.LayerInstall, Source: "tools", Version: "2.1.0"},
	})

	require.NoError(t, lm.Apply(context.Background()))

	receipt := filepath.Join(env.WorkshopDir, "cache", "layers", "tools.json")
	_, err := os.Stat(receipt)
	assert.NoError(t, err)

	details := lm.GetDetails()
	require.Len(t, details, 1)
	assert.True(t, details[0].Installed)
	assert.Equal(t, "2.1.0", details[0].InstalledVersion)
}

func TestRemoveDropsReceipt(t *testing.T) {
	lm, runner := newTestManager(t, []models.LayerStep{
		{Name: "tools", Action: models.LayerInstall, Source: "tools"},
	})

	require.NoError(t, lm.Apply(context.Background()))
	require.NoError(t, lm.Remove(context.Background(), "tools"))

	assert.Equal(t, []string{"install:tools", "remove:tools"}, runner.applied)

	receipt := filepath.Join(env.WorkshopDir, "cache", "layers", "tools.json")
	_, err := os.Stat(receipt)
	assert.True(t, os.IsNotExist(err))

	details := lm.GetDetails()
	require.Len(t, details, 1)
	assert.False(t, details[0].Installed)
}

func TestRemoveUnknownLayer(t *testing.T) {
	lm, _ := newTestManager(t, nil)
	assert.Error(t, lm.Remove(context.Background(), "ghost"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		steps []models.LayerStep
		ok    bool
	}{
		{
			name: "remove before install of the same name",
			steps: []models.LayerStep{
				{Name: "pilot", Action: models.LayerRemove, Source: "radical.pilot"},
				{Name: "pilot", Action: models.LayerInstall, Source: "radical.pilot-dev"},
			},
			ok: true,
		},
		{
			name: "install before remove of the same name",
			steps: []models.LayerStep{
				{Name: "pilot", Action: models.LayerInstall, Source: "radical.pilot"},
				{Name: "pilot", Action: models.LayerRemove, Source: "radical.pilot"},
			},
			ok: false,
		},
		{
			name: "duplicate install",
			steps: []models.LayerStep{
				{Name: "tools", Action: models.LayerInstall, Source: "tools"},
				{Name: "tools", Action: models.LayerInstall, Source: "tools"},
			},
			ok: false,
		},
		{
			name: "unknown action",
			steps: []models.LayerStep{
				{Name: "tools", Action: "upgrade", Source: "tools"},
			},
			ok: false,
		},
		{
			name: "install without source",
			steps: []models.LayerStep{
				{Name: "tools", Action: models.LayerInstall},
			},
			ok: false,
		},
		{
			name: "unnamed step",
			steps: []models.LayerStep{
				{Action: models.LayerInstall, Source: "tools"},
			},
			ok: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lm, _ := newTestManager(t, tc.steps)
			err := lm.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

/**
 * Test that a validation failure prevents any step from running
 * @param {*testing.T} t - Testing framework instance
 */
func TestApplyRejectsInvalidSpec(t *testing.T) {
	lm, runner := newTestManager(t, []models.LayerStep{
		{Name: "tools", Action: "upgrade", Source: "tools"},
	})

	err := lm.Apply(context.Background())
	require.Error(t, err)
	assert.Empty(t, runner.applied)
}
