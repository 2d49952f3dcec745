package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"workshop-host/internal/env"
	"workshop-host/internal/logger"
	"workshop-host/internal/models"
	"workshop-host/internal/utils"
)

// StepRunner executes one layering step against the environment. Swappable
// for tests and for alternative package tooling.
type StepRunner func(ctx context.Context, step models.LayerStep, ec *models.ExecutionContext) error

/**
 * LayerManager applies an ordered layer spec to the virtual environment
 * @description
 * - Steps run strictly in declared order, one at a time
 * - The first failing step aborts the whole application
 * - Each successful install leaves a receipt under cache/layers
 */
type LayerManager struct {
	spec   *models.LayerSpecification
	ec     *models.ExecutionContext
	runner StepRunner
}

func NewLayerManager(spec *models.LayerSpecification, ec *models.ExecutionContext) *LayerManager {
	lm := &LayerManager{
		spec: spec,
		ec:   ec,
	}
	lm.runner = lm.runPipStep
	return lm
}

// SetStepRunner replaces the default pip-backed runner
func (lm *LayerManager) SetStepRunner(runner StepRunner) {
	lm.runner = runner
}

func (lm *LayerManager) Spec() *models.LayerSpecification {
	return lm.spec
}

/**
 * Validate checks the layer spec before any step runs
 * @returns {error} The first problem found, nil when the spec is applicable
 * @description
 * - Names must be unique, actions must be install or remove
 * - Install steps need a source
 * - A remove of a name must come before any install of the same name:
 *   replacing a package means uninstall first, then install the substitute
 */
func (lm *LayerManager) Validate() error {
	seen := map[string]int{}
	for i, step := range lm.spec.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d has no name", i)
		}
		if prev, dup := seen[step.Name+"/"+step.Action]; dup {
			return fmt.Errorf("layer '%s' declared twice (steps %d and %d)", step.Name, prev, i)
		}
		seen[step.Name+"/"+step.Action] = i

		switch step.Action {
		case models.LayerInstall:
			if step.Source == "" {
				return fmt.Errorf("install layer '%s' has no source", step.Name)
			}
			if step.Version != "" {
				if _, err := utils.ParseVersion(step.Version); err != nil {
					return fmt.Errorf("layer '%s' has invalid version pin '%s': %v", step.Name, step.Version, err)
				}
			}
		case models.LayerRemove:
		default:
			return fmt.Errorf("layer '%s' has unknown action '%s'", step.Name, step.Action)
		}
	}
	for i, step := range lm.spec.Steps {
		if step.Action != models.LayerInstall {
			continue
		}
		for j := i + 1; j < len(lm.spec.Steps); j++ {
			later := lm.spec.Steps[j]
			if later.Action == models.LayerRemove && later.Name == step.Name {
				return fmt.Errorf("layer '%s' is removed after being installed; put the remove first", step.Name)
			}
		}
	}
	return nil
}

/**
 * Apply runs every step of the spec in declared order
 * @param {context.Context} ctx - Cancels the in-flight step
 * @returns {error} *models.InstallError naming the failed step
 * @description
 * - Validation failures surface before any step runs
 * - On step failure, application stops; already applied steps keep their
 *   receipts, nothing is rolled back
 */
func (lm *LayerManager) Apply(ctx context.Context) error {
	if err := lm.Validate(); err != nil {
		return &models.InstallError{Step: "validate", Err: err}
	}
	for _, step := range lm.spec.Steps {
		if err := lm.ApplyStep(ctx, step); err != nil {
			return err
		}
	}
	logger.Infof("Applied %d layer steps", len(lm.spec.Steps))
	return nil
}

/**
 * ApplyStep runs a single layering step
 * @returns {error} *models.InstallError on failure
 */
func (lm *LayerManager) ApplyStep(ctx context.Context, step models.LayerStep) error {
	logger.Infof("Applying layer '%s' (%s %s)", step.Name, step.Action, step.Source)
	err := lm.runner(ctx, step, lm.ec)
	RecordLayerStep(step.Action, err)
	if err != nil {
		logger.Errorf("Layer '%s' failed: %v", step.Name, err)
		return &models.InstallError{Step: step.Name, Err: err}
	}
	switch step.Action {
	case models.LayerInstall:
		lm.saveReceipt(step)
	case models.LayerRemove:
		lm.removeReceipt(step.Name)
	}
	return nil
}

/**
 * Remove uninstalls a previously applied layer by name
 * @param {string} name - Layer name from the spec
 * @returns {error} *models.InstallError on failure, or not-found
 */
func (lm *LayerManager) Remove(ctx context.Context, name string) error {
	step, ok := lo.Find(lm.spec.Steps, func(s models.LayerStep) bool {
		return s.Name == name
	})
	if !ok {
		return fmt.Errorf("layer '%s' not found in spec", name)
	}
	step.Action = models.LayerRemove
	return lm.ApplyStep(ctx, step)
}

/**
 * GetDetails reports every spec step together with its receipt state
 */
func (lm *LayerManager) GetDetails() []models.LayerDetail {
	return lo.Map(lm.spec.Steps, func(step models.LayerStep, _ int) models.LayerDetail {
		detail := models.LayerDetail{
			Name:    step.Name,
			Action:  step.Action,
			Source:  step.Source,
			Version: step.Version,
		}
		if receipt, err := lm.loadReceipt(step.Name); err == nil {
			detail.Installed = true
			detail.InstalledVersion = receipt.Version
		}
		return detail
	})
}

// runPipStep is the default runner: pip from the venv applies the step.
func (lm *LayerManager) runPipStep(ctx context.Context, step models.LayerStep, ec *models.ExecutionContext) error {
	pip := filepath.Join(ec.VenvDir, "bin", "pip")

	var args []string
	switch step.Action {
	case models.LayerInstall:
		ref := step.Source
		if step.Version != "" {
			ref = fmt.Sprintf("%s==%s", step.Source, step.Version)
		}
		args = []string{"install", ref}
	case models.LayerRemove:
		args = []string{"uninstall", "-y", step.Source}
	default:
		return fmt.Errorf("unknown action '%s'", step.Action)
	}

	cmd := exec.CommandContext(ctx, pip, args...)
	cmd.Env = ec.Env
	if ec.WorkDir != "" {
		cmd.Dir = ec.WorkDir
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w\n%s", pip, args, err, string(output))
	}
	logger.Debugf("pip %v finished for layer '%s'", args, step.Name)
	return nil
}

func layerCacheDir() string {
	return filepath.Join(env.WorkshopDir, "cache", "layers")
}

func (lm *LayerManager) saveReceipt(step models.LayerStep) {
	cacheDir := layerCacheDir()
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logger.Errorf("Layer [%s] save receipt failed, error: %v", step.Name, err)
		return
	}
	receipt := models.LayerReceipt{
		Name:      step.Name,
		Source:    step.Source,
		Version:   step.Version,
		Target:    step.Target,
		AppliedAt: time.Now(),
	}
	jsonData, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		logger.Errorf("Layer [%s] save receipt failed, error: %v", step.Name, err)
		return
	}
	cacheFile := filepath.Join(cacheDir, step.Name+".json")
	if err := os.WriteFile(cacheFile, jsonData, 0644); err != nil {
		logger.Errorf("Layer [%s] save receipt failed, error: %v", step.Name, err)
		return
	}
	logger.Infof("Layer [%s] receipt saved to %s", step.Name, cacheFile)
}

func (lm *LayerManager) loadReceipt(name string) (*models.LayerReceipt, error) {
	cacheFile := filepath.Join(layerCacheDir(), name+".json")
	jsonData, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, err
	}
	var receipt models.LayerReceipt
	if err := json.Unmarshal(jsonData, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (lm *LayerManager) removeReceipt(name string) {
	cacheFile := filepath.Join(layerCacheDir(), name+".json")
	if err := os.Remove(cacheFile); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Layer [%s] receipt removal failed: %v", name, err)
	}
}
