package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"workshop-host/internal/models"
)

// hclLayer mirrors one `layer "name" { ... }` block of a layer spec file
type hclLayer struct {
	Name    string `hcl:"name,label"`
	Action  string `hcl:"action,optional"`
	Source  string `hcl:"source,optional"`
	Version string `hcl:"version,optional"`
	Target  string `hcl:"target,optional"`
	Owner   string `hcl:"owner,optional"`
	Group   string `hcl:"group,optional"`
}

type hclLayerFile struct {
	Layers []*hclLayer `hcl:"layer,block"`
}

/**
 * Build the HCL evaluation context for layer spec files
 * @description Spec files may reference the deployment parameters, e.g.
 * source = "radical.pilot${env.variant_suffix}"
 */
func layerEvalContext(ec *EnvironmentConfig) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(map[string]cty.Value{
				"venv_dir":       cty.StringVal(ec.VenvDir),
				"base_tag":       cty.StringVal(ec.BaseTag),
				"pilot_ref":      cty.StringVal(ec.PilotRef),
				"variant_suffix": cty.StringVal(ec.VariantSuffix),
			}),
		},
	}
}

/**
 * Load an ordered layer spec from an HCL file
 * @param {string} path - Spec file location
 * @param {EnvironmentConfig} ec - Deployment parameters exposed to expressions
 * @returns {models.LayerSpecification} Steps in declared order
 * @returns {error} Parse or decode error
 * @description
 * - Blocks are kept in file order; the order is the application order
 * - action defaults to "install", source defaults to the layer name
 */
func LoadLayerSpec(path string, ec *EnvironmentConfig) (*models.LayerSpecification, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("layer spec '%s' not found: %w", path, err)
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse layer spec '%s': %s", path, diags.Error())
	}

	var parsed hclLayerFile
	diags = gohcl.DecodeBody(file.Body, layerEvalContext(ec), &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode layer spec '%s': %s", path, diags.Error())
	}

	spec := &models.LayerSpecification{}
	for _, l := range parsed.Layers {
		step := models.LayerStep{
			Name:    l.Name,
			Action:  l.Action,
			Source:  l.Source,
			Version: l.Version,
			Target:  l.Target,
			Owner:   l.Owner,
			Group:   l.Group,
		}
		if step.Action == "" {
			step.Action = models.LayerInstall
		}
		if step.Source == "" {
			step.Source = step.Name
		}
		if step.Target == "" {
			step.Target = ec.VenvDir
		}
		spec.Steps = append(spec.Steps, step)
	}
	return spec, nil
}
