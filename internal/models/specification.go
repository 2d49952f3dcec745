package models

/**
 * One atomic step in constructing the runtime filesystem
 * @property {string} name - Layer name, unique within a spec
 * @property {string} action - install/remove
 * @property {string} source - Artifact reference (package name, path or URL)
 * @property {string} version - Optional version pin (SemVer)
 * @property {string} target - Target install location (defaults to the venv root)
 * @property {string} owner - Owning user of installed files
 * @property {string} group - Owning group of installed files
 */
type LayerStep struct {
	Name    string `json:"name"`
	Action  string `json:"action"`
	Source  string `json:"source,omitempty"`
	Version string `json:"version,omitempty"`
	Target  string `json:"target,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Group   string `json:"group,omitempty"`
}

const (
	LayerInstall = "install"
	LayerRemove  = "remove"
)

// LayerSpecification is an ordered list of steps, applied in declared order.
// Later steps may override files installed by earlier steps.
type LayerSpecification struct {
	Steps []LayerStep `json:"steps"`
}

/**
 * Database service configuration
 * @property {string} name - Service name
 * @property {string} command - Startup command template
 * @property {[]string} args - Command argument templates
 * @property {int} port - Listening port polled for readiness
 * @property {string} dataDir - Data directory passed to the command templates
 * @property {int} startTimeout - Readiness wait budget in seconds
 */
type ServiceSpecification struct {
	Name         string   `mapstructure:"name" json:"name"`
	Command      string   `mapstructure:"command" json:"command,omitempty"`
	Args         []string `mapstructure:"args" json:"args,omitempty"`
	Port         int      `mapstructure:"port" json:"port,omitempty"`
	DataDir      string   `mapstructure:"data_dir" json:"dataDir,omitempty"`
	StartTimeout int      `mapstructure:"start_timeout" json:"startTimeout,omitempty"`
}

/**
 * ExecutionContext is the set of environment bindings under which user
 * commands run. Constructed once and passed to every invocation instead of
 * relying on inherited process environment state.
 */
type ExecutionContext struct {
	VenvDir string   `json:"venvDir"`
	WorkDir string   `json:"workDir,omitempty"`
	Env     []string `json:"-"`
}
