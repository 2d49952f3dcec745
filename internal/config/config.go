package config

import (
	"path/filepath"

	"github.com/spf13/viper"

	"workshop-host/internal/env"
	"workshop-host/internal/models"
)

/**
 * Server configuration parameters
 * @property {string} address - Daemon listening address (e.g. "127.0.0.1:8340")
 * @property {string} mode - Application mode (debug/release/test)
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, or "console"
 */
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

/**
 * Runtime environment configuration (build-time parameters of the image)
 * @property {string} base_tag - Base image tag the environment was built from
 * @property {string} pilot_ref - pip-installable version/source of the pilot client
 * @property {string} variant_suffix - Selects among pre-built dependency trees
 * @property {string} venv_dir - Virtual environment root
 * @property {string} env_file - Optional env file merged into execution contexts
 * @property {string} layer_file - Layer spec (HCL) location
 */
type EnvironmentConfig struct {
	BaseTag       string `mapstructure:"base_tag"`
	PilotRef      string `mapstructure:"pilot_ref"`
	VariantSuffix string `mapstructure:"variant_suffix"`
	VenvDir       string `mapstructure:"venv_dir"`
	EnvFile       string `mapstructure:"env_file"`
	LayerFile     string `mapstructure:"layer_file"`
}

type IntervalConfig struct {
	Monitoring int `mapstructure:"monitoring"`
}

type AppConfig struct {
	Server      ServerConfig                `mapstructure:"server"`
	Log         LogConfig                   `mapstructure:"log"`
	Environment EnvironmentConfig           `mapstructure:"environment"`
	Database    models.ServiceSpecification `mapstructure:"database"`
	Interval    IntervalConfig              `mapstructure:"interval"`
}

/**
 * Load application configuration from YAML file
 * @description Searches the working directory first, then the workshop dir
 */
func LoadConfig() (*AppConfig, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(env.WorkshopDir)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var Config AppConfig

func collectConfig(cfg *AppConfig) *AppConfig {
	if cfg.Server.Address == "" {
		cfg.Server.Address = "127.0.0.1:8340"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "mongodb"
	}
	if cfg.Database.Command == "" {
		cfg.Database.Command = "mongod"
	}
	if len(cfg.Database.Args) == 0 {
		cfg.Database.Args = []string{
			"--dbpath", "{{.DataDir}}",
			"--port", "{{.Port}}",
			"--bind_ip", "127.0.0.1",
		}
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 27017
	}
	if cfg.Database.DataDir == "" {
		cfg.Database.DataDir = filepath.Join(env.WorkshopDir, "db")
	}
	if cfg.Database.StartTimeout == 0 {
		cfg.Database.StartTimeout = 60
	}
	if cfg.Environment.VenvDir == "" {
		cfg.Environment.VenvDir = env.GetVenvDir()
	}
	if cfg.Environment.LayerFile == "" {
		cfg.Environment.LayerFile = filepath.Join(env.WorkshopDir, "layers.hcl")
	}
	if cfg.Interval.Monitoring == 0 {
		cfg.Interval.Monitoring = 30
	}
	return cfg
}

/**
 * Reload configuration from disk, replacing the process-wide Config
 * @returns {error} Returns error if the file cannot be read or parsed
 */
func ReloadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	Config = *cfg
	collectConfig(&Config)
	return nil
}

func init() {
	cfg, err := LoadConfig()
	if err == nil {
		Config = *cfg
	}
	collectConfig(&Config)
}
