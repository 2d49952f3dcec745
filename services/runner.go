package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"workshop-host/internal/config"
	"workshop-host/internal/logger"
	"workshop-host/internal/models"
	"workshop-host/internal/utils"
)

/**
 * NewExecutionContext builds the environment user commands run under
 * @param {config.EnvironmentConfig} cfg - Deployment parameters
 * @param {string} workDir - Working directory for commands, empty inherits
 * @returns {models.ExecutionContext} Explicit context value
 * @returns {error} Env file read error
 * @description
 * - Same effect as sourcing the venv activate script, computed explicitly:
 *   venv bin dir prepended to PATH, VIRTUAL_ENV set, PYTHONHOME dropped
 * - Entries from the configured env file are merged in, overriding
 *   inherited values but not the activation bindings
 */
func NewExecutionContext(cfg *config.EnvironmentConfig, workDir string) (*models.ExecutionContext, error) {
	venvDir := cfg.VenvDir
	binDir := filepath.Join(venvDir, "bin")

	environ := lo.Filter(os.Environ(), func(kv string, _ int) bool {
		key, _, _ := strings.Cut(kv, "=")
		switch key {
		case "PATH", "VIRTUAL_ENV", "PYTHONHOME":
			return false
		}
		return true
	})

	if cfg.EnvFile != "" {
		fileVars, err := godotenv.Read(cfg.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file '%s': %w", cfg.EnvFile, err)
		}
		for key, value := range fileVars {
			environ = append(lo.Filter(environ, func(kv string, _ int) bool {
				k, _, _ := strings.Cut(kv, "=")
				return k != key
			}), key+"="+value)
		}
	}

	path := os.Getenv("PATH")
	if path == "" {
		path = binDir
	} else {
		path = binDir + string(os.PathListSeparator) + path
	}
	environ = append(environ, "PATH="+path)
	environ = append(environ, "VIRTUAL_ENV="+venvDir)

	return &models.ExecutionContext{
		VenvDir: venvDir,
		WorkDir: workDir,
		Env:     environ,
	}, nil
}

/**
 * Run executes a user command inside the activated environment
 * @param {context.Context} ctx - Cancels the running command
 * @param {models.ExecutionContext} ec - Environment bindings
 * @param {[]string} argv - Command and arguments, not shell-interpreted
 * @param {io.Reader} stdin - Wired through unchanged
 * @param {io.Writer} stdout - Wired through unchanged
 * @param {io.Writer} stderr - Wired through unchanged
 * @returns {int} The child's exit code, 127 when it could not be started
 * @returns {error} *models.CommandError for non-zero exits
 * @description
 * - The venv bin dir is searched first, so `python` binds to the venv one
 * - A child killed by a signal reports 128+signal
 * - The exit code is never remapped: callers pass it through
 */
func Run(ctx context.Context, ec *models.ExecutionContext, argv []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	if len(argv) == 0 {
		return 127, fmt.Errorf("no command given")
	}

	name := argv[0]
	if !strings.ContainsRune(name, os.PathSeparator) {
		candidate := filepath.Join(ec.VenvDir, "bin", name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			name = candidate
		}
	}

	cmd := exec.CommandContext(ctx, name, argv[1:]...)
	cmd.Env = ec.Env
	cmd.Dir = ec.WorkDir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Infof("Running command: %s", strings.Join(argv, " "))

	if err := cmd.Start(); err != nil {
		RecordCommandRun(127)
		return 127, fmt.Errorf("failed to start '%s': %w", argv[0], err)
	}

	err := cmd.Wait()
	if err == nil {
		RecordCommandRun(0)
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := utils.ExitStatus(exitErr.ProcessState)
		RecordCommandRun(code)
		logger.Warnf("Command '%s' exited with code %d", argv[0], code)
		return code, &models.CommandError{ExitCode: code}
	}

	RecordCommandRun(127)
	return 127, err
}
