//go:build !windows

package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-host/internal/config"
	"workshop-host/internal/models"
)

func testContext(t *testing.T) *models.ExecutionContext {
	t.Helper()
	cfg := config.EnvironmentConfig{VenvDir: filepath.Join(t.TempDir(), "venv")}
	ec, err := NewExecutionContext(&cfg, "")
	require.NoError(t, err)
	return ec
}

/**
 * Test execution context construction
 * @param {*testing.T} t - Testing framework instance
 * @description
 * - The venv bin dir must lead PATH
 * - VIRTUAL_ENV must point at the venv, PYTHONHOME must be gone
 */
func TestNewExecutionContext(t *testing.T) {
	t.Setenv("PYTHONHOME", "/usr/lib/python-polluted")

	venv := filepath.Join(t.TempDir(), "venv")
	cfg := config.EnvironmentConfig{VenvDir: venv}
	ec, err := NewExecutionContext(&cfg, "/data")
	require.NoError(t, err)

	assert.Equal(t, venv, ec.VenvDir)
	assert.Equal(t, "/data", ec.WorkDir)

	var path, virtualEnv string
	for _, kv := range ec.Env {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "PATH":
			path = value
		case "VIRTUAL_ENV":
			virtualEnv = value
		case "PYTHONHOME":
			t.Error("PYTHONHOME must not survive activation")
		}
	}
	assert.True(t, strings.HasPrefix(path, filepath.Join(venv, "bin")),
		"venv bin dir must lead PATH, got %q", path)
	assert.Equal(t, venv, virtualEnv)
}

func TestNewExecutionContextEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "workshop.env")
	require.NoError(t, os.WriteFile(envFile, []byte("RADICAL_LOG_LVL=DEBUG\n"), 0644))

	cfg := config.EnvironmentConfig{
		VenvDir: filepath.Join(t.TempDir(), "venv"),
		EnvFile: envFile,
	}
	ec, err := NewExecutionContext(&cfg, "")
	require.NoError(t, err)
	assert.Contains(t, ec.Env, "RADICAL_LOG_LVL=DEBUG")
}

func TestNewExecutionContextMissingEnvFile(t *testing.T) {
	cfg := config.EnvironmentConfig{
		VenvDir: t.TempDir(),
		EnvFile: filepath.Join(t.TempDir(), "absent.env"),
	}
	_, err := NewExecutionContext(&cfg, "")
	assert.Error(t, err)
}

/**
 * Test exit code passthrough
 * @param {*testing.T} t - Testing framework instance
 * @description The child's exit code must come back unchanged, wrapped in
 * CommandError for non-zero exits
 */
func TestRunExitCodes(t *testing.T) {
	ec := testContext(t)

	code, err := Run(context.Background(), ec, []string{"sh", "-c", "exit 0"}, nil, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = Run(context.Background(), ec, []string{"sh", "-c", "exit 3"}, nil, nil, nil)
	assert.Equal(t, 3, code)
	var cmdErr *models.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
}

func TestRunSignalExit(t *testing.T) {
	ec := testContext(t)

	// SIGTERM is 15, shell convention reports 128+15
	code, err := Run(context.Background(), ec, []string{"sh", "-c", "kill -TERM $$"}, nil, nil, nil)
	assert.Error(t, err)
	assert.Equal(t, 143, code)
}

func TestRunStartFailure(t *testing.T) {
	ec := testContext(t)

	code, err := Run(context.Background(), ec, []string{"definitely-not-a-command-xyz"}, nil, nil, nil)
	assert.Error(t, err)
	assert.Equal(t, 127, code)

	code, err = Run(context.Background(), ec, nil, nil, nil, nil)
	assert.Error(t, err)
	assert.Equal(t, 127, code)
}

/**
 * Test that the context's environment reaches the child
 * @param {*testing.T} t - Testing framework instance
 */
func TestRunEnvPropagation(t *testing.T) {
	ec := testContext(t)

	var out bytes.Buffer
	code, err := Run(context.Background(), ec,
		[]string{"sh", "-c", `printf "%s" "$VIRTUAL_ENV"`}, nil, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, ec.VenvDir, out.String())
}

func TestRunWorkDir(t *testing.T) {
	dir := t.TempDir()
	cfg := config.EnvironmentConfig{VenvDir: filepath.Join(t.TempDir(), "venv")}
	ec, err := NewExecutionContext(&cfg, dir)
	require.NoError(t, err)

	var out bytes.Buffer
	code, err := Run(context.Background(), ec, []string{"pwd"}, nil, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	got, err := filepath.EvalSymlinks(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

/**
 * Test that parallel runs with distinct working directories stay independent
 * @param {*testing.T} t - Testing framework instance
 */
func TestRunConcurrentWorkDirs(t *testing.T) {
	venv := filepath.Join(t.TempDir(), "venv")

	dirs := []string{t.TempDir(), t.TempDir()}
	outs := make([]bytes.Buffer, len(dirs))
	errs := make([]error, len(dirs))

	var wg sync.WaitGroup
	for i, dir := range dirs {
		wg.Add(1)
		go func(i int, dir string) {
			defer wg.Done()
			cfg := config.EnvironmentConfig{VenvDir: venv}
			ec, err := NewExecutionContext(&cfg, dir)
			if err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = Run(context.Background(), ec,
				[]string{"sh", "-c", "pwd > marker && cat marker"}, nil, &outs[i], nil)
		}(i, dir)
	}
	wg.Wait()

	for i, dir := range dirs {
		require.NoError(t, errs[i])
		got, err := filepath.EvalSymlinks(strings.TrimSpace(outs[i].String()))
		require.NoError(t, err)
		want, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.FileExists(t, filepath.Join(dir, "marker"))
	}
}

/**
 * Test that the venv bin dir shadows the system PATH
 * @param {*testing.T} t - Testing framework instance
 */
func TestRunPrefersVenvBinary(t *testing.T) {
	venv := filepath.Join(t.TempDir(), "venv")
	binDir := filepath.Join(venv, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))

	script := "#!/bin/sh\nprintf venv-tool\n"
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "whoami"), []byte(script), 0755))

	cfg := config.EnvironmentConfig{VenvDir: venv}
	ec, err := NewExecutionContext(&cfg, "")
	require.NoError(t, err)

	var out bytes.Buffer
	code, err := Run(context.Background(), ec, []string{"whoami"}, nil, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "venv-tool", out.String())
}
