package run

import (
	"context"
	"errors"
	"fmt"
	"os"

	"workshop-host/cmd/root"
	"workshop-host/internal/config"
	"workshop-host/internal/models"
	"workshop-host/services"

	"github.com/spf13/cobra"
)

var (
	workDir string
	envFile string
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Run a command in the activated environment",
	Long: `Execute a command inside the activated workshop environment: the venv
bin directory leads PATH and VIRTUAL_ENV is set, without mutating this shell.
The command's exit code is passed through unchanged.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runCommand(context.Background(), args))
	},
}

/**
 * Run the user command and report its exit code
 * @param {context.Context} ctx - Cancels the running command
 * @param {[]string} argv - Command and arguments
 * @returns {int} The child's exit code; 127 when it could not be started
 * @description A child killed by a signal reports 128+signal, matching
 * shell conventions so wrapper scripts keep working
 */
func runCommand(ctx context.Context, argv []string) int {
	envCfg := config.Config.Environment
	if envFile != "" {
		envCfg.EnvFile = envFile
	}

	ec, err := services.NewExecutionContext(&envCfg, workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	code, err := services.Run(ctx, ec, argv, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		var cmdErr *models.CommandError
		if !errors.As(err, &cmdErr) {
			// Start failures get an explanation; non-zero exits speak for themselves
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return code
}

func init() {
	root.RootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&workDir, "workdir", "w", "", "working directory for the command")
	runCmd.Flags().StringVar(&envFile, "env-file", "", "env file merged into the command's environment")
	runCmd.Flags().SetInterspersed(false)

	runCmd.Example = `  workshop-host run -- python -m pytest
  workshop-host run --workdir /data -- radical-pilot-version`
}
