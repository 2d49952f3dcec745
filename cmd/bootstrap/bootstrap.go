package bootstrap

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

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Prepare the workshop environment",
	Long: `Apply all install layers in order, start the database service in the
background and wait until it accepts connections. The command exits non-zero
as soon as any step fails; nothing after the failed step runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBootstrap(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitCodeFor(err))
		}
		fmt.Println("Environment ready")
	},
}

/**
 * Run the full bootstrap sequence
 * @param {context.Context} ctx - Cancels any in-flight step
 * @returns {error} The first failure
 */
func runBootstrap(ctx context.Context) error {
	server := services.NewServer(&config.Config)
	if err := server.Init(); err != nil {
		return fmt.Errorf("failed to initialize: %v", err)
	}
	return server.Bootstrap(ctx)
}

// exitCodeFor maps bootstrap failures to distinct exit codes so callers
// can tell an install failure from a readiness timeout.
func exitCodeFor(err error) int {
	var installErr *models.InstallError
	if errors.As(err, &installErr) {
		return 2
	}
	var timeoutErr *models.ServiceTimeout
	if errors.As(err, &timeoutErr) {
		return 3
	}
	return 1
}

func init() {
	root.RootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Example = `  workshop-host bootstrap`
}
