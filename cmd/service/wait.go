package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"workshop-host/internal/rpc"
	"workshop-host/services"

	"github.com/spf13/cobra"
)

var waitTimeout int

var waitCmd = &cobra.Command{
	Use:   "wait [service name]",
	Short: "Wait until a service is ready",
	Long: `Block until the named service accepts connections. Exits non-zero if
the service does not become ready within the timeout.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := waitService(context.Background(), args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(3)
		}
		fmt.Printf("Service %s is ready\n", args[0])
	},
}

/**
 * Wait for service readiness via the daemon, or locally
 * @param {context.Context} ctx - Cancels the wait
 * @param {string} serviceName - Name of the service to wait for
 * @returns {error} Readiness timeout or unknown service
 * @description The daemon request timeout is stretched past the readiness
 * timeout so the HTTP call doesn't give up before the wait does
 */
func waitService(ctx context.Context, serviceName string) error {
	config := rpc.DefaultHTTPConfig()
	config.Timeout = time.Duration(waitTimeout+30) * time.Second
	rpcClient := rpc.NewHTTPClient(config)

	apiPath := fmt.Sprintf("/workshop/api/v1/services/%s/wait", serviceName)
	var params map[string]interface{}
	if waitTimeout > 0 {
		params = map[string]interface{}{"timeout": waitTimeout}
	}
	resp, err := rpcClient.Post(apiPath, params, nil)
	if err != nil {
		rpcClient.Close()
		return waitServiceLocally(ctx, serviceName)
	}
	rpcClient.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("%s", resp.Error)
}

func waitServiceLocally(ctx context.Context, serviceName string) error {
	manager := services.GetServiceManager()
	return manager.WaitReady(ctx, serviceName, time.Duration(waitTimeout)*time.Second)
}

func init() {
	serviceCmd.AddCommand(waitCmd)

	waitCmd.Flags().IntVarP(&waitTimeout, "timeout", "t", 0, "readiness timeout in seconds (0 uses the configured value)")
}
