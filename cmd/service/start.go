package service

import (
	"context"
	"fmt"
	"time"

	"workshop-host/internal/rpc"
	"workshop-host/services"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [service name]",
	Short: "Start service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := startService(context.Background(), args[0]); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Start service by name
 * @param {context.Context} ctx - Context for request cancellation and timeout
 * @param {string} serviceName - Name of the service to start
 * @returns {error} Returns error if service start fails, nil on success
 * @description
 * - Prefers the daemon API so the daemon keeps supervising the process
 * - Falls back to the local service manager when no daemon is running:
 *   the process is then detached and survives this invocation
 */
func startService(ctx context.Context, serviceName string) error {
	config := rpc.DefaultHTTPConfig()
	config.Timeout = 10 * time.Second
	rpcClient := rpc.NewHTTPClient(config)

	apiPath := fmt.Sprintf("/workshop/api/v1/services/%s/start", serviceName)
	resp, err := rpcClient.Post(apiPath, nil, nil)
	if err != nil {
		rpcClient.Close()
		return startServiceLocally(ctx, serviceName)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		rpcClient.Close()
		fmt.Printf("Service %s has been started via workshop daemon\n", serviceName)
		return nil
	}

	rpcClient.Close()
	return startServiceLocally(ctx, serviceName)
}

/**
 * Start service using local service manager
 * @param {context.Context} ctx - Context for request cancellation and timeout
 * @param {string} serviceName - Name of the service to start
 * @returns {error} Returns error if service start fails, nil on success
 */
func startServiceLocally(ctx context.Context, serviceName string) error {
	manager := services.GetServiceManager()
	if err := manager.StartService(ctx, serviceName); err != nil {
		return fmt.Errorf("Failed to start service: %v", err)
	}
	fmt.Printf("Service %s has been started locally\n", serviceName)
	return nil
}

func init() {
	serviceCmd.AddCommand(startCmd)
}
