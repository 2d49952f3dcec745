package service

import (
	"fmt"
	"time"

	"workshop-host/internal/rpc"
	"workshop-host/services"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop [service name]",
	Short: "Stop service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := stopService(args[0]); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Stop service by name
 * @param {string} serviceName - Name of the service to stop
 * @returns {error} Returns error if service stop fails, nil on success
 * @description
 * - Prefers the daemon API, falls back to the local service manager
 * - Stopping a ready service is terminal: it stays stopped until an
 *   explicit start
 */
func stopService(serviceName string) error {
	config := rpc.DefaultHTTPConfig()
	config.Timeout = 10 * time.Second
	rpcClient := rpc.NewHTTPClient(config)

	apiPath := fmt.Sprintf("/workshop/api/v1/services/%s/stop", serviceName)
	resp, err := rpcClient.Post(apiPath, nil, nil)
	if err != nil {
		rpcClient.Close()
		return stopServiceLocally(serviceName)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		rpcClient.Close()
		fmt.Printf("Service %s has been stopped via workshop daemon\n", serviceName)
		return nil
	}

	rpcClient.Close()
	return stopServiceLocally(serviceName)
}

func stopServiceLocally(serviceName string) error {
	manager := services.GetServiceManager()
	if err := manager.StopService(serviceName); err != nil {
		return fmt.Errorf("Failed to stop service: %v", err)
	}
	fmt.Printf("Service %s has been stopped locally\n", serviceName)
	return nil
}

func init() {
	serviceCmd.AddCommand(stopCmd)
}
