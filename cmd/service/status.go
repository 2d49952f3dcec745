package service

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"workshop-host/internal/models"
	"workshop-host/internal/rpc"
	"workshop-host/services"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [service name]",
	Short: "Show service status",
	Long:  "Show the state of all services, or detailed information for one service.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showServiceStatus(args); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Show service status information
 * @param {[]string} args - Command line arguments, optionally a service name
 * @returns {error} Returns error if showing status fails, nil on success
 * @description
 * - Asks the daemon for live state, reads cached state otherwise
 * - Shows all services when no name is given
 */
func showServiceStatus(args []string) error {
	details, err := fetchServiceDetails()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return showAllServicesStatus(details)
	}
	return showSpecificServiceStatus(details, args[0])
}

func fetchServiceDetails() ([]models.ServiceDetail, error) {
	rpcClient := rpc.NewHTTPClient(nil)
	defer rpcClient.Close()

	resp, err := rpcClient.Get("/workshop/api/v1/services", nil)
	if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var details []models.ServiceDetail
		if err := json.Unmarshal(resp.Body, &details); err != nil {
			return nil, fmt.Errorf("failed to parse service list: %v", err)
		}
		return details, nil
	}

	manager := services.GetServiceManager()
	var details []models.ServiceDetail
	for _, svc := range manager.GetInstances() {
		details = append(details, manager.GetServiceDetail(svc))
	}
	return details, nil
}

/**
 * Show all services status in a table
 * @param {[]models.ServiceDetail} details - Service details
 * @returns {error} Returns error if showing status fails, nil on success
 */
func showAllServicesStatus(details []models.ServiceDetail) error {
	fmt.Println("=== Services ===")
	if len(details) == 0 {
		fmt.Println("No services found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE\tPID\tPORT\tSTART TIME")
	for _, svc := range details {
		portStr := fmt.Sprintf("%d", svc.Port)
		if svc.Port == 0 {
			portStr = "-"
		}
		pidStr := fmt.Sprintf("%d", svc.Pid)
		if svc.Pid == 0 {
			pidStr = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", svc.Name, svc.State, pidStr, portStr, svc.StartTime)
	}
	return w.Flush()
}

/**
 * Show one service in detail
 * @param {[]models.ServiceDetail} details - Service details
 * @param {string} name - Name of service
 * @returns {error} Returns error if the service is unknown
 */
func showSpecificServiceStatus(details []models.ServiceDetail, name string) error {
	for _, svc := range details {
		if svc.Name != name {
			continue
		}
		fmt.Printf("=== Service '%s' ===\n", name)
		fmt.Printf("State: %s\n", svc.State)
		fmt.Printf("Ready: %t\n", svc.Ready)
		if svc.Pid > 0 {
			fmt.Printf("PID: %d\n", svc.Pid)
		}
		if svc.Port > 0 {
			fmt.Printf("Port: %d\n", svc.Port)
		}
		fmt.Printf("Start time: %s\n", svc.StartTime)
		if svc.Spec.Command != "" {
			fmt.Printf("Command: %s\n", svc.Spec.Command)
		}
		if svc.Spec.DataDir != "" {
			fmt.Printf("Data dir: %s\n", svc.Spec.DataDir)
		}
		return nil
	}

	return fmt.Errorf("no service named '%s'", name)
}

func init() {
	serviceCmd.AddCommand(statusCmd)
}
