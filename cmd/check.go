package cmd

import (
	"encoding/json"
	"fmt"

	"workshop-host/cmd/root"
	"workshop-host/internal/config"
	"workshop-host/internal/models"
	"workshop-host/internal/rpc"
	"workshop-host/services"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the environment",
	Long:  "Validate the environment: layer receipts and service readiness. Uses the running daemon when one is available, otherwise checks locally.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheck(); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Run the environment check, preferring the daemon
 * @returns {error} Returns error if both daemon and local check fail
 * @description
 * - Sends POST /workshop/api/v1/check to the daemon when reachable
 * - Falls back to an in-process check otherwise
 * - Prints the check response as indented JSON
 */
func runCheck() error {
	rpcClient := rpc.NewHTTPClient(nil)
	defer rpcClient.Close()

	resp, err := rpcClient.Post("/workshop/api/v1/check", nil, nil)
	if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var response models.CheckResponse
		if err := json.Unmarshal(resp.Body, &response); err != nil {
			return fmt.Errorf("failed to parse check response: %v", err)
		}
		return printCheckResponse(&response)
	}

	server := services.NewServer(&config.Config)
	if err := server.Init(); err != nil {
		return fmt.Errorf("failed to initialize: %v", err)
	}
	response := server.Check()
	return printCheckResponse(&response)
}

func printCheckResponse(response *models.CheckResponse) error {
	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonData))
	fmt.Printf("\nOverall: %s (%d/%d checks passed)\n",
		response.OverallStatus, response.PassedChecks, response.TotalChecks)
	return nil
}

func init() {
	root.RootCmd.AddCommand(checkCmd)

	checkCmd.Example = `  workshop-host check`
}
