package layer

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"workshop-host/internal/models"
	"workshop-host/internal/rpc"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List layers",
	Long:  "List every layer of the spec together with its install state",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listLayers(); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * List all layers with their receipt state
 * @returns {error} Returns error if listing fails
 * @description
 * - Asks the daemon first; reads receipts locally when it is not running
 * - Prints a table with name, action, source, version and state
 */
func listLayers() error {
	details, err := fetchLayers()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tACTION\tSOURCE\tVERSION\tINSTALLED")
	for _, d := range details {
		version := d.Version
		if version == "" {
			version = "-"
		}
		installed := "no"
		if d.Installed {
			installed = "yes"
			if d.InstalledVersion != "" {
				installed = d.InstalledVersion
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.Action, d.Source, version, installed)
	}
	return w.Flush()
}

func fetchLayers() ([]models.LayerDetail, error) {
	rpcClient := rpc.NewHTTPClient(nil)
	defer rpcClient.Close()

	resp, err := rpcClient.Get("/workshop/api/v1/layers", nil)
	if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var details []models.LayerDetail
		if err := json.Unmarshal(resp.Body, &details); err != nil {
			return nil, fmt.Errorf("failed to parse layer list: %v", err)
		}
		return details, nil
	}

	server, err := newServer()
	if err != nil {
		return nil, err
	}
	return server.Layers().GetDetails(), nil
}

func init() {
	layerCmd.AddCommand(listCmd)
}
