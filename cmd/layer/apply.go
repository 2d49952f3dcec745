package layer

import (
	"context"
	"fmt"
	"os"

	"workshop-host/internal/rpc"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply all layers",
	Long:  "Apply every step of the layer spec in declared order, stopping at the first failure",
	Run: func(cmd *cobra.Command, args []string) {
		if err := applyLayers(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Println("All layers applied")
	},
}

/**
 * Apply all layers via the daemon, or locally when it is not running
 * @param {context.Context} ctx - Cancels the in-flight step
 * @returns {error} The failed step's error
 */
func applyLayers(ctx context.Context) error {
	rpcClient := rpc.NewHTTPClient(nil)
	defer rpcClient.Close()

	resp, err := rpcClient.Post("/workshop/api/v1/layers/apply", nil, nil)
	if err == nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return fmt.Errorf("%s", resp.Error)
	}

	server, err := newServer()
	if err != nil {
		return err
	}
	return server.Layers().Apply(ctx)
}

func init() {
	layerCmd.AddCommand(applyCmd)
}
