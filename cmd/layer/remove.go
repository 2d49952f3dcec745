package layer

import (
	"context"
	"fmt"

	"workshop-host/internal/rpc"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove [layer name]",
	Short: "Remove a layer",
	Long:  "Uninstall a previously applied layer by its name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := removeLayer(context.Background(), args[0]); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("Layer %s removed\n", args[0])
	},
}

func removeLayer(ctx context.Context, name string) error {
	rpcClient := rpc.NewHTTPClient(nil)
	defer rpcClient.Close()

	resp, err := rpcClient.Delete(fmt.Sprintf("/workshop/api/v1/layers/%s", name), nil)
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
	return server.Layers().Remove(ctx, name)
}

func init() {
	layerCmd.AddCommand(removeCmd)
}
