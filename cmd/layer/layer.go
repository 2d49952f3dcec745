package layer

import (
	"workshop-host/cmd/root"
	"workshop-host/internal/config"
	"workshop-host/services"

	"github.com/spf13/cobra"
)

var layerCmd = &cobra.Command{
	Use:   "layer",
	Short: "Manage install layers",
	Long:  "List, apply and remove the install layers that make up the environment",
}

// newServer builds an initialized server for local layer operations
func newServer() (*services.Server, error) {
	server := services.NewServer(&config.Config)
	if err := server.Init(); err != nil {
		return nil, err
	}
	return server, nil
}

func init() {
	root.RootCmd.AddCommand(layerCmd)
}
