package root

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "workshop-host",
	Short: "Workshop environment bootstrapper",
	Long:  `workshop-host prepares a reproducible workshop environment: it applies ordered install layers to the virtual environment, runs the backing database, and executes commands inside the activated environment`,
}
