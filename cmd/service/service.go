package service

import (
	"workshop-host/cmd/root"

	"github.com/spf13/cobra"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage background services",
	Long:  "Start, stop and inspect the background services of the workshop environment",
}

func init() {
	root.RootCmd.AddCommand(serviceCmd)
}
