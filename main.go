package main

import (
	"os"

	_ "workshop-host/cmd"
	"workshop-host/cmd/root"
	"workshop-host/internal/config"
	"workshop-host/internal/logger"
)

func main() {
	// The daemon logs to console as well, plain CLI invocations log to file only
	isServerMode := len(os.Args) > 1 && os.Args[1] == "server"

	logger.InitLoggerWithMode(&config.Config.Log, isServerMode)

	if err := root.RootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
	os.Exit(0)
}
