package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"workshop-host/cmd/root"
	"workshop-host/controllers"
	"workshop-host/internal/config"
	"workshop-host/internal/env"
	"workshop-host/internal/logger"
	"workshop-host/internal/middleware"
	"workshop-host/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the workshop daemon",
	Long: `Run the HTTP daemon: it bootstraps the environment, supervises the
database service and serves the management API on TCP and a unix socket.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startServer(context.Background()); err != nil {
			logger.Fatal(err)
		}
	},
}

/**
 * Start the daemon: bootstrap, monitoring and the HTTP API
 * @param {context.Context} ctx - Root context of the daemon
 * @returns {error} Listener or fatal initialization error
 * @description
 * - Marks the process as daemon before managers are created
 * - A failed bootstrap is logged but does not kill the API: operators
 *   use the API to inspect and repair the environment
 * - Serves the same router on the TCP address and the unix socket
 */
func startServer(ctx context.Context) error {
	env.Daemon = true
	if _, portStr, err := net.SplitHostPort(config.Config.Server.Address); err == nil {
		if port, err := strconv.Atoi(portStr); err == nil {
			env.ListenPort = port
		}
	}

	gin.SetMode(config.Config.Server.Mode)
	router := gin.Default()
	router.Use(middleware.MetricsMiddleware())

	server := services.NewServer(&config.Config)
	if err := server.Init(); err != nil {
		return fmt.Errorf("failed to initialize: %v", err)
	}

	apiController := controllers.NewAPIController(server)
	apiController.RegisterRoutes(router)
	svcController := controllers.NewServiceController(server.Services())
	svcController.RegisterRoutes(router)
	layerController := controllers.NewLayerController(server)
	layerController.RegisterRoutes(router)

	if err := server.Bootstrap(ctx); err != nil {
		logger.Errorf("Bootstrap failed: %v", err)
	}

	go server.StartMonitoring()

	server.Services().ExportKnowledge("")

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("Shutting down")
		server.StopAllService(ctx)
		os.Exit(0)
	}()

	addrs := []ListenAddr{
		{Network: "tcp", Address: config.Config.Server.Address},
	}
	if IsUnixSocketSupported() {
		socketDir := filepath.Join(env.WorkshopDir, "run")
		if err := os.MkdirAll(socketDir, 0755); err == nil {
			addrs = append(addrs, ListenAddr{
				Network: "unix",
				Address: filepath.Join(socketDir, "workshop.sock"),
			})
		}
	}
	listeners, err := CreateListeners(addrs)
	if len(listeners) == 0 {
		return fmt.Errorf("no listener could be created: %v", err)
	}

	errCh := make(chan error, len(listeners))
	for _, l := range listeners {
		listener := l
		go func() {
			errCh <- http.Serve(listener, router)
		}()
	}
	return <-errCh
}

func init() {
	root.RootCmd.AddCommand(serverCmd)
}
