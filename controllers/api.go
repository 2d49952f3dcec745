package controllers

import (
	"workshop-host/internal/config"
	"workshop-host/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIController struct {
	server *services.Server
}

/**
 * Create new API controller instance
 * @param {*services.Server} server - Server instance holding all managers
 * @returns {*APIController} New API controller instance
 * @description
 * - Initializes controller with the server
 * - Used to manage the system-level routes of the daemon API
 * @example
 * server := services.NewServer(&config.Config)
 * controller := controllers.NewAPIController(server)
 */
func NewAPIController(server *services.Server) *APIController {
	return &APIController{
		server: server,
	}
}

/**
 * Register all API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Registers system routes:
 *   - Configuration reload
 *   - One-shot environment check
 *   - Readiness probe and Prometheus metrics
 * @example
 * router := gin.Default()
 * controller := NewAPIController(server)
 * controller.RegisterRoutes(router)
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.POST("/workshop/api/v1/reload", a.ReloadConfig)
	r.POST("/workshop/api/v1/check", a.Check)
	r.GET("/workshop/api/v1/state", a.GetState)
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// @Summary Reload configuration
// @Description Re-read the configuration file from disk
// @Tags Config
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /workshop/api/v1/reload [post]
func (a *APIController) ReloadConfig(c *gin.Context) {
	if err := config.ReloadConfig(); err != nil {
		c.JSON(500, gin.H{
			"code":    "config.reload_failed",
			"message": "Failed to reload configuration: " + err.Error(),
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "success",
		"message": "Configuration reloaded successfully",
	})
}

// @Summary Run environment check
// @Description Validate the environment: service readiness plus layer receipts
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} models.CheckResponse "Detailed check results"
// @Router /workshop/api/v1/check [post]
func (a *APIController) Check(c *gin.Context) {
	response := a.server.Check()
	c.JSON(200, response)
}

// @Summary Daemon state
// @Description Dump the daemon's runtime state and effective configuration
// @Tags System
// @Produce json
// @Success 200 {object} models.ServerState
// @Router /workshop/api/v1/state [get]
func (a *APIController) GetState(c *gin.Context) {
	c.JSON(200, a.server.GetState())
}

// @Summary Readiness probe
// @Description Report version, start time, uptime and key counters
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	response := a.server.GetHealthz()
	c.JSON(200, response)
}
