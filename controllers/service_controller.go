package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"workshop-host/internal/models"
	"workshop-host/services"

	"github.com/gin-gonic/gin"
)

type ServiceController struct {
	service *services.ServiceManager
}

/**
 * Create new Service controller instance
 * @param {*services.ServiceManager} service - Service manager instance
 * @returns {*ServiceController} New Service controller instance
 * @description
 * - Initializes controller with service manager
 * - Used to manage API routes and handlers for service operations
 * @example
 * svcManager := services.GetServiceManager()
 * controller := controllers.NewServiceController(svcManager)
 */
func NewServiceController(service *services.ServiceManager) *ServiceController {
	return &ServiceController{
		service: service,
	}
}

/**
 * Register all service API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Registers routes for:
 *   - Service management (list/start/stop/wait/get)
 * @example
 * controller := NewServiceController(svcManager)
 * controller.RegisterRoutes(router)
 */
func (s *ServiceController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/workshop/api/v1")
	api.GET("/services", s.ListServices)
	api.POST("/services/:name/start", s.StartService)
	api.POST("/services/:name/stop", s.StopService)
	api.POST("/services/:name/wait", s.WaitReady)
	api.GET("/services/:name", s.GetService)
}

// ListServices lists all managed services
//
//	@Summary		List all services
//	@Description	Get list of all managed services with their current state
//	@Tags			Services
//	@Accept			json
//	@Produce		json
//	@Success		200	{array}		models.ServiceDetail	"List of service instances"
//	@Failure		500	{object}	models.ErrorResponse	"Internal server error response"
//	@Router			/workshop/api/v1/services [get]
func (s *ServiceController) ListServices(c *gin.Context) {
	var results []models.ServiceDetail
	for _, svc := range s.service.GetInstances() {
		results = append(results, s.service.GetServiceDetail(svc))
	}
	c.JSON(200, results)
}

// StartService starts a specific service by name
//
//	@Summary		Start service
//	@Description	Start a specific service by its name; does not wait for readiness
//	@Tags			Services
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Service name"
//	@Success		200		{object}	models.ServiceDetail	"Service detail after start"
//	@Failure		404		{object}	models.ErrorResponse	"Service not found error response"
//	@Failure		500		{object}	models.ErrorResponse	"Internal server error response"
//	@Router			/workshop/api/v1/services/{name}/start [post]
func (s *ServiceController) StartService(c *gin.Context) {
	name := c.Param("name")

	svc := s.service.GetInstance(name)
	if svc == nil {
		c.JSON(404, &models.ErrorResponse{
			Code:  "service.notexist",
			Error: fmt.Sprintf("service [%s] isn't exist", name),
		})
		return
	}
	if err := s.service.StartService(c.Request.Context(), name); err != nil {
		c.JSON(500, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(200, s.service.GetServiceDetail(svc))
}

// StopService stops a specific service by name
//
//	@Summary		Stop service
//	@Description	Stop a specific service by its name
//	@Tags			Services
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Service name"
//	@Success		200		{object}	map[string]interface{}	"Service stop success response"
//	@Failure		404		{object}	models.ErrorResponse	"Service not found error response"
//	@Router			/workshop/api/v1/services/{name}/stop [post]
func (s *ServiceController) StopService(c *gin.Context) {
	name := c.Param("name")

	svc := s.service.GetInstance(name)
	if svc == nil {
		c.JSON(404, &models.ErrorResponse{
			Error: fmt.Sprintf("service [%s] isn't exist", name),
		})
		return
	}
	if err := s.service.StopService(name); err != nil {
		c.JSON(404, &models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	c.JSON(200, gin.H{"status": "success"})
}

// WaitReady blocks until the service is ready or the timeout expires
//
//	@Summary		Wait for service readiness
//	@Description	Block until the named service accepts connections, honoring an optional timeout override in seconds
//	@Tags			Services
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Service name"
//	@Param			timeout	query		int						false	"Timeout override in seconds"
//	@Success		200		{object}	models.ServiceDetail	"Service detail once ready"
//	@Failure		404		{object}	models.ErrorResponse	"Service not found error response"
//	@Failure		504		{object}	models.ErrorResponse	"Readiness timeout response"
//	@Router			/workshop/api/v1/services/{name}/wait [post]
func (s *ServiceController) WaitReady(c *gin.Context) {
	name := c.Param("name")

	svc := s.service.GetInstance(name)
	if svc == nil {
		c.JSON(404, &models.ErrorResponse{
			Code:  "service.notexist",
			Error: fmt.Sprintf("service [%s] isn't exist", name),
		})
		return
	}

	var timeout time.Duration
	if raw := c.Query("timeout"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(400, &models.ErrorResponse{
				Error: fmt.Sprintf("invalid timeout '%s'", raw),
			})
			return
		}
		timeout = time.Duration(seconds) * time.Second
	}

	if err := s.service.WaitReady(c.Request.Context(), name, timeout); err != nil {
		c.JSON(http.StatusGatewayTimeout, &models.ErrorResponse{
			Code:  "service.not_ready",
			Error: err.Error(),
		})
		return
	}
	c.JSON(200, s.service.GetServiceDetail(svc))
}

// GetService gets detailed information of a specific service by name
//
//	@Summary		Get service information
//	@Description	Get detailed information of a specific service by its name
//	@Tags			Services
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Service name"
//	@Success		200		{object}	models.ServiceDetail	"Service detail information"
//	@Failure		404		{object}	models.ErrorResponse	"Service not found error response"
//	@Router			/workshop/api/v1/services/{name} [get]
func (s *ServiceController) GetService(c *gin.Context) {
	name := c.Param("name")

	svc := s.service.GetInstance(name)
	if svc != nil {
		c.JSON(200, s.service.GetServiceDetail(svc))
		return
	}

	c.JSON(404, &models.ErrorResponse{
		Code:  "service.notexist",
		Error: fmt.Sprintf("service [%s] isn't exist", name),
	})
}
