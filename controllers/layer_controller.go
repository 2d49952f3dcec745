package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"workshop-host/internal/models"
	"workshop-host/services"

	"github.com/gin-gonic/gin"
)

type LayerController struct {
	server *services.Server
}

func NewLayerController(server *services.Server) *LayerController {
	return &LayerController{
		server: server,
	}
}

/**
 * Register all layer API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Registers routes for:
 *   - Layer management (list/apply/remove)
 */
func (l *LayerController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/workshop/api/v1")
	api.GET("/layers", l.ListLayers)
	api.POST("/layers/apply", l.ApplyLayers)
	api.DELETE("/layers/:name", l.RemoveLayer)
}

// ListLayers lists every layer of the spec with its receipt state
//
//	@Summary		List layers
//	@Description	Get the layer spec steps together with their install state
//	@Tags			Layers
//	@Accept			json
//	@Produce		json
//	@Success		200	{array}		models.LayerDetail		"List of layers"
//	@Failure		500	{object}	models.ErrorResponse	"Internal server error response"
//	@Router			/workshop/api/v1/layers [get]
func (l *LayerController) ListLayers(c *gin.Context) {
	layers := l.server.Layers()
	if layers == nil {
		c.JSON(500, &models.ErrorResponse{
			Code:  "layers.not_loaded",
			Error: "layer spec not loaded",
		})
		return
	}
	c.JSON(200, layers.GetDetails())
}

// ApplyLayers applies the whole layer spec in declared order
//
//	@Summary		Apply layers
//	@Description	Apply every step of the layer spec in order, stopping at the first failure
//	@Tags			Layers
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Application success response"
//	@Failure		500	{object}	models.ErrorResponse	"Failed step error response"
//	@Router			/workshop/api/v1/layers/apply [post]
func (l *LayerController) ApplyLayers(c *gin.Context) {
	layers := l.server.Layers()
	if layers == nil {
		c.JSON(500, &models.ErrorResponse{
			Code:  "layers.not_loaded",
			Error: "layer spec not loaded",
		})
		return
	}
	if err := layers.Apply(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, &models.ErrorResponse{
			Code:  "layers.apply_failed",
			Error: err.Error(),
		})
		return
	}
	c.JSON(200, gin.H{"status": "success"})
}

// RemoveLayer uninstalls one applied layer by name
//
//	@Summary		Remove layer
//	@Description	Uninstall a previously applied layer by its name
//	@Tags			Layers
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Layer name"
//	@Success		200		{object}	map[string]interface{}	"Removal success response"
//	@Failure		404		{object}	models.ErrorResponse	"Layer not found error response"
//	@Failure		500		{object}	models.ErrorResponse	"Removal failure error response"
//	@Router			/workshop/api/v1/layers/{name} [delete]
func (l *LayerController) RemoveLayer(c *gin.Context) {
	name := c.Param("name")

	layers := l.server.Layers()
	if layers == nil {
		c.JSON(500, &models.ErrorResponse{
			Code:  "layers.not_loaded",
			Error: "layer spec not loaded",
		})
		return
	}
	if err := layers.Remove(c.Request.Context(), name); err != nil {
		var installErr *models.InstallError
		status := 404
		if errors.As(err, &installErr) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, &models.ErrorResponse{
			Code:  "layers.remove_failed",
			Error: fmt.Sprintf("remove layer [%s]: %v", name, err),
		})
		return
	}
	c.JSON(200, gin.H{"status": "success"})
}
