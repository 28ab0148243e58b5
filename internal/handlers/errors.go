package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/dashboard/internal/charts"
	"github.com/epeers/dashboard/internal/models"
	"github.com/epeers/dashboard/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// writeError maps a service error to a status code and error body
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
	case errors.Is(err, ErrBadCSV):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, charts.ErrNothingToPlot):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "no_data",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrUpstream):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upstream_unavailable",
			Message: err.Error(),
		})
	default:
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: msg,
	})
}
