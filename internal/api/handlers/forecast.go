package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yathboss/revenue-vision/internal/models"
	"github.com/yathboss/revenue-vision/internal/services"
	"github.com/yathboss/revenue-vision/internal/utils"
)

// ForecastHandler serves the forecast API over the core engine.
type ForecastHandler struct {
	svc    *services.ForecastService
	logger *logrus.Logger
}

func NewForecastHandler(svc *services.ForecastService, logger *logrus.Logger) *ForecastHandler {
	return &ForecastHandler{svc: svc, logger: logger}
}

// GetForecast computes (or serves from cache) the forecast payload for
// the query parameters.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	req := parseRequest(c)

	payload, err := h.svc.Forecast(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// ExportCSV streams the forecast table as a CSV attachment.
func (h *ForecastHandler) ExportCSV(c *gin.Context) {
	req := parseRequest(c)

	payload, err := h.svc.Forecast(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("date,predicted_sales\n")
	for _, row := range payload.Table {
		fmt.Fprintf(&sb, "%s,%g\n", row.Date, row.PredictedSales)
	}

	c.Header("Content-Disposition", "attachment; filename=forecast.csv")
	c.Data(http.StatusOK, "text/csv", []byte(sb.String()))
}

// GetFilters lists the distinct filter values of the ledger.
func (h *ForecastHandler) GetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.FilterOptions())
}

// Flush clears the result cache and trained models. Manual retrain hook
// for after the underlying ledger changes.
func (h *ForecastHandler) Flush(c *gin.Context) {
	if err := h.svc.Flush(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Cache flush failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "flush failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

func parseRequest(c *gin.Context) models.ForecastRequest {
	return models.ForecastRequest{
		Freq: models.Frequency(c.DefaultQuery("freq", "monthly")),
		Filters: models.Filters{
			Category: c.DefaultQuery("category", models.FilterAll),
			Region:   c.DefaultQuery("region", models.FilterAll),
			Segment:  c.DefaultQuery("segment", models.FilterAll),
		},
		Mode:     models.Mode(c.DefaultQuery("mode", "fast")),
		Scenario: models.Scenario(c.DefaultQuery("scenario", "base")),
	}
}

func (h *ForecastHandler) respondError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError
	var noDataErr *utils.NoDataError
	var trainingErr *utils.TrainingError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &noDataErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": noDataErr.Message})
	case errors.As(err, &trainingErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": trainingErr.Error()})
	default:
		h.logger.WithError(err).Error("Forecast request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
