package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yathboss/revenue-vision/internal/api/handlers"
	"github.com/yathboss/revenue-vision/internal/database"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// SetupRoutes wires the API surface. db and redis may be nil when the
// respective backends are disabled.
func SetupRoutes(router *gin.Engine, forecast *handlers.ForecastHandler, db *database.PostgresDB, redis *database.RedisClient) {
	router.GET("/health", healthCheck(db, redis))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/forecast", forecast.GetForecast)
		v1.GET("/forecast/export", forecast.ExportCSV)
		v1.GET("/filters", forecast.GetFilters)

		admin := v1.Group("/admin")
		{
			admin.POST("/flush", forecast.Flush)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "disabled",
				Redis:    "disabled",
			},
		}

		if db != nil {
			response.Services.Database = "ok"
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				response.Services.Database = "error"
				response.Status = "degraded"
			}
		}

		if redis != nil {
			response.Services.Redis = "ok"
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				response.Services.Redis = "error"
				response.Status = "degraded"
			}
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
