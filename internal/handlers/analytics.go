package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailtriage/internal/models"
	"mailtriage/internal/store"
)

// AnalyticsHandler returns aggregate counts for the dashboard charts
// @Summary Message analytics
// @Description Sentiment, priority and responded distributions across stored messages
// @Tags analytics
// @Produce json
// @Success 200 {object} models.AnalyticsResponse
// @Failure 500 {object} models.AnalyticsResponse
// @Router /api/analytics [get]
func AnalyticsHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := st.Stats(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.AnalyticsResponse{
				Error: "failed to compute analytics",
			})
		}

		return c.JSON(http.StatusOK, models.AnalyticsResponse{
			Total:     stats.Total,
			Sentiment: stats.Sentiment,
			Priority:  stats.Priority,
			Responded: stats.Responded,
			Pending:   stats.Total - stats.Responded,
		})
	}
}
