package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailtriage/internal/mailbox"
	"mailtriage/internal/models"
	"mailtriage/internal/sync"
)

// SyncHandler triggers a mailbox sync
// @Summary Sync the mailbox
// @Description Fetch recent messages, classify previously-unseen ones and store them
// @Tags sync
// @Produce json
// @Success 200 {object} models.SyncResponse
// @Failure 500 {object} models.SyncResponse
// @Failure 503 {object} models.SyncResponse
// @Router /api/sync [post]
func SyncHandler(orchestrator *sync.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ingested, err := orchestrator.Sync(c.Request().Context())
		if err != nil {
			// Credential and transport failures surface as service-unavailable;
			// everything else stays a generic failure without internal detail
			if mailbox.IsAuthError(err) || mailbox.IsTransportError(err) {
				return c.JSON(http.StatusServiceUnavailable, models.SyncResponse{
					Error: "mail provider unavailable",
				})
			}
			return c.JSON(http.StatusInternalServerError, models.SyncResponse{
				Error: "sync failed",
			})
		}

		return c.JSON(http.StatusOK, models.SyncResponse{Ingested: ingested})
	}
}
