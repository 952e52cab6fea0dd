package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/campus-board/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SyncHandler exposes the resync engine over HTTP
type SyncHandler struct {
	sync *services.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(sync *services.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// RegisterSyncRoutes registers the resync and diagnostics routes
func (h *SyncHandler) RegisterSyncRoutes(g *echo.Group) {
	g.POST("/sync", h.SyncActive)
	g.POST("/force-sync", h.ForceSync)
	g.GET("/sync/runs", h.RecentRuns)
	g.GET("/stats", h.Stats)
}

// SyncActive rebuilds the aggregate from active club ads
func (h *SyncHandler) SyncActive(c echo.Context) error {
	return h.run(c, services.SyncModeActive)
}

// ForceSync rebuilds the aggregate from every club ad
func (h *SyncHandler) ForceSync(c echo.Context) error {
	return h.run(c, services.SyncModeAll)
}

func (h *SyncHandler) run(c echo.Context, mode services.SyncMode) error {
	result, err := h.sync.Resync(c.Request().Context(), mode, services.TriggerAPI)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Student ads synced",
		"insertedCount": result.InsertedCount,
		"result":        result,
	})
}

// RecentRuns lists the latest resyncs
func (h *SyncHandler) RecentRuns(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	runs, err := h.sync.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(runs), "runs": runs})
}

// Stats reports document counts of the club collections and the aggregate
func (h *SyncHandler) Stats(c echo.Context) error {
	stats, err := h.sync.Stats(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
