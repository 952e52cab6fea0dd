package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clubAdRequest is a validated request body that builds a stored ad of type T
type clubAdRequest[T any] interface {
	ToAd(id primitive.ObjectID, createdAt, now time.Time) T
}

// ClubAdHandler serves CRUD for one club ad collection
type ClubAdHandler[T models.AdPayload, R clubAdRequest[T]] struct {
	repository repositories.ClubAdRepository[T]
	path       string
}

// NewClubAdHandler creates a handler for the collection mounted at path, e.g. "/event-ads"
func NewClubAdHandler[T models.AdPayload, R clubAdRequest[T]](repo repositories.ClubAdRepository[T], path string) *ClubAdHandler[T, R] {
	return &ClubAdHandler[T, R]{repository: repo, path: path}
}

// RegisterClubAdRoutes registers the collection's routes; writes additionally pass through writeGuard
func (h *ClubAdHandler[T, R]) RegisterClubAdRoutes(g *echo.Group, writeGuard ...echo.MiddlewareFunc) {
	g.GET(h.path, h.List)
	g.GET(h.path+"/:id", h.Get)
	g.POST(h.path, h.Create, writeGuard...)
	g.PUT(h.path+"/:id", h.Replace, writeGuard...)
	g.DELETE(h.path+"/:id", h.Delete, writeGuard...)
}

// Create stores a new club ad
func (h *ClubAdHandler[T, R]) Create(c echo.Context) error {
	var req R
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	now := time.Now()
	ad := req.ToAd(primitive.NewObjectID(), now, now)
	if err := h.repository.Create(c.Request().Context(), ad); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create ad").SetInternal(err)
	}
	return c.JSON(http.StatusCreated, ad)
}

// Get returns one club ad
func (h *ClubAdHandler[T, R]) Get(c echo.Context) error {
	ad, err := h.repository.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return clubAdError(err)
	}
	return c.JSON(http.StatusOK, ad)
}

// List returns every ad in the collection, newest first
func (h *ClubAdHandler[T, R]) List(c echo.Context) error {
	ads, err := h.repository.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list ads").SetInternal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(ads), "ads": ads})
}

// Replace overwrites a club ad, keeping its id and creation time
func (h *ClubAdHandler[T, R]) Replace(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := h.repository.GetByID(ctx, id)
	if err != nil {
		return clubAdError(err)
	}

	var req R
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ad := req.ToAd(existing.SourceID(), existing.Created(), time.Now())
	if err := h.repository.Replace(ctx, id, ad); err != nil {
		return clubAdError(err)
	}
	return c.JSON(http.StatusOK, ad)
}

// Delete removes a club ad. Its aggregate copy disappears on the next resync.
func (h *ClubAdHandler[T, R]) Delete(c echo.Context) error {
	if err := h.repository.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return clubAdError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func clubAdError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Ad not found")
	case errors.Is(err, repositories.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid ad ID")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process ad").SetInternal(err)
}
