package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/anonto42/campus-board/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// toHTTPError converts service and repository errors into Echo HTTP errors
func toHTTPError(err error) error {
	var partial *services.PartialSyncError
	switch {
	case errors.As(err, &partial):
		return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{
			"message":       "Resync partially applied, retry required",
			"insertedCount": partial.Inserted,
			"expectedCount": partial.Expected,
		}).SetInternal(err)
	case errors.Is(err, services.ErrEnvelopeNotFound), errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Ad not found")
	case errors.Is(err, repositories.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid ad ID")
	case errors.Is(err, services.ErrInvalidFilter):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidUser):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, services.ErrSyncInProgress):
		return echo.NewHTTPError(http.StatusConflict, "A resync is already running")
	case errors.Is(err, services.ErrSourceUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Club ad store unavailable, aggregate left unchanged").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process request").SetInternal(err)
}
