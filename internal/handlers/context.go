package handlers

import (
	"net/http"

	"github.com/anonto42/campus-board/backend/internal/middleware"
	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id as set by the auth middleware
func currentUserID(c echo.Context) (string, error) {
	userID, ok := c.Get(middleware.ContextUserID).(string)
	if !ok || userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return userID, nil
}

func currentClaims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(middleware.ContextClaims).(*models.JwtCustomClaims)
	return claims
}
