package middleware

import (
	"net/http"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose JWT claims carry none of roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ContextClaims).(*models.JwtCustomClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
		}
	}
}
