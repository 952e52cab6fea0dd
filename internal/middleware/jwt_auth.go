package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// Context keys set by the authentication middleware
const (
	ContextUserID = "userID"
	ContextClaims = "user"
)

// JWTAuthMiddleware checks for a valid JWT and extracts user claims.
// When fallback is non-nil, tokens that are not valid local JWTs are handed to it instead
// of being rejected.
func JWTAuthMiddleware(secret string, fallback echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		var onInvalid echo.HandlerFunc
		if fallback != nil {
			onInvalid = fallback(next)
		}
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := ParseToken(secret, tokenString)
			if err != nil {
				if onInvalid != nil {
					return onInvalid(c)
				}
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ContextClaims, claims)
			c.Set(ContextUserID, strconv.FormatUint(uint64(claims.UserID), 10))
			return next(c)
		}
	}
}

// ParseToken validates an HS256 token signed with secret and returns its claims
func ParseToken(secret, tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
