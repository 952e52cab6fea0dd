package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to the caller's account
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes behind auth
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/profile", h.GetProfile, auth)
	g.PUT("/profile", h.UpdateProfile, auth)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the caller's name or university. The feed is scoped by the
// university the client sends, so switching it here only changes future sign-ins.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.University != "" {
		user.University = req.University
	}
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile").SetInternal(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) currentUser(c echo.Context) (*models.User, error) {
	claims := currentClaims(c)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Profile requires a local account token")
	}
	user, err := h.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Database error").SetInternal(err)
	}
	return user, nil
}
