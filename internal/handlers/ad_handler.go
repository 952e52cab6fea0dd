package handlers

import (
	"net/http"

	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdHandler serves the student feed and engagement endpoints
type AdHandler struct {
	feed       *services.FeedService
	engagement *services.EngagementService
}

// NewAdHandler creates a new AdHandler
func NewAdHandler(feed *services.FeedService, engagement *services.EngagementService) *AdHandler {
	return &AdHandler{feed: feed, engagement: engagement}
}

// RegisterPublicRoutes registers the ad routes that need no authentication
func (h *AdHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("", h.GetFeed)
	g.GET("/:id", h.GetAd)
	g.POST("/:id/share", h.Share)
}

// RegisterEngagementRoutes registers the per-user ad routes behind auth
func (h *AdHandler) RegisterEngagementRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/liked", h.GetLiked, auth)
	g.GET("/interested", h.GetInterested, auth)
	g.POST("/:id/like", h.ToggleLike, auth)
	g.POST("/:id/interest", h.ToggleInterest, auth)
}

// GetFeed returns a university's ads, optionally filtered by search, type and tags
func (h *AdHandler) GetFeed(c echo.Context) error {
	var params models.FeedQueryParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(&params); err != nil {
		return err
	}

	ads, err := h.feed.QueryFeed(c.Request().Context(), services.FilterFromParams(params))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(ads), "ads": ads})
}

// GetAd returns a single aggregate ad
func (h *AdHandler) GetAd(c echo.Context) error {
	ad, err := h.feed.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ad)
}

// Share records one share of an ad
func (h *AdHandler) Share(c echo.Context) error {
	ad, err := h.engagement.IncrementShare(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shareCount": ad.ShareCount})
}

// ToggleLike likes an ad, or removes the like if the user already liked it
func (h *AdHandler) ToggleLike(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ad, err := h.engagement.ToggleLike(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"liked":      ad.HasLike(userID),
		"likesCount": len(ad.Likes),
	})
}

// ToggleInterest marks interest in an ad, or clears it
func (h *AdHandler) ToggleInterest(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ad, err := h.engagement.ToggleInterest(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"interested":     ad.HasInterest(userID),
		"interestsCount": len(ad.Interests),
	})
}

// GetLiked returns the ads the current user liked
func (h *AdHandler) GetLiked(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ads, err := h.engagement.ListLiked(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(ads), "ads": ads})
}

// GetInterested returns the ads the current user is interested in
func (h *AdHandler) GetInterested(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ads, err := h.engagement.ListInterested(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(ads), "ads": ads})
}
