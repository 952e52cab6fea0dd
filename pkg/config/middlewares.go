package config

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// CORSConfig builds the CORS policy for the API from the configured origins
func (c *Config) CORSConfig() middleware.CORSConfig {
	origins := c.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
	}
}
