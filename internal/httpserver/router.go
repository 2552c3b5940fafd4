package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"orderdesk/internal/dashboard"
)

const defaultFallbackMessage = "Something went wrong. Please try again."

// buildRouter wires routes for the API.
func buildRouter(deps Deps) (*gin.Engine, error) {
	if deps.Registry == nil {
		return nil, errors.New("workspace registry is required")
	}
	if deps.FallbackMessage == "" {
		deps.FallbackMessage = defaultFallbackMessage
	}

	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	h := &handlers{fallback: deps.FallbackMessage}
	api := router.Group("/api", workspaceMiddleware(deps.Registry, deps.SecureCookies))

	api.GET("/session", h.getSession)
	api.POST("/session", h.signIn)
	api.DELETE("/session", h.signOut)

	api.GET("/consent", h.getConsent)
	api.POST("/consent", h.decideConsent)

	registerScreen(api, "/overrides", h, func(w *dashboard.Workspace) *dashboard.Overrides { return w.Overrides })
	registerScreen(api, "/brands", h, func(w *dashboard.Workspace) *dashboard.Brands { return w.Brands })
	registerScreen(api, "/categories", h, func(w *dashboard.Workspace) *dashboard.Categories { return w.Categories })
	registerScreen(api, "/products", h, func(w *dashboard.Workspace) *dashboard.Products { return w.Products })
	registerScreen(api, "/customers", h, func(w *dashboard.Workspace) *dashboard.Customers { return w.Customers })
	registerScreen(api, "/agents", h, func(w *dashboard.Workspace) *dashboard.Agents { return w.Agents })
	registerScreen(api, "/orders", h, func(w *dashboard.Workspace) *dashboard.Orders { return w.Orders })

	return router, nil
}
