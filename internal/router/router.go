package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/exam-seating/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/exam-seating/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/exam-seating/internal/model"      // role names
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers all authentication-related routes.  Register,
// login, refresh and logout live under /v1/auth; /v1/me requires a valid
// access token of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)   // refresh_token in body, or bearer for all sessions

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleCoordinator, model.RoleViewer))
	auth.GET("/me", a.Me)
}

// Coordinator groups the handlers behind the COORDINATOR role.
type Coordinator struct {
	Rooms   *handler.RoomHandler
	Rosters *handler.RosterHandler
	Charts  *handler.ChartHandler
}

// RegisterCoordinator registers room, roster and chart management.  Chart
// reads go through cache; chart generation goes through limit.  Either
// middleware may be nil.
func RegisterCoordinator(e *echo.Echo, h Coordinator, jwtSecret string, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCoordinator))

	g.POST("/rooms", h.Rooms.CreateRoom)
	g.GET("/rooms", h.Rooms.ListRooms)
	g.GET("/rooms/:id", h.Rooms.GetRoom)
	g.DELETE("/rooms/:id", h.Rooms.DeleteRoom)

	g.POST("/rosters", h.Rosters.CreateRoster)
	g.GET("/rosters", h.Rosters.ListRosters)
	g.DELETE("/rosters/:id", h.Rosters.DeleteRoster)

	g.POST("/charts", h.Charts.GenerateChart, optional(limit)...)
	g.GET("/charts", h.Charts.ListCharts)
	g.GET("/charts/:id", h.Charts.GetChart, optional(cache)...)
	g.GET("/charts/:id/xlsx", h.Charts.DownloadChart, optional(cache)...)
}

// RegisterPublic registers the stateless upload endpoint.  It needs no
// account and is rate limited per client when limit is non-nil.
func RegisterPublic(e *echo.Echo, u *handler.UploadHandler, limit echo.MiddlewareFunc) {
	e.POST("/v1/charts/upload", u.Upload, optional(limit)...)
}

func optional(m echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if m == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m}
}
