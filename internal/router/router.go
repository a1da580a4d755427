// Package router wires HTTP routes to their handlers and applies the
// authentication, role and traffic middleware each group needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-session-scheduler/internal/handler"
	"github.com/iliyamo/conference-session-scheduler/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication or
// dependencies. Currently it exposes only a health check used by
// load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Register and
// login live under /v1/auth and need no session; /v1/me returns the
// authenticated user's profile and sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints:
// event listing and the schedule grid. The optional cache middleware
// is applied to this group only, since the schedule is the one
// response worth caching; pass nil to serve uncached.
func RegisterPublic(e *echo.Echo, s *handler.ScheduleHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/events", s.ListEvents)
	g.GET("/events/:id/schedule", s.GetSchedule)
}

// RegisterOrganizer registers the schedule management endpoints.
// Every route requires a valid access token carrying the ORGANIZER
// role.
func RegisterOrganizer(e *echo.Echo, o *handler.OrganizerHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ORGANIZER"))

	g.POST("/events/:id/rooms", o.CreateRoom)
	g.GET("/events/:id/rooms", o.ListRooms)
	g.DELETE("/rooms/:id", o.DeleteRoom)

	g.POST("/events/:id/timeslots", o.CreateTimeSlot)
	g.GET("/events/:id/timeslots", o.ListTimeSlots)
	g.DELETE("/timeslots/:id", o.DeleteTimeSlot)

	g.POST("/events/:id/talks", o.CreateTalk)
	g.PUT("/talks/:id/slot", o.AssignSlot)
	g.DELETE("/talks/:id/slot", o.UnassignSlot)
}

// RegisterAttendee registers the seat reservation endpoints. Both
// roles may reserve seats; organizers attend talks too. The optional
// rate limiter protects the write endpoints from bursts when a
// popular talk opens; pass nil to skip it.
func RegisterAttendee(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ATTENDEE", "ORGANIZER"))
	if limiter != nil {
		g.Use(limiter)
	}

	g.POST("/talks/:id/reservations", r.Reserve)
	g.POST("/reservations/confirm", r.Confirm)
	g.DELETE("/talks/:id/reservations", r.Cancel)
	g.DELETE("/me/reservations", r.CancelAll)
	g.GET("/me/reservations", r.ListMine)
}
