// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kiddeo/kiddeo-core/internal/handler"
	"github.com/kiddeo/kiddeo-core/internal/middleware"
	"github.com/kiddeo/kiddeo-core/internal/utils"
)

// RegisterRoutes registers unauthenticated operational routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSearch registers the public search endpoint.  The rate limiter
// runs before the cache so that cache hits are throttled too.
func RegisterSearch(e *echo.Echo, h *handler.SearchHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/api/search", h.Get, mw...)
}

// RegisterCatalog registers public catalog reads.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler) {
	e.GET("/api/events/:id/tickets", h.EventTickets)
}

// RegisterCart registers the guest session endpoint and the cart routes.
// Cart routes require a bearer token of a guest or a customer.
func RegisterCart(e *echo.Echo, s *handler.SessionHandler, h *handler.CartHandler, jwtSecret string) {
	e.POST("/api/cart/session", s.CreateGuest)

	g := e.Group("/api/cart",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleGuest, utils.RoleCustomer),
	)
	g.GET("", h.Get)
	g.GET("/events/:eventId", h.GetEvent)
	g.DELETE("/events/:eventId", h.RemoveEvent)
	g.PUT("/events/:eventId/tickets/:ticketId", h.SetTier)
	g.POST("/events/:eventId/tickets/:ticketId/increment", h.IncrementTier)
	g.POST("/events/:eventId/tickets/:ticketId/decrement", h.DecrementTier)
	g.POST("/merchandise", h.AddMerchandise)
	g.PUT("/merchandise/:productId", h.SetMerchandise)
	g.DELETE("/items/:id", h.RemoveItem)
	g.POST("/checkout", h.Checkout)
}
