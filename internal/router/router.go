// Package router defines how HTTP routes are registered for the API.
package router

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/pdfsum/internal/handler"
)

// RegisterRoutes registers routes that need no dependencies. Currently it
// exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers registers the user CRUD endpoints.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler) {
	e.POST("/users", h.Create)
	e.GET("/users", h.List)
	e.GET("/users/:id", h.Get)
	e.PUT("/users/:id", h.Update)
	e.DELETE("/users/:id", h.Delete)
}

// RegisterPDFs registers document endpoints. maxUploadMB caps the upload
// request body (0 disables the cap). cache wraps only the routes whose
// response never changes once the document exists.
func RegisterPDFs(e *echo.Echo, h *handler.PDFHandler, s *handler.SummaryHandler, maxUploadMB int, cache echo.MiddlewareFunc) {
	var upload []echo.MiddlewareFunc
	if maxUploadMB > 0 {
		upload = append(upload, echomw.BodyLimit(fmt.Sprintf("%dM", maxUploadMB)))
	}
	e.POST("/pdf/upload", h.Upload, upload...)
	if cache == nil {
		cache = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	// both spellings of the collection are served
	e.GET("/pdf", h.List)
	e.GET("/pdf/", h.List)

	e.GET("/pdf/:id", h.Get, cache)
	e.GET("/pdf/:id/download", h.Download, cache)
	e.GET("/pdf/:id/summaries", s.ListForPDF)
}

// RegisterSummaries registers summary creation and lookup.
func RegisterSummaries(e *echo.Echo, s *handler.SummaryHandler) {
	e.POST("/summary", s.Create)
	e.POST("/summary/", s.Create)
	e.GET("/summary/:pdf_id", s.Latest)
}

// RegisterAuth registers the login endpoint. It is only mounted when a JWT
// secret is configured.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/auth")
	g.POST("/login", a.Login)
}
