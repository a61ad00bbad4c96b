package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/api/docs"
	formapi "github.com/formloom/forms-backend/internal/api/form"
	"github.com/formloom/forms-backend/internal/api/middleware"
	submissionapi "github.com/formloom/forms-backend/internal/api/submission"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(formHandler *formapi.Handler, submissionHandler *submissionapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	formapi.RegisterRoutes(r, formHandler)
	submissionapi.RegisterRoutes(r, submissionHandler)

	return r
}
