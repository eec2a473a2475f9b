/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (zap)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the payroll frontend

  POST /api/payruns is additionally rate limited per client address.

ROUTE GROUPS:
  /api/employees/*        Employee directory
  /api/salary/preview     Compute without saving
  /api/salary/records/*   Saved salaries per employee and period
  /api/salary/rules       Rule set in effect
  /api/payruns            Batch computation
  /api/scenarios/*        Demo data (dev only)
  /api/reset              Database reset (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public; deploy behind
  whatever gateway handles identity.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
		})

		// Salary routes
		r.Route("/salary", func(r chi.Router) {
			r.Post("/preview", h.PreviewSalary)
			r.Get("/professional-tax", h.GetProfessionalTax)
			r.Get("/rules", h.GetRules)

			r.Route("/records", func(r chi.Router) {
				r.Get("/", h.ListSalaryRecords)
				r.Post("/", h.SaveSalaryRecord)
				r.Get("/{id}", h.GetSalaryRecord)
				r.Delete("/{id}", h.DeleteSalaryRecord)
			})
		})

		// Pay run routes
		r.Route("/payruns", func(r chi.Router) {
			r.Get("/", h.ListPayRuns)
			r.With(h.PayRunLimiter.Middleware).Post("/", h.CreatePayRun)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})

		r.Post("/reset", h.ResetDatabase)
	})

	return r
}

// RequestLogger logs one line per request with the chi request ID.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			if status >= http.StatusInternalServerError {
				logger.Error("request", fields...)
				return
			}
			logger.Info("request", fields...)
		})
	}
}
