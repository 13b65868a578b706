package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/AccountKeeper/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the account API under /api.
//
// Routes:
//
//	GET    /api/accounts          → List
//	POST   /api/accounts          → Create
//	DELETE /api/accounts          → Clear
//	GET    /api/accounts/{id}     → Get
//	PATCH  /api/accounts/{id}     → Update
//	DELETE /api/accounts/{id}     → Delete
//	GET    /api/account-types     → Types
//	GET    /api/state             → State
//	DELETE /api/state/error       → ClearError
//	POST   /api/reload            → Reload
//
// Requests carrying a body must be application/json.
func NewRouter(accountHandler *AccountHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountHandler.List)
			r.Post("/", accountHandler.Create)
			r.Delete("/", accountHandler.Clear)
			r.Get("/{id}", accountHandler.Get)
			r.Patch("/{id}", accountHandler.Update)
			r.Delete("/{id}", accountHandler.Delete)
		})
		r.Get("/account-types", accountHandler.Types)
		r.Get("/state", accountHandler.State)
		r.Delete("/state/error", accountHandler.ClearError)
		r.Post("/reload", accountHandler.Reload)
	})

	return r
}
