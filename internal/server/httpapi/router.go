package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps collects what NewRouter needs. Metrics and Gatherer are
// optional.
type RouterDeps struct {
	Users    UserService
	Status   StatusInfo
	Logger   logging.Logger
	Metrics  HTTPRecorder
	Gatherer prometheus.Gatherer
}

// NewRouter builds the route table.
//
// Middleware order:
//
//	requestID → logging → recovery → (bearerAuth on protected routes)
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	h := &handler{users: deps.Users, status: deps.Status, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger, deps.Metrics))
	r.Use(recoveryMiddleware(logger))

	r.Get("/status", h.Status)
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(deps.Users, false))

		r.Get("/users/me", h.Me)
		r.Patch("/users/me", h.UpdateMe)
		r.Delete("/users/me", h.DeleteMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(deps.Users, true))

		r.Get("/secure-endpoint", h.Me)
		r.Post("/users/me/reactivate", h.Reactivate)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponseBody{Code: "NOT_FOUND", Message: "not found"})
	})

	return r
}
