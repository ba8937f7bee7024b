// Package server assembles the HTTP surface: the chi router, the
// middleware chain, and the adapters between the handlers and the
// domain services.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"biblioteca/internal/catalog"
	"biblioteca/internal/httpapi"
	"biblioteca/internal/membership"
)

// New builds the full API router on top of the two services.
func New(members membership.Service, items catalog.Service) http.Handler {
	memberHandler := membership.NewHandler(members)

	// The catalog handlers gate operations by role but know nothing
	// about sessions; the membership service resolves the actor.
	itemHandler := catalog.NewHandler(items, func(r *http.Request) (*catalog.Actor, error) {
		user, err := members.ValidateToken(r.Context(), httpapi.BearerToken(r))
		if err != nil {
			return nil, err
		}
		return &catalog.Actor{ID: user.ID, Email: user.Email, Role: user.Role}, nil
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Mount("/api/auth", memberHandler.AuthRoutes())
	r.Mount("/api/users", memberHandler.UserRoutes())
	r.Mount("/api/items", itemHandler.Routes())
	r.Mount("/api/stats", itemHandler.StatsRoutes())

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}
