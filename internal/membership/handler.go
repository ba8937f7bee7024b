// internal/membership/handler.go
package membership

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biblioteca/internal/apperr"
	"biblioteca/internal/httpapi"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// AuthRoutes returns the login/logout/whoami router.
func (h *Handler) AuthRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
	return r
}

// UserRoutes returns the user-administration router.
func (h *Handler) UserRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleCreateUser)
	r.Get("/", h.handleListUsers)
	r.Get("/{id}", h.handleGetUser)
	r.Put("/{id}", h.handleUpdateUser)
	r.Delete("/{id}", h.handleRemoveUser)
	r.Post("/{id}/deactivate", h.handleDeactivateUser)
	r.Post("/{id}/activate", h.handleActivateUser)
	return r
}

// actor resolves the acting user from the request's bearer token.
func (h *Handler) actor(r *http.Request) (*User, error) {
	return h.service.ValidateToken(r.Context(), httpapi.BearerToken(r))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, apperr.Validation("body", "must be valid JSON"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, result, "login successful")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), httpapi.BearerToken(r))
	httpapi.WriteSuccess(w, http.StatusOK, nil, "logout successful")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.actor(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, user.View(), "")
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var input NewUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpapi.WriteError(w, apperr.Validation("body", "must be valid JSON"))
		return
	}

	view, err := h.service.CreateUser(r.Context(), input, actor)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusCreated, view, "user created")
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	views, err := h.service.ListUsers(r.Context(), actor)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, views, "")
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	view, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, view, "")
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var patch UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpapi.WriteError(w, apperr.Validation("body", "must be valid JSON"))
		return
	}

	view, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), patch, actor)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, view, "user updated")
}

func (h *Handler) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	if err := h.service.RemoveUser(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, nil, "user removed")
}

func (h *Handler) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	if err := h.service.DeactivateUser(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, nil, "user deactivated")
}

func (h *Handler) handleActivateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	if err := h.service.ActivateUser(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, nil, "user activated")
}
