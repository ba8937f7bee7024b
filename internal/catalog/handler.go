// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biblioteca/internal/apperr"
	"biblioteca/internal/authz"
	"biblioteca/internal/httpapi"
)

// Actor identifies the authenticated caller for permission checks.
type Actor struct {
	ID    string
	Email string
	Role  authz.Role
}

// AuthFunc resolves the acting user from a request. The server wires it
// to the membership service's token validation.
type AuthFunc func(r *http.Request) (*Actor, error)

type Handler struct {
	service Service
	auth    AuthFunc
}

func NewHandler(service Service, auth AuthFunc) *Handler {
	return &Handler{service: service, auth: auth}
}

// Routes returns the item router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleListItems)
	r.Post("/", h.handleAddItem)
	r.Get("/{code}", h.handleGetItem)
	r.Delete("/{code}", h.handleRemoveItem)
	r.Post("/{code}/lend", h.handleLendItem)
	r.Post("/{code}/return", h.handleReturnItem)
	return r
}

// StatsRoutes returns the reporting router.
func (h *Handler) StatsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleStatistics)
	return r
}

// require resolves the actor and checks that their role holds at least
// one of the given permissions.
func (h *Handler) require(r *http.Request, perms ...authz.Permission) (*Actor, error) {
	actor, err := h.auth(r)
	if err != nil {
		return nil, err
	}
	for _, perm := range perms {
		if authz.HasPermission(actor.Role, perm) {
			return actor, nil
		}
	}
	return nil, apperr.PermissionDenied("you do not have permission for this operation")
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	if _, err := h.require(r, authz.PermListItems); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var (
		items []*Item
		err   error
	)
	if kindParam := r.URL.Query().Get("kind"); kindParam != "" {
		kind, ok := ParseKind(kindParam)
		if !ok {
			httpapi.WriteError(w, apperr.Validation("kind", "must be one of BOOK, PERIODICAL, RECORDING"))
			return
		}
		items, err = h.service.ListByKind(r.Context(), kind)
	} else {
		switch r.URL.Query().Get("filter") {
		case "", "all":
			items, err = h.service.ListAll(r.Context())
		case "available":
			items, err = h.service.ListAvailable(r.Context())
		case "borrowed":
			items, err = h.service.ListBorrowed(r.Context())
		default:
			httpapi.WriteError(w, apperr.Validation("filter", "must be one of all, available, borrowed"))
			return
		}
	}
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, items, "")
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.require(r, authz.PermCreateItem); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	var spec ItemSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		httpapi.WriteError(w, apperr.Validation("body", "must be valid JSON"))
		return
	}

	item, err := h.service.AddItem(r.Context(), spec)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusCreated, item, "item added")
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.require(r, authz.PermListItems); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, item, "")
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.require(r, authz.PermDeleteItem); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	removed, err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, map[string]bool{"removed": removed}, "")
}

func (h *Handler) handleLendItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.require(r, authz.PermLendAnyItem, authz.PermLendOwnItem); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	item, err := h.service.LendItem(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, item, "item lent")
}

func (h *Handler) handleReturnItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.require(r, authz.PermReturnAnyItem, authz.PermReturnOwnItem); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	item, err := h.service.ReturnItem(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, item, "item returned")
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if _, err := h.require(r, authz.PermViewStatistics); err != nil {
		httpapi.WriteError(w, err)
		return
	}

	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	httpapi.WriteSuccess(w, http.StatusOK, stats, "")
}
