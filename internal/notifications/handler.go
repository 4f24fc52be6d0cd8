package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/docconnect/platform/internal/doctors"
	"github.com/docconnect/platform/internal/identity"
	"github.com/docconnect/platform/pkg/logging"
)

// Handler handles HTTP requests for the doctor notification inbox
type Handler struct {
	inbox     Inbox
	directory doctors.Directory
	logger    *logging.Logger
}

// NewHandler creates a new notifications handler
func NewHandler(inbox Inbox, directory doctors.Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{inbox: inbox, directory: directory, logger: logger}
}

// RegisterRoutes mounts the inbox endpoints. Callers gate the subtree with
// the doctor role middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/doctor/api/notifications", h.List)
	r.Post("/doctor/api/notifications/{id}/read", h.MarkRead)
}

// List handles GET /doctor/api/notifications requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.resolveDoctor(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "1"
	items, err := h.inbox.ListForDoctor(r.Context(), doc.ID, unreadOnly)
	if err != nil {
		h.logger.Error("notification list failed", "doctor_id", doc.ID, "error", err)
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []Notification{}
	}

	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": items,
		"unread_count":  unread,
	})
}

// MarkRead handles POST /doctor/api/notifications/{id}/read requests
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.resolveDoctor(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	updated, err := h.inbox.MarkRead(r.Context(), doc.ID, id)
	if err != nil {
		h.logger.Error("notification mark read failed", "doctor_id", doc.ID, "id", id, "error", err)
		http.Error(w, "failed to update notification", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": updated})
}

func (h *Handler) resolveDoctor(w http.ResponseWriter, r *http.Request) (*doctors.Doctor, bool) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return nil, false
	}
	doc, err := h.directory.ResolveForIdentity(r.Context(), ident.ID, ident.Name)
	if err != nil {
		if errors.Is(err, doctors.ErrDoctorNotFound) {
			http.Error(w, "no doctor profile for user", http.StatusForbidden)
			return nil, false
		}
		h.logger.Error("doctor resolution failed", "user_id", ident.ID, "error", err)
		http.Error(w, "failed to resolve doctor", http.StatusInternalServerError)
		return nil, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
