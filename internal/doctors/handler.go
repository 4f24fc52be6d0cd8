package doctors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/docconnect/platform/pkg/logging"
)

// Handler handles HTTP requests for the doctor directory
type Handler struct {
	directory Directory
	logger    *logging.Logger
}

// NewHandler creates a new doctors handler
func NewHandler(directory Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{directory: directory, logger: logger}
}

// RegisterRoutes mounts the directory endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/doctors", h.List)
	r.Get("/api/doctors/facets", h.Facets)
	r.Get("/api/doctors/{id}", h.Get)
}

// List handles GET /api/doctors requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := SearchFilter{
		Query:     r.URL.Query().Get("q"),
		Specialty: r.URL.Query().Get("specialty"),
		Location:  r.URL.Query().Get("location"),
	}

	docs, err := h.directory.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("doctor search failed", "error", err)
		http.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []Doctor{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doctors": docs,
		"count":   len(docs),
	})
}

// Get handles GET /api/doctors/{id} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	doc, err := h.directory.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("doctor lookup failed", "id", id, "error", err)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Facets handles GET /api/doctors/facets requests
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.directory.Facets(r.Context())
	if err != nil {
		h.logger.Error("doctor facets failed", "error", err)
		http.Error(w, "failed to load facets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
