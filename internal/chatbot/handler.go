package chatbot

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docconnect/platform/internal/doctors"
	"github.com/docconnect/platform/pkg/logging"
)

// Handler handles HTTP requests for symptom triage
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new chatbot handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the triage endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chatbot/api/symptoms", h.ProcessSymptoms)
}

type symptomsRequest struct {
	Symptoms string `json:"symptoms"`
}

// ProcessSymptoms handles POST /chatbot/api/symptoms requests
func (h *Handler) ProcessSymptoms(w http.ResponseWriter, r *http.Request) {
	var req symptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Empty input gets a soft error so the chat widget can prompt inline.
	if strings.TrimSpace(req.Symptoms) == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"error":       "Please enter your symptoms",
			"suggestions": []string{},
			"doctors":     []doctors.Doctor{},
		})
		return
	}

	result, err := h.service.Triage(r.Context(), req.Symptoms)
	if err != nil {
		h.logger.Error("triage failed", "error", err)
		http.Error(w, "failed to process symptoms", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
