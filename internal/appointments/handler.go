package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docconnect/platform/internal/doctors"
	"github.com/docconnect/platform/internal/identity"
	"github.com/docconnect/platform/pkg/logging"
)

// Handler handles HTTP requests for the appointment lifecycle
type Handler struct {
	service   *Service
	directory doctors.Directory
	logger    *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, directory doctors.Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, directory: directory, logger: logger}
}

// RegisterPatientRoutes mounts the patient-facing endpoints.
func (h *Handler) RegisterPatientRoutes(r chi.Router) {
	r.Post("/api/book-appointment", h.Book)
	r.Get("/api/appointments", h.ListMine)
	r.Post("/api/appointments/cancel", h.Cancel)
}

// RegisterDoctorRoutes mounts the doctor-facing endpoints.
func (h *Handler) RegisterDoctorRoutes(r chi.Router) {
	r.Get("/doctor/api/appointments", h.ListQueue)
	r.Post("/doctor/api/update-appointment", h.UpdateStatus)
}

// Book handles POST /api/book-appointment requests
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.PatientID = ident.ID

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("booking failed", "patient_id", ident.ID, "error", err)
		http.Error(w, "failed to book appointment", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"success":        true,
		"appointment":    appt,
		"appointment_id": appt.ID,
		"need_payment":   appt.IsVideoCall,
	}
	if appt.TokenAmount != nil {
		resp["token_amount"] = *appt.TokenAmount
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListMine handles GET /api/appointments requests
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	appts, err := h.service.ListForPatient(r.Context(), ident.ID)
	if err != nil {
		h.logger.Error("patient appointment list failed", "patient_id", ident.ID, "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

type cancelRequest struct {
	AppointmentID int64 `json:"appointment_id"`
}

// Cancel handles POST /api/appointments/cancel requests
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppointmentID <= 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Cancel(r.Context(), ident.ID, req.AppointmentID); err != nil {
		if errors.Is(err, ErrCannotCancel) {
			http.Error(w, "appointment cannot be cancelled", http.StatusConflict)
			return
		}
		h.logger.Error("cancel failed", "patient_id", ident.ID, "appointment_id", req.AppointmentID, "error", err)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ListQueue handles GET /doctor/api/appointments requests
func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.resolveDoctor(w, r)
	if !ok {
		return
	}

	appts, err := h.service.ListForDoctor(r.Context(), doc.ID)
	if err != nil {
		h.logger.Error("doctor appointment list failed", "doctor_id", doc.ID, "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

type updateStatusRequest struct {
	AppointmentID int64  `json:"appointment_id"`
	Status        string `json:"status"`
}

// UpdateStatus handles POST /doctor/api/update-appointment requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.resolveDoctor(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppointmentID <= 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), doc.ID, req.AppointmentID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			http.Error(w, "invalid status", http.StatusBadRequest)
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, "appointment not found", http.StatusNotFound)
		default:
			h.logger.Error("status update failed", "doctor_id", doc.ID, "appointment_id", req.AppointmentID, "error", err)
			http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"appointment": appt,
	})
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
