package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docconnect/platform/internal/appointments"
	"github.com/docconnect/platform/internal/identity"
	"github.com/docconnect/platform/pkg/logging"
)

// Coordinator is the slice of the appointment service the mock checkout
// needs.
type Coordinator interface {
	ConfirmPayment(ctx context.Context, patientID, apptID int64, amount *int64) (*appointments.Appointment, error)
}

// Handler implements the mock payment flow. There is no real payment
// provider behind it; a successful call simply marks the appointment paid
// and upgrades it to a video consultation.
//
// This is demo plumbing and should be replaced before taking real money.
type Handler struct {
	coordinator Coordinator
	logger      *logging.Logger
}

// NewHandler creates a new payments handler
func NewHandler(coordinator Coordinator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{coordinator: coordinator, logger: logger}
}

// RegisterRoutes mounts the mock checkout endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/payments/mock-pay", h.MockPay)
}

type mockPayRequest struct {
	AppointmentID int64  `json:"appointment_id"`
	Amount        *int64 `json:"amount,omitempty"`
}

// MockPay handles POST /payments/mock-pay requests
func (h *Handler) MockPay(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req mockPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppointmentID <= 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.coordinator.ConfirmPayment(r.Context(), ident.ID, req.AppointmentID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			http.Error(w, "appointment not found", http.StatusNotFound)
		default:
			h.logger.Error("mock payment failed", "patient_id", ident.ID, "appointment_id", req.AppointmentID, "error", err)
			http.Error(w, "failed to process payment", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("mock payment accepted", "appointment_id", appt.ID, "patient_id", ident.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"success":     true,
		"appointment": appt,
	})
}
