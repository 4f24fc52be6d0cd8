package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/docconnect/platform/internal/appointments"
	"github.com/docconnect/platform/internal/doctors"
	"github.com/docconnect/platform/internal/identity"
)

func setupMockPay(t *testing.T) (*appointments.Service, http.Handler) {
	t.Helper()
	dir := doctors.NewInMemoryDirectory()
	dir.Add(doctors.Doctor{ID: 3, Name: "Dr. Rao", Specialty: "Cardiology", Available: true})

	service := appointments.NewService(appointments.ServiceOptions{
		Repo:               appointments.NewInMemoryRepository(),
		Directory:          dir,
		DefaultTokenAmount: 99,
	})

	r := chi.NewRouter()
	NewHandler(service, nil).RegisterRoutes(r)
	return service, r
}

func seedBooking() *appointments.BookingRequest {
	docID := int64(3)
	return &appointments.BookingRequest{
		PatientID:    1,
		PatientName:  "Asha",
		PatientPhone: "9876500001",
		DoctorID:     &docID,
		Date:         "2026-09-14",
		Time:         "10:00",
	}
}

func patientRequest(body string, patientID int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/payments/mock-pay", strings.NewReader(body))
	ctx := identity.WithIdentity(context.Background(), identity.Identity{ID: patientID, Role: identity.RolePatient, Name: "Asha"})
	return req.WithContext(ctx)
}

func TestMockPay(t *testing.T) {
	service, router := setupMockPay(t)

	appt, err := service.Book(context.Background(), seedBooking())
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, patientRequest(`{"appointment_id":1}`, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Success     bool                     `json:"success"`
		Appointment appointments.Appointment `json:"appointment"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if resp.Appointment.PaymentStatus != appointments.PaymentPaid {
		t.Errorf("payment status = %q", resp.Appointment.PaymentStatus)
	}
	if !resp.Appointment.IsVideoCall || resp.Appointment.Priority != appointments.VideoPriority {
		t.Errorf("expected video upgrade, got %+v", resp.Appointment)
	}
	if resp.Appointment.TokenAmount == nil || *resp.Appointment.TokenAmount != 99 {
		t.Errorf("token amount = %v, want 99", resp.Appointment.TokenAmount)
	}
	if resp.Appointment.ID != appt.ID {
		t.Errorf("appointment id = %d, want %d", resp.Appointment.ID, appt.ID)
	}
}

func TestMockPayCustomAmount(t *testing.T) {
	service, router := setupMockPay(t)

	if _, err := service.Book(context.Background(), seedBooking()); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, patientRequest(`{"appointment_id":1,"amount":250}`, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Appointment appointments.Appointment `json:"appointment"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Appointment.TokenAmount == nil || *resp.Appointment.TokenAmount != 250 {
		t.Errorf("token amount = %v, want 250", resp.Appointment.TokenAmount)
	}
}

func TestMockPayErrors(t *testing.T) {
	service, router := setupMockPay(t)

	if _, err := service.Book(context.Background(), seedBooking()); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	// Someone else's appointment and a missing one look identical.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, patientRequest(`{"appointment_id":1}`, 2))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, patientRequest(`{"appointment_id":99}`, 1))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing appointment, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, patientRequest(`{"appointment_id":1,"amount":-10}`, 1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative amount, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/mock-pay", strings.NewReader(`{"appointment_id":1}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}
