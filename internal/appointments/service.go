package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/docconnect/platform/internal/doctors"
	"github.com/docconnect/platform/internal/notifications"
	"github.com/docconnect/platform/internal/observability/metrics"
	"github.com/docconnect/platform/pkg/logging"
)

// Realtime event names pushed to connected doctor dashboards.
const (
	EventNew          = "appointment:new"
	EventStatusUpdate = "appointment:statusUpdate"
)

// Notifier persists doctor inbox entries.
type Notifier interface {
	Create(ctx context.Context, req *notifications.CreateRequest) (*notifications.Notification, error)
}

// Dispatcher pushes realtime events to connected clients. Delivery is
// best-effort; implementations report whether anyone was listening.
type Dispatcher interface {
	NotifyDoctor(doctorID int64, event string, payload any) bool
	Broadcast(event string, payload any) int
}

// Service coordinates the appointment lifecycle: persistence first, then
// best-effort side effects (inbox entry, realtime push). A failed side
// effect never fails the request.
type Service struct {
	repo       Repository
	directory  doctors.Directory
	notifier   Notifier
	dispatcher Dispatcher
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger

	defaultTokenAmount int64
}

// ServiceOptions configures a Service. Notifier, Dispatcher and Metrics are
// optional; a nil field disables that side effect.
type ServiceOptions struct {
	Repo               Repository
	Directory          doctors.Directory
	Notifier           Notifier
	Dispatcher         Dispatcher
	Metrics            *metrics.BookingMetrics
	Logger             *logging.Logger
	DefaultTokenAmount int64
}

// NewService wires up the lifecycle coordinator.
func NewService(opts ServiceOptions) *Service {
	if opts.Repo == nil {
		panic("appointments: repository required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.DefaultTokenAmount <= 0 {
		opts.DefaultTokenAmount = 99
	}
	return &Service{
		repo:               opts.Repo,
		directory:          opts.Directory,
		notifier:           opts.Notifier,
		dispatcher:         opts.Dispatcher,
		metrics:            opts.Metrics,
		logger:             opts.Logger,
		defaultTokenAmount: opts.DefaultTokenAmount,
	}
}

// Book creates a pending appointment and fans out to the doctor's inbox and
// realtime channel.
func (s *Service) Book(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.resolveDoctor(ctx, req); err != nil {
		return nil, err
	}

	var (
		tokenAmount *int64
		roomToken   *string
	)
	if req.IsVideoCall {
		amount := s.defaultTokenAmount
		if req.TokenAmount != nil {
			amount = *req.TokenAmount
		}
		token := newRoomToken()
		tokenAmount = &amount
		roomToken = &token
	}

	appt, err := s.repo.Create(ctx, req, tokenAmount, roomToken)
	if err != nil {
		s.metrics.ObserveBooking(bookingKind(req.IsVideoCall), "error")
		return nil, err
	}
	s.metrics.ObserveBooking(bookingKind(req.IsVideoCall), appt.Status)

	if appt.DoctorID != nil {
		s.notifyBooked(ctx, appt)
		s.pushToDoctor(*appt.DoctorID, EventNew, appt)
	}
	return appt, nil
}

// ListForPatient returns the caller's appointment history.
func (s *Service) ListForPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

// ListForDoctor returns the doctor's queue.
func (s *Service) ListForDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	return s.repo.ListForDoctor(ctx, doctorID)
}

// UpdateStatus applies a doctor's decision to one of their appointments and
// broadcasts the change. Legacy labels (accepted, rejected) are normalized.
func (s *Service) UpdateStatus(ctx context.Context, doctorID, apptID int64, rawStatus string) (*Appointment, error) {
	status := NormalizeStatus(rawStatus)
	if status == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	appt, err := s.repo.UpdateStatus(ctx, doctorID, apptID, status)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStatusUpdate(status, "doctor")
	s.broadcastStatus(appt)
	return appt, nil
}

// Cancel withdraws a patient's own pending appointment. No inbox entry and
// no realtime event: the doctor learns of the cancellation on their next
// dashboard load.
func (s *Service) Cancel(ctx context.Context, patientID, apptID int64) error {
	if err := s.repo.CancelByPatient(ctx, patientID, apptID); err != nil {
		return err
	}
	s.metrics.ObserveStatusUpdate(StatusCancelled, "patient")
	return nil
}

// ConfirmPayment records a successful mock checkout. The appointment becomes
// a paid video consultation; token amount and room token are backfilled when
// the original booking lacked them. Re-confirming is harmless.
func (s *Service) ConfirmPayment(ctx context.Context, patientID, apptID int64, amount *int64) (*Appointment, error) {
	resolved := s.defaultTokenAmount
	if amount != nil {
		if *amount <= 0 {
			return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
		}
		resolved = *amount
	}

	appt, err := s.repo.ConfirmPayment(ctx, patientID, apptID, resolved, newRoomToken())
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment confirmed",
		"appointment_id", appt.ID,
		"patient_id", patientID,
		"token_amount", appt.TokenAmount,
	)
	return appt, nil
}

// resolveDoctor snapshots the doctor's display name onto the booking and
// rejects ids with no profile behind them.
func (s *Service) resolveDoctor(ctx context.Context, req *BookingRequest) error {
	if s.directory == nil {
		return nil
	}
	doc, err := s.directory.GetByID(ctx, *req.DoctorID)
	if err != nil {
		if errors.Is(err, doctors.ErrDoctorNotFound) {
			return fmt.Errorf("%w: unknown doctor", ErrValidation)
		}
		return err
	}
	req.DoctorName = doc.Name
	return nil
}

func (s *Service) notifyBooked(ctx context.Context, appt *Appointment) {
	if s.notifier == nil {
		return
	}
	msg := fmt.Sprintf("New appointment from %s at %s on %s", appt.PatientName, appt.Time, appt.Date)
	_, err := s.notifier.Create(ctx, &notifications.CreateRequest{
		DoctorID:      *appt.DoctorID,
		AppointmentID: &appt.ID,
		Message:       msg,
		Payload: map[string]any{
			"appointment_id": appt.ID,
			"patient_name":   appt.PatientName,
			"patient_phone":  appt.PatientPhone,
			"date":           appt.Date,
			"time":           appt.Time,
			"is_video_call":  appt.IsVideoCall,
		},
	})
	if err != nil {
		s.metrics.ObserveNotificationFailure()
		s.logger.Error("doctor notification failed",
			"appointment_id", appt.ID,
			"doctor_id", *appt.DoctorID,
			"error", err,
		)
	}
}

func (s *Service) pushToDoctor(doctorID int64, event string, payload any) {
	if s.dispatcher == nil {
		return
	}
	delivered := s.dispatcher.NotifyDoctor(doctorID, event, payload)
	s.metrics.ObserveRealtimeDelivery(event, delivered)
	if !delivered {
		s.logger.Debug("realtime event dropped", "event", event, "doctor_id", doctorID)
	}
}

func (s *Service) broadcastStatus(appt *Appointment) {
	if s.dispatcher == nil {
		return
	}
	payload := map[string]any{
		"appointment_id": appt.ID,
		"status":         appt.Status,
		"doctor_name":    appt.DoctorName,
		"date":           appt.Date,
		"time":           appt.Time,
	}
	n := s.dispatcher.Broadcast(EventStatusUpdate, payload)
	s.metrics.ObserveRealtimeDelivery(EventStatusUpdate, n > 0)
}

func bookingKind(isVideoCall bool) string {
	if isVideoCall {
		return "video"
	}
	return "clinic"
}

// newRoomToken mints the identifier video-call clients use to join the
// shared room.
func newRoomToken() string {
	return "room_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
