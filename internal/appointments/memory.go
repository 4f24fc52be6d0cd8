package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/docconnect/platform/internal/doctors"
)

// InMemoryRepository keeps appointments in memory. Used by tests and local dev.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*Appointment
	nextID int64

	// directory, when set, supplies current doctor details for patient
	// history views the way the SQL store's join does.
	directory doctors.Directory

	// clock lets ordering tests control created_at.
	clock func() time.Time
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:   make(map[int64]*Appointment),
		nextID: 1,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source.
func (m *InMemoryRepository) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

// UseDirectory enables the read-time doctor join on patient listings.
func (m *InMemoryRepository) UseDirectory(d doctors.Directory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directory = d
}

// Create inserts a pending, unpaid appointment.
func (m *InMemoryRepository) Create(_ context.Context, req *BookingRequest, tokenAmount *int64, roomToken *string) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt := &Appointment{
		ID:            m.nextID,
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		PatientPhone:  req.PatientPhone,
		DoctorID:      req.DoctorID,
		DoctorName:    req.DoctorName,
		Date:          req.Date,
		Time:          req.Time,
		Symptoms:      req.Symptoms,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		IsVideoCall:   req.IsVideoCall,
		TokenAmount:   tokenAmount,
		RoomToken:     roomToken,
		Priority:      derivePriority(req.IsVideoCall, PaymentUnpaid),
		CreatedAt:     m.clock(),
	}
	m.nextID++
	m.byID[appt.ID] = appt
	copied := *appt
	return &copied, nil
}

// GetByID fetches a single appointment.
func (m *InMemoryRepository) GetByID(_ context.Context, id int64) (*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	appt, ok := m.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

// ListForPatient returns a patient's appointments, most recent visit first,
// with current doctor details overlaid.
func (m *InMemoryRepository) ListForPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Appointment
	for _, appt := range m.byID {
		if appt.PatientID != patientID {
			continue
		}
		copied := *appt
		if m.directory != nil && copied.DoctorID != nil {
			if doc, err := m.directory.GetByID(ctx, *copied.DoctorID); err == nil {
				copied.DoctorName = doc.Name
				copied.DoctorSpecialty = doc.Specialty
			}
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}

// ListForDoctor returns a doctor's queue, paid video consultations first.
func (m *InMemoryRepository) ListForDoctor(_ context.Context, doctorID int64) ([]Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Appointment
	for _, appt := range m.byID {
		if appt.DoctorID != nil && *appt.DoctorID == doctorID {
			out = append(out, *appt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}

// UpdateStatus sets a new status on an appointment owned by the doctor.
func (m *InMemoryRepository) UpdateStatus(_ context.Context, doctorID, id int64, status string) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt, ok := m.byID[id]
	if !ok || appt.DoctorID == nil || *appt.DoctorID != doctorID {
		return nil, ErrAppointmentNotFound
	}
	appt.Status = status
	appt.Priority = derivePriority(appt.IsVideoCall, appt.PaymentStatus)
	copied := *appt
	return &copied, nil
}

// CancelByPatient cancels a pending appointment owned by the patient.
func (m *InMemoryRepository) CancelByPatient(_ context.Context, patientID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt, ok := m.byID[id]
	if !ok || appt.PatientID != patientID || appt.Status != StatusPending {
		return ErrCannotCancel
	}
	appt.Status = StatusCancelled
	return nil
}

// ConfirmPayment marks an appointment paid and upgrades it to a priority
// video consultation.
func (m *InMemoryRepository) ConfirmPayment(_ context.Context, patientID, id, amount int64, roomToken string) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt, ok := m.byID[id]
	if !ok || appt.PatientID != patientID {
		return nil, ErrAppointmentNotFound
	}
	appt.PaymentStatus = PaymentPaid
	appt.IsVideoCall = true
	if appt.TokenAmount == nil {
		appt.TokenAmount = &amount
	}
	if appt.RoomToken == nil {
		appt.RoomToken = &roomToken
	}
	appt.Priority = VideoPriority
	copied := *appt
	return &copied, nil
}
