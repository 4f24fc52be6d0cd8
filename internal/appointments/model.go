package appointments

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Appointment statuses. A booking starts pending and ends either success
// (accepted and kept) or cancelled.
const (
	StatusPending   = "pending"
	StatusSuccess   = "success"
	StatusCancelled = "cancelled"
)

// Payment statuses for the mock checkout flow.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// VideoPriority is assigned to paid video consultations so they sort ahead
// of clinic visits in the doctor's queue.
const VideoPriority = 10

// Appointment is a patient's booking with a doctor. PatientName and
// PatientPhone are a contact snapshot taken at booking time; they are never
// re-synced from the patient's profile. DoctorSpecialty is only populated on
// patient history views, where current doctor details are joined at read
// time.
type Appointment struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patient_id"`
	PatientName     string    `json:"patient_name"`
	PatientPhone    string    `json:"patient_phone"`
	DoctorID        *int64    `json:"doctor_id,omitempty"`
	DoctorName      string    `json:"doctor_name"`
	DoctorSpecialty string    `json:"doctor_specialty,omitempty"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Symptoms        string    `json:"symptoms,omitempty"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	IsVideoCall     bool      `json:"is_video_call"`
	TokenAmount     *int64    `json:"token_amount,omitempty"`
	RoomToken       *string   `json:"room_token,omitempty"`
	Priority        int       `json:"priority"`
	CreatedAt       time.Time `json:"created_at"`
}

// BookingRequest carries a new booking from the API into the store. The
// patient name and phone come from the booking form, not the session, and
// are snapshotted onto the appointment.
type BookingRequest struct {
	PatientID    int64  `json:"-"`
	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone"`
	DoctorID     *int64 `json:"doctor_id"`
	DoctorName   string `json:"doctor_name,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Symptoms     string `json:"symptoms,omitempty"`
	IsVideoCall  bool   `json:"is_video_call"`
	TokenAmount  *int64 `json:"token_amount,omitempty"`
}

// Validate checks required fields and normalizes the date in place.
func (r *BookingRequest) Validate() error {
	if r.PatientID <= 0 {
		return fmt.Errorf("%w: patient required", ErrValidation)
	}
	if strings.TrimSpace(r.PatientName) == "" {
		return fmt.Errorf("%w: patient name required", ErrValidation)
	}
	if strings.TrimSpace(r.PatientPhone) == "" {
		return fmt.Errorf("%w: patient phone required", ErrValidation)
	}
	if r.DoctorID == nil || *r.DoctorID <= 0 {
		return fmt.Errorf("%w: doctor required", ErrValidation)
	}
	if strings.TrimSpace(r.Date) == "" {
		return fmt.Errorf("%w: date required", ErrValidation)
	}
	if strings.TrimSpace(r.Time) == "" {
		return fmt.Errorf("%w: time required", ErrValidation)
	}
	if r.TokenAmount != nil && *r.TokenAmount <= 0 {
		return fmt.Errorf("%w: token amount must be positive", ErrValidation)
	}
	r.Date = NormalizeDate(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.PatientName = strings.TrimSpace(r.PatientName)
	r.PatientPhone = strings.TrimSpace(r.PatientPhone)
	r.DoctorName = strings.TrimSpace(r.DoctorName)
	return nil
}

var slashDate = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// NormalizeDate rewrites DD/MM/YYYY dates to ISO YYYY-MM-DD. Anything else
// passes through unchanged; the booking form already emits ISO dates.
func NormalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if m := slashDate.FindStringSubmatch(date); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return date
}

// NormalizeStatus maps legacy status labels used by older doctor clients
// onto the canonical set. Unknown labels return empty.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accepted", StatusSuccess:
		return StatusSuccess
	case "rejected", StatusCancelled:
		return StatusCancelled
	case StatusPending:
		return StatusPending
	default:
		return ""
	}
}

// derivePriority recomputes queue priority from the appointment's own fields.
func derivePriority(isVideoCall bool, paymentStatus string) int {
	if isVideoCall && paymentStatus == PaymentPaid {
		return VideoPriority
	}
	return 0
}
