package notifications

import (
	"encoding/json"
	"time"
)

// Notification is a persistent inbox entry for a doctor.
type Notification struct {
	ID            int64           `json:"id"`
	DoctorID      int64           `json:"doctor_id"`
	AppointmentID *int64          `json:"appointment_id,omitempty"`
	Message       string          `json:"message"`
	Payload       json.RawMessage `json:"payload"`
	Read          bool            `json:"read"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreateRequest carries a new notification into the store.
type CreateRequest struct {
	DoctorID      int64
	AppointmentID *int64
	Message       string
	Payload       any
}
