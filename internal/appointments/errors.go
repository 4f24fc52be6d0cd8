package appointments

import "errors"

var (
	// ErrValidation indicates a malformed booking request.
	ErrValidation = errors.New("appointments: invalid request")

	// ErrAppointmentNotFound indicates the appointment does not exist.
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrCannotCancel covers both a missing appointment and one that is no
	// longer pending, so callers cannot probe which appointments exist.
	ErrCannotCancel = errors.New("appointments: appointment cannot be cancelled")

	// ErrInvalidStatus indicates an unrecognized status label.
	ErrInvalidStatus = errors.New("appointments: invalid status")
)
