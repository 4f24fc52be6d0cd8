package doctors

import "errors"

var (
	// ErrDoctorNotFound indicates the requested doctor does not exist.
	ErrDoctorNotFound = errors.New("doctors: doctor not found")
)
