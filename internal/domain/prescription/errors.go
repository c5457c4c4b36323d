package prescription

import "errors"

var (
	ErrNotFound                = errors.New("prescription not found")
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentNotCompleted = errors.New("prescriptions can only be uploaded after the appointment is completed")
	ErrMissingFile             = errors.New("prescription file is required")
	ErrUnauthorized            = errors.New("unauthorized")
)
