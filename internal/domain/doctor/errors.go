package doctor

import "errors"

var (
	ErrNotFound               = errors.New("doctor not found")
	ErrEmailTaken             = errors.New("a doctor with this email already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrMissingFields          = errors.New("missing required fields")
	ErrInvalidEmail           = errors.New("please enter a valid email")
	ErrWeakPassword           = errors.New("please enter a strong password of at least 8 characters")
	ErrHasActiveAppointments  = errors.New("doctor has active appointments and cannot be deleted")
)
