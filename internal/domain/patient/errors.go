package patient

import "errors"

var (
	ErrNotFound              = errors.New("patient not found")
	ErrEmailTaken            = errors.New("an account with this email already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingFields         = errors.New("missing required fields")
	ErrInvalidEmail          = errors.New("please enter a valid email")
	ErrWeakPassword          = errors.New("please enter a strong password of at least 8 characters")
	ErrAllergyMismatch       = errors.New("allergy list must be non-empty exactly when has_allergies is set")
	ErrHasActiveAppointments = errors.New("patient has active appointments and cannot be deleted")
)
