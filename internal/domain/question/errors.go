package question

import "errors"

var (
	ErrNotFound                = errors.New("question not found")
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentNotCompleted = errors.New("questions can only be asked after the appointment is completed")
	ErrParentNotFound          = errors.New("parent question not found")
	ErrParentMismatch          = errors.New("parent question belongs to a different appointment")
	ErrMissingFields           = errors.New("question text is required")
	ErrAlreadyAnswered         = errors.New("question is already answered")
	ErrUnauthorized            = errors.New("unauthorized")
)
