package appointment

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields         = errors.New("doctor, slot date and slot time are required")
	ErrDuplicateDailyBooking = errors.New("you already have an appointment with this doctor on this date")
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrDoctorUnavailable     = errors.New("doctor is not available")
	ErrSlotTaken             = errors.New("slot is not available")
	ErrSlotTakenLedger       = errors.New("slot is already booked")
	ErrPatientNotFound       = errors.New("patient not found")
	ErrNotFound              = errors.New("appointment not found")
	ErrAlreadyCancelled      = errors.New("appointment is already cancelled")
	ErrAlreadyCompleted      = errors.New("appointment is already completed")
	ErrUnauthorized          = errors.New("unauthorized")
)

// DuplicateDailyBookingError names the doctor the caller already has a
// booking with. It matches ErrDuplicateDailyBooking under errors.Is.
type DuplicateDailyBookingError struct {
	DoctorName string
}

func (e *DuplicateDailyBookingError) Error() string {
	return fmt.Sprintf("you already have an appointment with %s on this date", e.DoctorName)
}

func (e *DuplicateDailyBookingError) Unwrap() error {
	return ErrDuplicateDailyBooking
}
