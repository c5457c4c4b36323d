package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for appointments. Book and Cancel
// also maintain the doctor's slot ledger; implementations must apply both
// writes atomically.
type Repository interface {
	// Book inserts the appointment and appends its slot to the doctor's
	// ledger. Conflicting concurrent bookings surface as ErrSlotTaken or
	// ErrDuplicateDailyBooking from the storage-level uniqueness checks.
	Book(ctx context.Context, a *Appointment) error

	// Cancel marks the appointment cancelled and frees its slot in the
	// doctor's ledger.
	Cancel(ctx context.Context, a *Appointment) error

	// Complete marks the appointment completed. The slot stays consumed.
	Complete(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindActiveDaily returns the patient's non-cancelled appointment with
	// the doctor on slotDate, or ErrNotFound.
	FindActiveDaily(ctx context.Context, patientID, doctorID uuid.UUID, slotDate string) (*Appointment, error)

	// ExistsActiveSlot reports whether a non-cancelled appointment holds the
	// (doctor, slotDate, slotTime) triple.
	ExistsActiveSlot(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string) (bool, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error)

	CountActiveByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
	CountActiveByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}
