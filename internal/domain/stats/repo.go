package stats

import (
	"context"

	"github.com/google/uuid"
)

// AdminCounts are the platform-wide aggregates. Earnings sum the amounts of
// completed appointments; cancelled bookings never count.
type AdminCounts struct {
	Doctors               int
	Patients              int
	Appointments          int
	CompletedAppointments int
	Earnings              int
}

// DoctorCounts are the per-doctor aggregates. Patients counts distinct
// patients across the doctor's appointments.
type DoctorCounts struct {
	Appointments          int
	CompletedAppointments int
	Patients              int
	Earnings              int
}

type Repository interface {
	AdminCounts(ctx context.Context) (*AdminCounts, error)
	DoctorCounts(ctx context.Context, doctorID uuid.UUID) (*DoctorCounts, error)
}
