package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/doctor"
	"github.com/medibook/medibook/internal/domain/patient"
)

// Appointment maps to the appointment table. The patient and doctor
// snapshots are denormalized copies captured at booking time so the record
// keeps its historical details even if the source entities later change.
type Appointment struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	PatientID       uuid.UUID        `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID        `db:"doctor_id" json:"doctor_id"`
	SlotDate        string           `db:"slot_date" json:"slot_date"`
	SlotTime        string           `db:"slot_time" json:"slot_time"`
	Amount          int              `db:"amount" json:"amount"`
	Cancelled       bool             `db:"cancelled" json:"cancelled"`
	IsCompleted     bool             `db:"is_completed" json:"is_completed"`
	Payment         bool             `db:"payment" json:"payment"`
	PatientSnapshot patient.Snapshot `db:"patient_snapshot" json:"patient_snapshot"`
	DoctorSnapshot  doctor.Snapshot  `db:"doctor_snapshot" json:"doctor_snapshot"`
	BookedAt        time.Time        `db:"booked_at" json:"booked_at"`
}

// Active reports whether the appointment still occupies its slot: neither
// cancelled nor completed.
func (a *Appointment) Active() bool {
	return !a.Cancelled && !a.IsCompleted
}

// Actor identifies who is performing a role-gated appointment operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}
