package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription maps to the prescription table. The document itself lives in
// the blob store; the row records where it is and who it belongs to.
type Prescription struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DoctorName    string    `db:"doctor_name" json:"doctor_name"`
	BlobID        string    `db:"blob_id" json:"-"`
	FileName      string    `db:"file_name" json:"file_name"`
	FileSize      int64     `db:"file_size" json:"file_size"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// DoctorPrescriptions is the patient list view: one entry per doctor with
// that doctor's prescriptions, newest first.
type DoctorPrescriptions struct {
	DoctorID      uuid.UUID       `json:"doctor_id"`
	DoctorName    string          `json:"doctor_name"`
	Prescriptions []*Prescription `json:"prescriptions"`
}

// GroupByDoctor buckets a flat prescription list per doctor, keeping the
// input order within each bucket. Buckets appear in the order their doctor
// first shows up.
func GroupByDoctor(prescriptions []*Prescription) []DoctorPrescriptions {
	byDoctor := make(map[uuid.UUID]int)
	var groups []DoctorPrescriptions
	for _, p := range prescriptions {
		idx, seen := byDoctor[p.DoctorID]
		if !seen {
			idx = len(groups)
			byDoctor[p.DoctorID] = idx
			groups = append(groups, DoctorPrescriptions{
				DoctorID:   p.DoctorID,
				DoctorName: p.DoctorName,
			})
		}
		groups[idx].Prescriptions = append(groups[idx].Prescriptions, p)
	}
	return groups
}
