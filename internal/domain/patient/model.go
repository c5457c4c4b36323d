package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        string    `db:"phone" json:"phone"`
	AddressLine1 string    `db:"address_line1" json:"address_line1,omitempty"`
	AddressLine2 string    `db:"address_line2" json:"address_line2,omitempty"`
	Gender       string    `db:"gender" json:"gender,omitempty"`
	DOB          string    `db:"dob" json:"dob,omitempty"`
	ImageURL     string    `db:"image_url" json:"image_url,omitempty"`
	HasAllergies bool      `db:"has_allergies" json:"has_allergies"`
	Allergies    []string  `db:"allergies" json:"allergies"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Snapshot is the denormalized copy of a patient embedded in an appointment
// at booking time.
type Snapshot struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Gender       string    `json:"gender,omitempty"`
	DOB          string    `json:"dob,omitempty"`
	HasAllergies bool      `json:"has_allergies"`
	Allergies    []string  `json:"allergies,omitempty"`
}

func (p *Patient) Snapshot() Snapshot {
	return Snapshot{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Gender:       p.Gender,
		DOB:          p.DOB,
		HasAllergies: p.HasAllergies,
		Allergies:    p.Allergies,
	}
}
