package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table.
type Doctor struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Speciality   string     `db:"speciality" json:"speciality"`
	Degree       string     `db:"degree" json:"degree"`
	Experience   string     `db:"experience" json:"experience"`
	About        string     `db:"about" json:"about"`
	Fees         int        `db:"fees" json:"fees"`
	AddressLine1 string     `db:"address_line1" json:"address_line1"`
	AddressLine2 string     `db:"address_line2" json:"address_line2,omitempty"`
	ImageURL     string     `db:"image_url" json:"image_url,omitempty"`
	Available    bool       `db:"available" json:"available"`
	SlotsBooked  SlotLedger `db:"slots_booked" json:"slots_booked"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// SlotLedger is the per-date list of already-booked time strings, keyed by
// a date string such as "2024-01-01". Stored as JSONB.
type SlotLedger map[string][]string

// Has reports whether slotTime is booked on slotDate.
func (l SlotLedger) Has(slotDate, slotTime string) bool {
	for _, t := range l[slotDate] {
		if t == slotTime {
			return true
		}
	}
	return false
}

// Add appends slotTime under slotDate, creating the date key if absent.
// Returns false when the slot is already present.
func (l SlotLedger) Add(slotDate, slotTime string) bool {
	if l.Has(slotDate, slotTime) {
		return false
	}
	l[slotDate] = append(l[slotDate], slotTime)
	return true
}

// Remove drops slotTime from slotDate's list if present. Empty date keys are
// deleted so the ledger does not accumulate stale dates.
func (l SlotLedger) Remove(slotDate, slotTime string) {
	times := l[slotDate]
	for i, t := range times {
		if t == slotTime {
			l[slotDate] = append(times[:i], times[i+1:]...)
			break
		}
	}
	if len(l[slotDate]) == 0 {
		delete(l, slotDate)
	}
}

// Snapshot is the denormalized copy of a doctor embedded in an appointment
// at booking time, immune to later edits of the doctor record.
type Snapshot struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Speciality   string    `json:"speciality"`
	Degree       string    `json:"degree"`
	Fees         int       `json:"fees"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
}

// Snapshot captures the doctor's current state for embedding.
func (d *Doctor) Snapshot() Snapshot {
	return Snapshot{
		ID:           d.ID,
		Name:         d.Name,
		Speciality:   d.Speciality,
		Degree:       d.Degree,
		Fees:         d.Fees,
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		ImageURL:     d.ImageURL,
	}
}

// PublicProfile is the doctor view exposed on unauthenticated listings:
// no email, no booking ledger.
type PublicProfile struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Speciality   string    `json:"speciality"`
	Degree       string    `json:"degree"`
	Experience   string    `json:"experience"`
	About        string    `json:"about"`
	Fees         int       `json:"fees"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Available    bool      `json:"available"`
}

func (d *Doctor) Public() PublicProfile {
	return PublicProfile{
		ID:           d.ID,
		Name:         d.Name,
		Speciality:   d.Speciality,
		Degree:       d.Degree,
		Experience:   d.Experience,
		About:        d.About,
		Fees:         d.Fees,
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		ImageURL:     d.ImageURL,
		Available:    d.Available,
	}
}
