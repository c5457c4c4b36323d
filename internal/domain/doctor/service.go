package doctor

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/platform/auth"
)

// ActiveAppointmentCounter reports how many active (not cancelled, not
// completed) appointments reference a doctor. Implemented by the appointment
// repository and wired in at startup.
type ActiveAppointmentCounter interface {
	CountActiveByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
}

// Tx runs fn atomically. In production this is db.WithTx over the connection
// pool, which lets fn span the doctor and appointment repositories in one
// transaction.
type Tx func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo         Repository
	appointments ActiveAppointmentCounter
	tx           Tx
	signingKey   []byte
}

func NewService(repo Repository, appointments ActiveAppointmentCounter, tx Tx, signingKey []byte) *Service {
	return &Service{repo: repo, appointments: appointments, tx: tx, signingKey: signingKey}
}

// CreateInput carries the admin-supplied fields for a new doctor.
type CreateInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Speciality   string `json:"speciality"`
	Degree       string `json:"degree"`
	Experience   string `json:"experience"`
	About        string `json:"about"`
	Fees         int    `json:"fees"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	ImageURL     string `json:"image_url"`
}

// Create registers a new doctor. Admin only; the handler enforces the role.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Doctor, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Speciality == "" ||
		in.Degree == "" || in.Experience == "" || in.About == "" || in.Fees <= 0 ||
		in.AddressLine1 == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	d := &Doctor{
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		Speciality:   in.Speciality,
		Degree:       in.Degree,
		Experience:   in.Experience,
		About:        in.About,
		Fees:         in.Fees,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		ImageURL:     in.ImageURL,
		Available:    true,
		SlotsBooked:  SlotLedger{},
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Login verifies credentials and mints a doctor-role token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Doctor, error) {
	if email == "" || password == "" {
		return "", nil, ErrMissingFields
	}

	d, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(d.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.signingKey, d.ID.String(), auth.RoleDoctor)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ChangeAvailability flips the available toggle.
func (s *Service) ChangeAvailability(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Available = !d.Available
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateProfileInput carries the fields a doctor may edit about themselves.
type UpdateProfileInput struct {
	Fees         int    `json:"fees"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	About        string `json:"about"`
	Available    bool   `json:"available"`
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*Doctor, error) {
	if in.Fees <= 0 || in.AddressLine1 == "" {
		return nil, ErrMissingFields
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Fees = in.Fees
	d.AddressLine1 = in.AddressLine1
	d.AddressLine2 = in.AddressLine2
	if in.About != "" {
		d.About = in.About
	}
	d.Available = in.Available

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// BookedSlots returns the slot ledger for the booking calendar.
func (s *Service) BookedSlots(ctx context.Context, id uuid.UUID) (SlotLedger, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.SlotsBooked, nil
}

// Delete removes a doctor. Refused while active appointments reference the
// doctor; cancelled and completed history rows cascade at the storage layer.
// Guard and delete run in one transaction behind the doctor's row lock, so a
// booking cannot land between the count and the removal.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Lock(ctx, id); err != nil {
			return err
		}

		active, err := s.appointments.CountActiveByDoctor(ctx, id)
		if err != nil {
			return fmt.Errorf("count active appointments: %w", err)
		}
		if active > 0 {
			return ErrHasActiveAppointments
		}

		return s.repo.Delete(ctx, id)
	})
}
