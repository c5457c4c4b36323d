package patient

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/platform/auth"
)

// ActiveAppointmentCounter reports how many active (not cancelled, not
// completed) appointments reference a patient. Implemented by the appointment
// repository and wired in at startup.
type ActiveAppointmentCounter interface {
	CountActiveByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}

type Service struct {
	repo         Repository
	appointments ActiveAppointmentCounter
	signingKey   []byte
}

func NewService(repo Repository, appointments ActiveAppointmentCounter, signingKey []byte) *Service {
	return &Service{repo: repo, appointments: appointments, signingKey: signingKey}
}

// RegisterInput carries the self-registration fields.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Register creates a patient account and returns a logged-in token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, *Patient, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return "", nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return "", nil, ErrInvalidEmail
	}
	if len(in.Password) < auth.MinPasswordLength {
		return "", nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Patient{
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		Phone:        in.Phone,
		Allergies:    []string{},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return "", nil, err
	}

	token, err := auth.IssueToken(s.signingKey, p.ID.String(), auth.RolePatient)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, p, nil
}

// Login verifies credentials and mints a patient-role token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Patient, error) {
	if email == "" || password == "" {
		return "", nil, ErrMissingFields
	}

	p, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(p.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.signingKey, p.ID.String(), auth.RolePatient)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateProfileInput carries the fields a patient may edit about themselves.
type UpdateProfileInput struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	AddressLine1 string   `json:"address_line1"`
	AddressLine2 string   `json:"address_line2"`
	Gender       string   `json:"gender"`
	DOB          string   `json:"dob"`
	ImageURL     string   `json:"image_url"`
	HasAllergies bool     `json:"has_allergies"`
	Allergies    []string `json:"allergies"`
}

// UpdateProfile applies profile edits. The allergy flag and list must agree:
// has_allergies set exactly when the list is non-empty.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*Patient, error) {
	if in.Name == "" || in.Phone == "" || in.Gender == "" || in.DOB == "" {
		return nil, ErrMissingFields
	}
	if err := checkAllergies(in.HasAllergies, in.Allergies); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.Phone = in.Phone
	p.AddressLine1 = in.AddressLine1
	p.AddressLine2 = in.AddressLine2
	p.Gender = in.Gender
	p.DOB = in.DOB
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	p.HasAllergies = in.HasAllergies
	p.Allergies = in.Allergies
	if p.Allergies == nil {
		p.Allergies = []string{}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func checkAllergies(hasAllergies bool, allergies []string) error {
	nonEmpty := 0
	for _, a := range allergies {
		if strings.TrimSpace(a) != "" {
			nonEmpty++
		}
	}
	if hasAllergies != (nonEmpty > 0) {
		return ErrAllergyMismatch
	}
	return nil
}

// AdminCreate registers a patient on behalf of the front desk.
func (s *Service) AdminCreate(ctx context.Context, in RegisterInput) (*Patient, error) {
	_, p, err := s.Register(ctx, in)
	return p, err
}

// Delete removes a patient. Refused while active appointments reference the
// patient; history rows cascade at the storage layer.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.appointments.CountActiveByPatient(ctx, id)
	if err != nil {
		return fmt.Errorf("count active appointments: %w", err)
	}
	if active > 0 {
		return ErrHasActiveAppointments
	}

	return s.repo.Delete(ctx, id)
}
