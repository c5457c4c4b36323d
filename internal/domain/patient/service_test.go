package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return ErrEmailTaken
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var all []*Patient
	for _, p := range m.patients {
		all = append(all, p)
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type mockCounter struct {
	counts map[uuid.UUID]int
}

func (m *mockCounter) CountActiveByPatient(_ context.Context, patientID uuid.UUID) (int, error) {
	return m.counts[patientID], nil
}

var testKey = []byte("test-signing-key")

func newTestService() (*Service, *mockRepo, *mockCounter) {
	repo := newMockRepo()
	counter := &mockCounter{counts: make(map[uuid.UUID]int)}
	return NewService(repo, counter, testKey), repo, counter
}

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService()

	token, p, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ravi Kumar",
		Email:    "Ravi@Example.com",
		Password: "long-enough-password",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if token == "" {
		t.Error("expected a token on registration")
	}
	if p.Email != "ravi@example.com" {
		t.Errorf("email must be lowercased, got %s", p.Email)
	}
	if p.PasswordHash == "long-enough-password" {
		t.Error("password must be hashed")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name    string
		in      RegisterInput
		wantErr error
	}{
		{"missing name", RegisterInput{Email: "a@b.com", Password: "long-password"}, ErrMissingFields},
		{"missing email", RegisterInput{Name: "A", Password: "long-password"}, ErrMissingFields},
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "long-password"}, ErrInvalidEmail},
		{"weak password", RegisterInput{Name: "A", Email: "a@b.com", Password: "short"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Register(ctx, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	in := RegisterInput{Name: "A", Email: "a@b.com", Password: "long-password"}
	if _, _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	if _, _, err := svc.Register(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, created, err := svc.Register(ctx, RegisterInput{
		Name: "A", Email: "a@b.com", Password: "long-password",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	token, p, err := svc.Login(ctx, "a@b.com", "long-password")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token == "" || p.ID != created.ID {
		t.Error("expected token and matching patient")
	}

	if _, _, err := svc.Login(ctx, "a@b.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func validProfile() UpdateProfileInput {
	return UpdateProfileInput{
		Name:   "Ravi Kumar",
		Phone:  "9876543210",
		Gender: "male",
		DOB:    "1990-04-12",
	}
}

func TestUpdateProfile_AllergyInvariant(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, p, _ := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.com", Password: "long-password"})

	// Flag set without a list
	in := validProfile()
	in.HasAllergies = true
	if _, err := svc.UpdateProfile(ctx, p.ID, in); !errors.Is(err, ErrAllergyMismatch) {
		t.Errorf("flag without list: expected ErrAllergyMismatch, got %v", err)
	}

	// List without the flag
	in = validProfile()
	in.Allergies = []string{"penicillin"}
	if _, err := svc.UpdateProfile(ctx, p.ID, in); !errors.Is(err, ErrAllergyMismatch) {
		t.Errorf("list without flag: expected ErrAllergyMismatch, got %v", err)
	}

	// Blank entries do not count as allergies
	in = validProfile()
	in.HasAllergies = true
	in.Allergies = []string{"  "}
	if _, err := svc.UpdateProfile(ctx, p.ID, in); !errors.Is(err, ErrAllergyMismatch) {
		t.Errorf("blank entries: expected ErrAllergyMismatch, got %v", err)
	}

	// Consistent pair succeeds
	in = validProfile()
	in.HasAllergies = true
	in.Allergies = []string{"penicillin", "latex"}
	got, err := svc.UpdateProfile(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if !got.HasAllergies || len(got.Allergies) != 2 {
		t.Errorf("allergy state not saved: %+v", got)
	}
}

func TestUpdateProfile_RequiredFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, p, _ := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.com", Password: "long-password"})

	in := validProfile()
	in.Phone = ""
	if _, err := svc.UpdateProfile(ctx, p.ID, in); !errors.Is(err, ErrMissingFields) {
		t.Errorf("expected ErrMissingFields, got %v", err)
	}
}

func TestDelete_GuardedByActiveAppointments(t *testing.T) {
	svc, repo, counter := newTestService()
	ctx := context.Background()

	_, p, _ := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.com", Password: "long-password"})
	counter.counts[p.ID] = 1

	if err := svc.Delete(ctx, p.ID); !errors.Is(err, ErrHasActiveAppointments) {
		t.Fatalf("expected ErrHasActiveAppointments, got %v", err)
	}

	counter.counts[p.ID] = 0
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok := repo.patients[p.ID]; ok {
		t.Error("expected patient removed")
	}
}
