package appointment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/doctor"
	"github.com/medibook/medibook/internal/domain/patient"
	"github.com/medibook/medibook/internal/platform/auth"
)

// -- mocks --

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*doctor.Doctor
}

func (m *mockDoctorRepo) Create(_ context.Context, d *doctor.Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, doctor.ErrNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) GetByEmail(_ context.Context, email string) (*doctor.Doctor, error) {
	for _, d := range m.doctors {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, doctor.ErrNotFound
}

func (m *mockDoctorRepo) Update(_ context.Context, d *doctor.Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Lock(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return doctor.ErrNotFound
	}
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, _, _ int) ([]*doctor.Doctor, int, error) {
	return nil, 0, nil
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*patient.Patient
}

func (m *mockPatientRepo) Create(_ context.Context, p *patient.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) GetByEmail(_ context.Context, email string) (*patient.Patient, error) {
	for _, p := range m.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, patient.ErrNotFound
}

func (m *mockPatientRepo) Update(_ context.Context, p *patient.Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, _, _ int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

// mockApptRepo mirrors the storage-level guarantees: Book enforces the slot
// and daily uniqueness the partial indexes provide, and Book/Cancel mutate
// the doctor's ledger as the transaction would.
type mockApptRepo struct {
	appointments map[uuid.UUID]*Appointment
	doctors      *mockDoctorRepo
}

func (m *mockApptRepo) Book(_ context.Context, a *Appointment) error {
	for _, other := range m.appointments {
		if other.Cancelled {
			continue
		}
		if other.DoctorID == a.DoctorID && other.SlotDate == a.SlotDate && other.SlotTime == a.SlotTime {
			return ErrSlotTaken
		}
		if other.PatientID == a.PatientID && other.DoctorID == a.DoctorID && other.SlotDate == a.SlotDate {
			return ErrDuplicateDailyBooking
		}
	}

	doc, ok := m.doctors.doctors[a.DoctorID]
	if !ok {
		return ErrDoctorNotFound
	}
	if !doc.SlotsBooked.Add(a.SlotDate, a.SlotTime) {
		return ErrSlotTakenLedger
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockApptRepo) Cancel(_ context.Context, a *Appointment) error {
	stored, ok := m.appointments[a.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Cancelled {
		return ErrAlreadyCancelled
	}
	stored.Cancelled = true
	a.Cancelled = true
	if doc, ok := m.doctors.doctors[a.DoctorID]; ok {
		doc.SlotsBooked.Remove(a.SlotDate, a.SlotTime)
	}
	return nil
}

func (m *mockApptRepo) Complete(_ context.Context, a *Appointment) error {
	stored, ok := m.appointments[a.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.IsCompleted {
		return ErrAlreadyCompleted
	}
	stored.IsCompleted = true
	a.IsCompleted = true
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockApptRepo) FindActiveDaily(_ context.Context, patientID, doctorID uuid.UUID, slotDate string) (*Appointment, error) {
	for _, a := range m.appointments {
		if !a.Cancelled && a.PatientID == patientID && a.DoctorID == doctorID && a.SlotDate == slotDate {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockApptRepo) ExistsActiveSlot(_ context.Context, doctorID uuid.UUID, slotDate, slotTime string) (bool, error) {
	for _, a := range m.appointments {
		if !a.Cancelled && a.DoctorID == doctorID && a.SlotDate == slotDate && a.SlotTime == slotTime {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApptRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockApptRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockApptRepo) ListAll(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *mockApptRepo) CountActiveByDoctor(_ context.Context, doctorID uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.Active() {
			n++
		}
	}
	return n, nil
}

func (m *mockApptRepo) CountActiveByPatient(_ context.Context, patientID uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.appointments {
		if a.PatientID == patientID && a.Active() {
			n++
		}
	}
	return n, nil
}

// -- fixtures --

type fixture struct {
	svc      *Service
	doctors  *mockDoctorRepo
	patients *mockPatientRepo
	appts    *mockApptRepo
	doc      *doctor.Doctor
	pat      *patient.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	doctors := &mockDoctorRepo{doctors: make(map[uuid.UUID]*doctor.Doctor)}
	patients := &mockPatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
	appts := &mockApptRepo{appointments: make(map[uuid.UUID]*Appointment), doctors: doctors}

	doc := &doctor.Doctor{
		Name:        "Dr. Richard James",
		Email:       "richard@medibook.dev",
		Speciality:  "General physician",
		Fees:        50,
		Available:   true,
		SlotsBooked: doctor.SlotLedger{},
	}
	doctors.Create(context.Background(), doc)

	pat := &patient.Patient{
		Name:  "Ravi Kumar",
		Email: "ravi@example.com",
		Phone: "9876543210",
	}
	patients.Create(context.Background(), pat)

	return &fixture{
		svc:      NewService(appts, doctors, patients),
		doctors:  doctors,
		patients: patients,
		appts:    appts,
		doc:      doc,
		pat:      pat,
	}
}

// -- tests --

func TestBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}
	if a.Amount != 50 {
		t.Errorf("amount must capture the doctor's fee, got %d", a.Amount)
	}
	if a.DoctorSnapshot.Name != "Dr. Richard James" || a.PatientSnapshot.Name != "Ravi Kumar" {
		t.Error("expected denormalized snapshots")
	}
	if a.Cancelled || a.IsCompleted || a.Payment {
		t.Error("new appointments start with all flags false")
	}
	if !f.doc.SlotsBooked.Has("2024-01-01", "10:00") {
		t.Error("expected slot in the doctor's ledger")
	}
}

func TestBook_SnapshotImmuneToLaterEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	f.doc.Fees = 500
	f.doc.Name = "Dr. Renamed"

	if a.Amount != 50 || a.DoctorSnapshot.Name != "Dr. Richard James" {
		t.Error("snapshot must not track later doctor edits")
	}
}

func TestBook_MissingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, f.pat.ID, uuid.Nil, "2024-01-01", "10:00"); !errors.Is(err, ErrMissingFields) {
		t.Errorf("nil doctor: expected ErrMissingFields, got %v", err)
	}
	if _, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "", "10:00"); !errors.Is(err, ErrMissingFields) {
		t.Errorf("empty date: expected ErrMissingFields, got %v", err)
	}
	if _, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", ""); !errors.Is(err, ErrMissingFields) {
		t.Errorf("empty time: expected ErrMissingFields, got %v", err)
	}
}

func TestBook_DuplicateDailyNamesDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00"); err != nil {
		t.Fatalf("first Book() error: %v", err)
	}

	// Same doctor, same date, different time
	_, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "11:00")
	if !errors.Is(err, ErrDuplicateDailyBooking) {
		t.Fatalf("expected ErrDuplicateDailyBooking, got %v", err)
	}
	if !strings.Contains(err.Error(), "Dr. Richard James") {
		t.Errorf("error must name the conflicting doctor, got %q", err)
	}

	// A different date is fine
	if _, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-02", "11:00"); err != nil {
		t.Errorf("different date must succeed, got %v", err)
	}
}

func TestBook_DoctorChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, f.pat.ID, uuid.New(), "2024-01-01", "10:00"); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}

	f.doc.Available = false
	if _, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00"); !errors.Is(err, ErrDoctorUnavailable) {
		t.Errorf("expected ErrDoctorUnavailable, got %v", err)
	}
}

func TestBook_SlotTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &patient.Patient{Name: "Other", Email: "other@example.com"}
	f.patients.Create(ctx, other)

	if _, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00"); err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if _, err := f.svc.Book(ctx, other.ID, f.doc.ID, "2024-01-01", "10:00"); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
}

func TestBook_SlotTakenLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Ledger entry with no backing appointment row: the defense-in-depth
	// check still refuses the slot.
	f.doc.SlotsBooked.Add("2024-01-01", "10:00")

	if _, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00"); !errors.Is(err, ErrSlotTakenLedger) {
		t.Errorf("expected ErrSlotTakenLedger, got %v", err)
	}
}

func TestBook_PatientNotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Book(context.Background(), uuid.New(), f.doc.ID, "2024-01-01", "10:00"); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestCancel_FreesSlotForRebooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if err := f.svc.Cancel(ctx, a.ID, Actor{ID: f.pat.ID, Role: auth.RolePatient}); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if f.doc.SlotsBooked.Has("2024-01-01", "10:00") {
		t.Error("cancellation must remove the slot from the ledger")
	}

	other := &patient.Patient{Name: "Other", Email: "other@example.com"}
	f.patients.Create(ctx, other)
	if _, err := f.svc.Book(ctx, other.ID, f.doc.ID, "2024-01-01", "10:00"); err != nil {
		t.Errorf("freed slot must be bookable again, got %v", err)
	}
}

func TestCancel_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")

	if err := f.svc.Cancel(ctx, a.ID, Actor{ID: uuid.New(), Role: auth.RolePatient}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("another patient: expected ErrUnauthorized, got %v", err)
	}
	if err := f.svc.Cancel(ctx, a.ID, Actor{ID: uuid.New(), Role: auth.RoleDoctor}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("another doctor: expected ErrUnauthorized, got %v", err)
	}

	// Admin may cancel anything
	if err := f.svc.Cancel(ctx, a.ID, Actor{ID: uuid.New(), Role: auth.RoleAdmin}); err != nil {
		t.Errorf("admin cancel failed: %v", err)
	}
}

func TestCancel_DoctorOwnSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")

	if err := f.svc.Cancel(ctx, a.ID, Actor{ID: f.doc.ID, Role: auth.RoleDoctor}); err != nil {
		t.Fatalf("owning doctor cancel failed: %v", err)
	}
}

func TestCancel_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")
	actor := Actor{ID: f.pat.ID, Role: auth.RolePatient}

	if err := f.svc.Cancel(ctx, a.ID, actor); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if err := f.svc.Cancel(ctx, a.ID, actor); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")

	if err := f.svc.Complete(ctx, a.ID, uuid.New()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("another doctor: expected ErrUnauthorized, got %v", err)
	}

	if err := f.svc.Complete(ctx, a.ID, f.doc.ID); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	// Completion keeps the slot consumed
	if !f.doc.SlotsBooked.Has("2024-01-01", "10:00") {
		t.Error("completion must not free the ledger slot")
	}

	if err := f.svc.Complete(ctx, a.ID, f.doc.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestComplete_CancelledAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")
	f.svc.Cancel(ctx, a.ID, Actor{ID: f.pat.ID, Role: auth.RolePatient})

	if err := f.svc.Complete(ctx, a.ID, f.doc.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
}

// The full booking lifecycle: book, duplicate-daily conflict, slot conflict,
// cancel frees the slot, rebooking succeeds.
func TestBookingLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := &patient.Patient{Name: "Qadir", Email: "qadir@example.com"}
	f.patients.Create(ctx, q)

	a, err := f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "10:00")
	if err != nil {
		t.Fatalf("initial booking failed: %v", err)
	}
	if !f.doc.SlotsBooked.Has("2024-01-01", "10:00") {
		t.Fatal("ledger must contain 10:00 under 2024-01-01")
	}

	_, err = f.svc.Book(ctx, f.pat.ID, f.doc.ID, "2024-01-01", "11:00")
	if !errors.Is(err, ErrDuplicateDailyBooking) || !strings.Contains(err.Error(), f.doc.Name) {
		t.Fatalf("second same-day booking: expected duplicate-daily naming %s, got %v", f.doc.Name, err)
	}

	if _, err := f.svc.Book(ctx, q.ID, f.doc.ID, "2024-01-01", "10:00"); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("conflicting booking: expected ErrSlotTaken, got %v", err)
	}

	if err := f.svc.Cancel(ctx, a.ID, Actor{ID: f.pat.ID, Role: auth.RolePatient}); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if f.doc.SlotsBooked.Has("2024-01-01", "10:00") {
		t.Fatal("ledger must no longer contain 10:00")
	}

	if _, err := f.svc.Book(ctx, q.ID, f.doc.ID, "2024-01-01", "10:00"); err != nil {
		t.Fatalf("rebooking the freed slot failed: %v", err)
	}
}
