package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/doctor"
	"github.com/medibook/medibook/internal/domain/patient"
	"github.com/medibook/medibook/internal/platform/auth"
)

type Service struct {
	repo     Repository
	doctors  doctor.Repository
	patients patient.Repository
}

func NewService(repo Repository, doctors doctor.Repository, patients patient.Repository) *Service {
	return &Service{repo: repo, doctors: doctors, patients: patients}
}

// Book runs the booking precondition chain in order, each failure
// short-circuiting with its own error, then creates the appointment with
// denormalized snapshots and appends the slot to the doctor's ledger. The
// repository applies the insert and the ledger append in one transaction,
// so two concurrent bookings that both pass these checks cannot both land.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, slotDate, slotTime string) (*Appointment, error) {
	if doctorID == uuid.Nil || slotDate == "" || slotTime == "" {
		return nil, ErrMissingFields
	}

	if existing, err := s.repo.FindActiveDaily(ctx, patientID, doctorID, slotDate); err == nil {
		return nil, &DuplicateDailyBookingError{DoctorName: existing.DoctorSnapshot.Name}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	doc, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctor.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	if !doc.Available {
		return nil, ErrDoctorUnavailable
	}

	taken, err := s.repo.ExistsActiveSlot(ctx, doctorID, slotDate, slotTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	if doc.SlotsBooked.Has(slotDate, slotTime) {
		return nil, ErrSlotTakenLedger
	}

	pat, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	a := &Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		SlotDate:        slotDate,
		SlotTime:        slotTime,
		Amount:          doc.Fees,
		PatientSnapshot: pat.Snapshot(),
		DoctorSnapshot:  doc.Snapshot(),
	}
	if err := s.repo.Book(ctx, a); err != nil {
		// A concurrent booking may win the race between the checks above
		// and the insert; name the doctor for the daily-conflict case.
		if errors.Is(err, ErrDuplicateDailyBooking) {
			return nil, &DuplicateDailyBookingError{DoctorName: doc.Name}
		}
		return nil, err
	}
	return a, nil
}

// Cancel marks the appointment cancelled and frees its slot. Patients may
// cancel their own appointments, doctors their own schedule's, admins any.
func (s *Service) Cancel(ctx context.Context, appointmentID uuid.UUID, actor Actor) error {
	a, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if a.Cancelled {
		return ErrAlreadyCancelled
	}

	switch actor.Role {
	case auth.RolePatient:
		if a.PatientID != actor.ID {
			return ErrUnauthorized
		}
	case auth.RoleDoctor:
		if a.DoctorID != actor.ID {
			return ErrUnauthorized
		}
	case auth.RoleAdmin:
		// unrestricted
	default:
		return ErrUnauthorized
	}

	return s.repo.Cancel(ctx, a)
}

// Complete is the one-way transition gating questions and prescriptions.
// Only the appointment's doctor may complete it; the slot stays consumed.
func (s *Service) Complete(ctx context.Context, appointmentID, doctorID uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if a.DoctorID != doctorID {
		return ErrUnauthorized
	}
	if a.Cancelled {
		return ErrAlreadyCancelled
	}
	if a.IsCompleted {
		return ErrAlreadyCompleted
	}

	return s.repo.Complete(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}
