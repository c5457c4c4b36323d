package prescription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/appointment"
	"github.com/medibook/medibook/internal/platform/auth"
	"github.com/medibook/medibook/internal/platform/blobstore"
)

// AppointmentSource resolves the appointment a prescription belongs to.
type AppointmentSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}

type Service struct {
	repo         Repository
	appointments AppointmentSource
	blobs        blobstore.BlobStore
}

func NewService(repo Repository, appointments AppointmentSource, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, appointments: appointments, blobs: blobs}
}

type UploadInput struct {
	AppointmentID uuid.UUID
	FileName      string
	ContentType   string
	Content       io.Reader
	Notes         string
}

// Upload stores a prescription document for a completed appointment. Only
// the appointment's doctor can upload. The document goes to the blob store
// first; if the record cannot be written afterwards the blob is removed so
// a failed upload leaves nothing behind.
func (s *Service) Upload(ctx context.Context, doctorID uuid.UUID, in UploadInput) (*Prescription, error) {
	if in.AppointmentID == uuid.Nil || in.Content == nil {
		return nil, ErrMissingFile
	}

	appt, err := s.appointments.GetByID(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, ErrUnauthorized
	}
	if !appt.IsCompleted {
		return nil, ErrAppointmentNotCompleted
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    in.FileName,
		ContentType: in.ContentType,
		UploadedBy:  doctorID.String(),
	}, in.Content)
	if err != nil {
		return nil, err
	}

	p := &Prescription{
		ID:            uuid.New(),
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		DoctorName:    appt.DoctorSnapshot.Name,
		BlobID:        meta.ID,
		FileName:      meta.FileName,
		FileSize:      meta.Size,
		Notes:         strings.TrimSpace(in.Notes),
		UploadedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if delErr := s.blobs.Delete(ctx, meta.ID); delErr != nil {
			return nil, fmt.Errorf("storing prescription record: %w (blob %s not cleaned up: %v)", err, meta.ID, delErr)
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a prescription. Only the uploading doctor can delete. The
// blob goes first; if that fails the record stays so the document remains
// reachable and the delete can be retried.
func (s *Service) Delete(ctx context.Context, doctorID uuid.UUID, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.DoctorID != doctorID {
		return ErrUnauthorized
	}

	if err := s.blobs.Delete(ctx, p.BlobID); err != nil && !errors.Is(err, blobstore.ErrBlobNotFound) {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Download streams a prescription document. Patients read their own,
// doctors what they uploaded, admins everything.
func (s *Service) Download(ctx context.Context, actor appointment.Actor, id uuid.UUID) (*Prescription, io.ReadCloser, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize(actor, p); err != nil {
		return nil, nil, err
	}

	rc, _, err := s.blobs.Download(ctx, p.BlobID)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return p, rc, nil
}

// ListForPatient returns the patient's prescriptions grouped per doctor.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]DoctorPrescriptions, error) {
	prescriptions, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return GroupByDoctor(prescriptions), nil
}

// ListForDoctor returns the doctor's uploads, newest first.
func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Prescription, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// ListByAppointment returns an appointment's prescriptions for any party to
// the appointment.
func (s *Service) ListByAppointment(ctx context.Context, actor appointment.Actor, appointmentID uuid.UUID) ([]*Prescription, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	switch actor.Role {
	case auth.RolePatient:
		if appt.PatientID != actor.ID {
			return nil, ErrUnauthorized
		}
	case auth.RoleDoctor:
		if appt.DoctorID != actor.ID {
			return nil, ErrUnauthorized
		}
	case auth.RoleAdmin:
	default:
		return nil, ErrUnauthorized
	}
	return s.repo.ListByAppointment(ctx, appointmentID)
}

func (s *Service) authorize(actor appointment.Actor, p *Prescription) error {
	switch actor.Role {
	case auth.RolePatient:
		if p.PatientID != actor.ID {
			return ErrUnauthorized
		}
	case auth.RoleDoctor:
		if p.DoctorID != actor.ID {
			return ErrUnauthorized
		}
	case auth.RoleAdmin:
	default:
		return ErrUnauthorized
	}
	return nil
}
