package question

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/appointment"
	"github.com/medibook/medibook/internal/platform/auth"
)

// AppointmentSource resolves the appointment a question hangs off.
type AppointmentSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}

type Service struct {
	repo         Repository
	appointments AppointmentSource
}

func NewService(repo Repository, appointments AppointmentSource) *Service {
	return &Service{repo: repo, appointments: appointments}
}

type AskInput struct {
	AppointmentID    uuid.UUID  `json:"appointment_id"`
	Question         string     `json:"question"`
	ParentQuestionID *uuid.UUID `json:"parent_question_id,omitempty"`
}

// Ask records a post-visit question. Only the patient who attended the
// appointment can ask, and only once the appointment is completed. When a
// parent is given the new question joins the parent's thread as a follow-up.
func (s *Service) Ask(ctx context.Context, patientID uuid.UUID, in AskInput) (*Question, error) {
	text := strings.TrimSpace(in.Question)
	if text == "" || in.AppointmentID == uuid.Nil {
		return nil, ErrMissingFields
	}

	appt, err := s.appointments.GetByID(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, ErrUnauthorized
	}
	if !appt.IsCompleted {
		return nil, ErrAppointmentNotCompleted
	}

	q := &Question{
		ID:            uuid.New(),
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		Question:      text,
		AskedAt:       time.Now().UTC(),
	}

	if in.ParentQuestionID != nil {
		parent, err := s.repo.GetByID(ctx, *in.ParentQuestionID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.AppointmentID != appt.ID {
			return nil, ErrParentMismatch
		}
		threadID := parent.threadKey()
		q.IsFollowUp = true
		q.ParentQuestionID = &parent.ID
		q.ThreadID = &threadID
	}

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

type AnswerInput struct {
	QuestionID uuid.UUID `json:"question_id"`
	Answer     string    `json:"answer"`
}

// Answer sets the doctor's reply on a question. Only the doctor from the
// appointment can answer, and each question takes exactly one answer.
func (s *Service) Answer(ctx context.Context, doctorID uuid.UUID, in AnswerInput) (*Question, error) {
	text := strings.TrimSpace(in.Answer)
	if text == "" || in.QuestionID == uuid.Nil {
		return nil, ErrMissingFields
	}

	q, err := s.repo.GetByID(ctx, in.QuestionID)
	if err != nil {
		return nil, err
	}
	if q.DoctorID != doctorID {
		return nil, ErrUnauthorized
	}
	if q.IsAnswered {
		return nil, ErrAlreadyAnswered
	}

	now := time.Now().UTC()
	q.Answer = text
	q.IsAnswered = true
	q.AnsweredAt = &now
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ListByAppointment returns the appointment's questions grouped into
// threads. Patients see their own appointments, doctors their own schedule,
// admins everything.
func (s *Service) ListByAppointment(ctx context.Context, actor appointment.Actor, appointmentID uuid.UUID) ([]Thread, error) {
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

	questions, err := s.repo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return BuildThreads(questions), nil
}

// Thread returns the full thread containing the given question.
func (s *Service) Thread(ctx context.Context, actor appointment.Actor, questionID uuid.UUID) (*Thread, error) {
	q, err := s.repo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case auth.RolePatient:
		if q.PatientID != actor.ID {
			return nil, ErrUnauthorized
		}
	case auth.RoleDoctor:
		if q.DoctorID != actor.ID {
			return nil, ErrUnauthorized
		}
	case auth.RoleAdmin:
	default:
		return nil, ErrUnauthorized
	}

	questions, err := s.repo.ListByAppointment(ctx, q.AppointmentID)
	if err != nil {
		return nil, err
	}
	key := q.threadKey()
	for _, t := range BuildThreads(questions) {
		if t.ThreadID == key {
			thread := t
			return &thread, nil
		}
	}
	return nil, ErrNotFound
}

// ListForPatient returns all of a patient's questions grouped into threads
// across appointments.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]Thread, error) {
	questions, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return BuildThreads(questions), nil
}

// Inbox returns the doctor's questions grouped per appointment, flagging
// appointments that still hold unanswered questions.
func (s *Service) Inbox(ctx context.Context, doctorID uuid.UUID) ([]AppointmentThreads, error) {
	questions, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return GroupByAppointment(questions), nil
}
