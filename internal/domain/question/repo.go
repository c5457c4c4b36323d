package question

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for questions. List methods return
// flat question lists; thread assembly happens at read time in the service.
type Repository interface {
	Create(ctx context.Context, q *Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*Question, error)
	Update(ctx context.Context, q *Question) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Question, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Question, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Question, error)
}
