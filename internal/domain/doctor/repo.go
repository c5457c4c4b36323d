package doctor

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for doctor records.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)

	// Update persists the doctor's profile fields. It never writes the slot
	// ledger: slots_booked belongs to the booking and cancellation
	// transactions, so a stale profile write cannot clobber concurrent
	// ledger changes.
	Update(ctx context.Context, d *Doctor) error

	// Lock takes a row lock on the doctor for the rest of the surrounding
	// transaction, the same lock booking and cancellation hold while they
	// touch the slot ledger. ErrNotFound when no such doctor exists.
	Lock(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
}
