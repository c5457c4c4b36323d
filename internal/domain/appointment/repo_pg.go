package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibook/medibook/internal/domain/doctor"
	"github.com/medibook/medibook/internal/platform/db"
)

// Names of the partial unique indexes guarding slot conflicts. A violation
// of either during insert means a concurrent booking won the race.
const (
	slotConstraint  = "appointment_doctor_slot_active_idx"
	dailyConstraint = "appointment_patient_daily_active_idx"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, slot_date, slot_time, amount,
	cancelled, is_completed, payment, patient_snapshot, doctor_snapshot, booked_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.SlotDate, &a.SlotTime,
		&a.Amount, &a.Cancelled, &a.IsCompleted, &a.Payment,
		&a.PatientSnapshot, &a.DoctorSnapshot, &a.BookedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Book inserts the appointment row and appends the slot to the doctor's
// ledger in one transaction. The partial unique indexes close the window
// between the service's existence checks and the insert: a concurrent
// booking for the same slot or the same patient/doctor/date loses here.
func (r *repoPG) Book(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, slot_date, slot_time,
			amount, cancelled, is_completed, payment, patient_snapshot, doctor_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, false, false, false, $7, $8)`,
		a.ID, a.PatientID, a.DoctorID, a.SlotDate, a.SlotTime, a.Amount,
		a.PatientSnapshot, a.DoctorSnapshot)
	if err != nil {
		return mapBookingConflict(err)
	}

	ledger, err := lockLedger(ctx, tx, a.DoctorID)
	if err != nil {
		return err
	}
	if !ledger.Add(a.SlotDate, a.SlotTime) {
		return ErrSlotTakenLedger
	}
	if err := writeLedger(ctx, tx, a.DoctorID, ledger); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *repoPG) Cancel(ctx context.Context, a *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE appointment SET cancelled = true WHERE id = $1 AND NOT cancelled`, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyCancelled
	}

	ledger, err := lockLedger(ctx, tx, a.DoctorID)
	if err != nil {
		return err
	}
	ledger.Remove(a.SlotDate, a.SlotTime)
	if err := writeLedger(ctx, tx, a.DoctorID, ledger); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	a.Cancelled = true
	return nil
}

func (r *repoPG) Complete(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET is_completed = true WHERE id = $1 AND NOT is_completed`, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyCompleted
	}
	a.IsCompleted = true
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) FindActiveDaily(ctx context.Context, patientID, doctorID uuid.UUID, slotDate string) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 AND doctor_id = $2 AND slot_date = $3 AND NOT cancelled`,
		patientID, doctorID, slotDate))
}

func (r *repoPG) ExistsActiveSlot(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE doctor_id = $1 AND slot_date = $2 AND slot_time = $3 AND NOT cancelled
		)`, doctorID, slotDate, slotTime).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id = $1`, []interface{}{doctorID}, limit, offset)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `TRUE`, nil, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM appointment WHERE %s ORDER BY booked_at DESC LIMIT %d OFFSET %d`,
		apptCols, where, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appointments []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, a)
	}
	return appointments, total, rows.Err()
}

func (r *repoPG) CountActiveByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE doctor_id = $1 AND NOT cancelled AND NOT is_completed`, doctorID).Scan(&n)
	return n, err
}

func (r *repoPG) CountActiveByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE patient_id = $1 AND NOT cancelled AND NOT is_completed`, patientID).Scan(&n)
	return n, err
}

func lockLedger(ctx context.Context, tx pgx.Tx, doctorID uuid.UUID) (doctor.SlotLedger, error) {
	var ledger doctor.SlotLedger
	err := tx.QueryRow(ctx,
		`SELECT slots_booked FROM doctor WHERE id = $1 FOR UPDATE`, doctorID).Scan(&ledger)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	if ledger == nil {
		ledger = doctor.SlotLedger{}
	}
	return ledger, nil
}

func writeLedger(ctx context.Context, tx pgx.Tx, doctorID uuid.UUID, ledger doctor.SlotLedger) error {
	_, err := tx.Exec(ctx,
		`UPDATE doctor SET slots_booked = $2, updated_at = NOW() WHERE id = $1`,
		doctorID, ledger)
	return err
}

func mapBookingConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case slotConstraint:
			return ErrSlotTaken
		case dailyConstraint:
			return ErrDuplicateDailyBooking
		}
	}
	return err
}
