package stats

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibook/medibook/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) AdminCounts(ctx context.Context) (*AdminCounts, error) {
	var c AdminCounts
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM doctor),
			(SELECT COUNT(*) FROM patient),
			(SELECT COUNT(*) FROM appointment),
			(SELECT COUNT(*) FROM appointment WHERE is_completed),
			(SELECT COALESCE(SUM(amount), 0) FROM appointment WHERE is_completed)`).
		Scan(&c.Doctors, &c.Patients, &c.Appointments, &c.CompletedAppointments, &c.Earnings)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) DoctorCounts(ctx context.Context, doctorID uuid.UUID) (*DoctorCounts, error) {
	var c DoctorCounts
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_completed),
			COUNT(DISTINCT patient_id),
			COALESCE(SUM(amount) FILTER (WHERE is_completed), 0)
		FROM appointment WHERE doctor_id = $1`, doctorID).
		Scan(&c.Appointments, &c.CompletedAppointments, &c.Patients, &c.Earnings)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
