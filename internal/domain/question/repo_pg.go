package question

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const questionCols = `id, appointment_id, patient_id, doctor_id, question, answer,
	is_answered, is_follow_up, parent_question_id, thread_id, asked_at, answered_at`

func scanQuestion(row pgx.Row) (*Question, error) {
	var q Question
	var answer *string
	err := row.Scan(&q.ID, &q.AppointmentID, &q.PatientID, &q.DoctorID,
		&q.Question, &answer, &q.IsAnswered, &q.IsFollowUp,
		&q.ParentQuestionID, &q.ThreadID, &q.AskedAt, &q.AnsweredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if answer != nil {
		q.Answer = *answer
	}
	return &q, nil
}

func (r *repoPG) Create(ctx context.Context, q *Question) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO question (id, appointment_id, patient_id, doctor_id, question,
			is_follow_up, parent_question_id, thread_id, asked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		q.ID, q.AppointmentID, q.PatientID, q.DoctorID, q.Question,
		q.IsFollowUp, q.ParentQuestionID, q.ThreadID, q.AskedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Question, error) {
	return scanQuestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+questionCols+` FROM question WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, q *Question) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE question SET answer = $2, is_answered = $3, answered_at = $4
		WHERE id = $1`,
		q.ID, q.Answer, q.IsAnswered, q.AnsweredAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Question, error) {
	return r.list(ctx, `appointment_id = $1`, appointmentID)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Question, error) {
	return r.list(ctx, `patient_id = $1`, patientID)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Question, error) {
	return r.list(ctx, `doctor_id = $1`, doctorID)
}

func (r *repoPG) list(ctx context.Context, where string, arg interface{}) ([]*Question, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+questionCols+` FROM question WHERE `+where+` ORDER BY asked_at ASC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
