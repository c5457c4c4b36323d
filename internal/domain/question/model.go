package question

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Question maps to the question table. A question either starts a thread or
// follows up on one; nesting is capped at one level, so ThreadID always
// points at a thread root.
type Question struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	AppointmentID    uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID         uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Question         string     `db:"question" json:"question"`
	Answer           string     `db:"answer" json:"answer,omitempty"`
	IsAnswered       bool       `db:"is_answered" json:"is_answered"`
	IsFollowUp       bool       `db:"is_follow_up" json:"is_follow_up"`
	ParentQuestionID *uuid.UUID `db:"parent_question_id" json:"parent_question_id,omitempty"`
	ThreadID         *uuid.UUID `db:"thread_id" json:"thread_id,omitempty"`
	AskedAt          time.Time  `db:"asked_at" json:"asked_at"`
	AnsweredAt       *time.Time `db:"answered_at" json:"answered_at,omitempty"`
}

// threadKey is the grouping key: the stamped thread id for follow-ups, the
// question's own id for roots.
func (q *Question) threadKey() uuid.UUID {
	if q.ThreadID != nil {
		return *q.ThreadID
	}
	return q.ID
}

// lastActivity is the later of ask time and answer time.
func (q *Question) lastActivity() time.Time {
	if q.AnsweredAt != nil && q.AnsweredAt.After(q.AskedAt) {
		return *q.AnsweredAt
	}
	return q.AskedAt
}

// Thread is a root question plus its follow-ups in ask order.
type Thread struct {
	ThreadID     uuid.UUID   `json:"thread_id"`
	IsAnswered   bool        `json:"is_answered"`
	LastActivity time.Time   `json:"last_activity"`
	Questions    []*Question `json:"questions"`
}

// BuildThreads groups a flat question list into threads. Threads are ordered
// by most recent activity, newest first; within a thread questions are in
// ask order.
func BuildThreads(questions []*Question) []Thread {
	byKey := make(map[uuid.UUID][]*Question)
	var order []uuid.UUID
	for _, q := range questions {
		key := q.threadKey()
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], q)
	}

	threads := make([]Thread, 0, len(order))
	for _, key := range order {
		group := byKey[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].AskedAt.Before(group[j].AskedAt)
		})

		t := Thread{ThreadID: key, Questions: group}
		for _, q := range group {
			if q.IsAnswered {
				t.IsAnswered = true
			}
			if act := q.lastActivity(); act.After(t.LastActivity) {
				t.LastActivity = act
			}
		}
		threads = append(threads, t)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastActivity.After(threads[j].LastActivity)
	})
	return threads
}

// AppointmentThreads is the doctor-inbox view: one entry per appointment
// with that appointment's threads and an unanswered marker.
type AppointmentThreads struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Threads       []Thread  `json:"threads"`
	HasUnanswered bool      `json:"has_unanswered"`
}

// GroupByAppointment builds per-appointment thread groups ordered by most
// recent activity, newest first.
func GroupByAppointment(questions []*Question) []AppointmentThreads {
	byAppt := make(map[uuid.UUID][]*Question)
	var order []uuid.UUID
	for _, q := range questions {
		if _, seen := byAppt[q.AppointmentID]; !seen {
			order = append(order, q.AppointmentID)
		}
		byAppt[q.AppointmentID] = append(byAppt[q.AppointmentID], q)
	}

	groups := make([]AppointmentThreads, 0, len(order))
	for _, apptID := range order {
		g := AppointmentThreads{
			AppointmentID: apptID,
			Threads:       BuildThreads(byAppt[apptID]),
		}
		for _, q := range byAppt[apptID] {
			if !q.IsAnswered {
				g.HasUnanswered = true
			}
		}
		groups = append(groups, g)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		var a, b time.Time
		if len(groups[i].Threads) > 0 {
			a = groups[i].Threads[0].LastActivity
		}
		if len(groups[j].Threads) > 0 {
			b = groups[j].Threads[0].LastActivity
		}
		return a.After(b)
	})
	return groups
}
