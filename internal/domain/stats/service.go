package stats

import (
	"context"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/appointment"
)

// latestAppointments is how many recent bookings the dashboards show.
const latestAppointments = 5

// AppointmentLister supplies the recent-bookings strip on the dashboards.
type AppointmentLister interface {
	ListAll(ctx context.Context, limit, offset int) ([]*appointment.Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*appointment.Appointment, int, error)
}

type Service struct {
	repo         Repository
	appointments AppointmentLister
}

func NewService(repo Repository, appointments AppointmentLister) *Service {
	return &Service{repo: repo, appointments: appointments}
}

func (s *Service) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	counts, err := s.repo.AdminCounts(ctx)
	if err != nil {
		return nil, err
	}
	latest, _, err := s.appointments.ListAll(ctx, latestAppointments, 0)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		latest = []*appointment.Appointment{}
	}
	return &AdminDashboard{
		Doctors:               counts.Doctors,
		Patients:              counts.Patients,
		Appointments:          counts.Appointments,
		CompletedAppointments: counts.CompletedAppointments,
		Earnings:              counts.Earnings,
		LatestAppointments:    latest,
	}, nil
}

func (s *Service) DoctorDashboard(ctx context.Context, doctorID uuid.UUID) (*DoctorDashboard, error) {
	counts, err := s.repo.DoctorCounts(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	latest, _, err := s.appointments.ListByDoctor(ctx, doctorID, latestAppointments, 0)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		latest = []*appointment.Appointment{}
	}
	return &DoctorDashboard{
		Appointments:          counts.Appointments,
		CompletedAppointments: counts.CompletedAppointments,
		Patients:              counts.Patients,
		Earnings:              counts.Earnings,
		LatestAppointments:    latest,
	}, nil
}
