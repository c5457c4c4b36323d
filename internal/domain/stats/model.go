package stats

import "github.com/medibook/medibook/internal/domain/appointment"

// AdminDashboard is the platform-wide summary shown on the admin home page.
type AdminDashboard struct {
	Doctors               int                        `json:"doctors"`
	Patients              int                        `json:"patients"`
	Appointments          int                        `json:"appointments"`
	CompletedAppointments int                        `json:"completed_appointments"`
	Earnings              int                        `json:"earnings"`
	LatestAppointments    []*appointment.Appointment `json:"latest_appointments"`
}

// DoctorDashboard is the per-doctor summary.
type DoctorDashboard struct {
	Appointments          int                        `json:"appointments"`
	CompletedAppointments int                        `json:"completed_appointments"`
	Patients              int                        `json:"patients"`
	Earnings              int                        `json:"earnings"`
	LatestAppointments    []*appointment.Appointment `json:"latest_appointments"`
}
