package entity

// Dashboard holds the clinic-wide counters shown on the admin home page.
type Dashboard struct {
	TotalPatients        int64
	TotalDoctors         int64
	TodayAppointments    int64
	PendingAppointments  int64
	RecentAppointments   []Appointment
	AppointmentsByStatus map[AppointmentStatus]int64
}
