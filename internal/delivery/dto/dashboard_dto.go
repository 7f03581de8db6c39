package dto

// DashboardResponse keeps the camelCase keys the admin web app reads.
type DashboardResponse struct {
	TotalPatients       int64                       `json:"totalPatients"`
	TotalDoctors        int64                       `json:"totalDoctors"`
	TodayAppointments   int64                       `json:"todayAppointments"`
	PendingAppointments int64                       `json:"pendingAppointments"`
	RecentAppointments  []ActiveAppointmentResponse `json:"recentAppointments"`
	Statistics          DashboardStatistics         `json:"statistics"`
}

type DashboardStatistics struct {
	AppointmentsByStatus map[string]int64 `json:"appointmentsByStatus"`
}
