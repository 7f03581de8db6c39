package converter

import (
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
)

func DashboardToResponse(d *entity.Dashboard, patients map[int64]entity.Patient, doctors map[int64]entity.Doctor) *dto.DashboardResponse {
	byStatus := make(map[string]int64, len(d.AppointmentsByStatus))
	for status, count := range d.AppointmentsByStatus {
		byStatus[string(status)] = count
	}

	return &dto.DashboardResponse{
		TotalPatients:       d.TotalPatients,
		TotalDoctors:        d.TotalDoctors,
		TodayAppointments:   d.TodayAppointments,
		PendingAppointments: d.PendingAppointments,
		RecentAppointments:  AppointmentsToActiveResponses(d.RecentAppointments, patients, doctors),
		Statistics: dto.DashboardStatistics{
			AppointmentsByStatus: byStatus,
		},
	}
}
