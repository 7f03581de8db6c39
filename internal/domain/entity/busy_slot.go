package entity

import "time"

// BusySlot is a window during which a doctor is unavailable.
type BusySlot struct {
	StartTime time.Time
	EndTime   time.Time
}

// BusySlotsFrom maps busy appointments to their windows, preserving order.
func BusySlotsFrom(appointments []Appointment) []BusySlot {
	slots := make([]BusySlot, 0, len(appointments))
	for i := range appointments {
		if !appointments[i].Status.IsBusy() {
			continue
		}
		slots = append(slots, BusySlot{
			StartTime: appointments[i].AppointmentDate,
			EndTime:   appointments[i].EndsAt(),
		})
	}
	return slots
}
