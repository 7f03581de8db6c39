package converter

import (
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity, with its joined service
// fields, to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	var customFields map[string]interface{}
	if len(appointment.CustomFields) > 0 {
		customFields = appointment.CustomFields
	}

	return &dto.AppointmentResponse{
		ID:                 appointment.ID,
		Code:               appointment.Code,
		PatientID:          appointment.PatientID,
		PatientFullName:    appointment.PatientFullName,
		PatientEmail:       appointment.PatientEmail,
		PatientPhone:       appointment.PatientPhone,
		PatientFiscalCode:  appointment.PatientFiscalCode,
		DoctorID:           appointment.DoctorID,
		ServiceID:          appointment.ServiceID,
		AppointmentDate:    appointment.AppointmentDate,
		Status:             string(appointment.Status),
		Notes:              appointment.Notes,
		CustomFields:       customFields,
		ServiceName:        appointment.ServiceName,
		ServiceDescription: appointment.ServiceDescription,
		DurationMinutes:    appointment.DurationMinutes,
		Price:              appointment.Price.InexactFloat64(),
		CreatedAt:          appointment.CreatedAt,
		UpdatedAt:          appointment.UpdatedAt,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// AppointmentsToActiveResponses adds patient and doctor names. Either map may be nil.
func AppointmentsToActiveResponses(appointments []entity.Appointment, patients map[int64]entity.Patient, doctors map[int64]entity.Doctor) []dto.ActiveAppointmentResponse {
	responses := make([]dto.ActiveAppointmentResponse, len(appointments))
	for i := range appointments {
		a := &appointments[i]
		resp := dto.ActiveAppointmentResponse{AppointmentResponse: *AppointmentToResponse(a)}

		resp.PatientName = a.PatientFullName
		if a.PatientID != nil {
			if p, ok := patients[*a.PatientID]; ok {
				resp.PatientName = p.Name
			}
		}
		if d, ok := doctors[a.DoctorID]; ok {
			resp.DoctorName = d.Name
			resp.DoctorSpecialization = d.Specialization
		}
		responses[i] = resp
	}
	return responses
}

func BusySlotsToResponses(slots []entity.BusySlot) []dto.BusySlotResponse {
	responses := make([]dto.BusySlotResponse, len(slots))
	for i, slot := range slots {
		responses[i] = dto.BusySlotResponse{
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		}
	}
	return responses
}
