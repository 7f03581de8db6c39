package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gestmed/internal/delivery/dto"
	"gestmed/internal/service"
	"gestmed/internal/usecase"
	"gestmed/pkg/response"
	"gestmed/pkg/validator"

	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// writeBookingError maps errors shared by create and update.
func writeBookingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrServiceNotAvailable):
		response.BadRequest(w, "Service not available for this doctor")
	case errors.Is(err, usecase.ErrPatientRequired):
		response.BadRequest(w, "patient_id or patient_full_name is required")
	case errors.Is(err, usecase.ErrInvalidStatus):
		response.BadRequest(w, "Invalid status")
	case errors.Is(err, service.ErrBookingBusy):
		response.Conflict(w, "A booking for this doctor is in progress, retry later")
	case errors.Is(err, usecase.ErrCodeGeneration):
		response.InternalServerError(w, "Could not generate a unique appointment code")
	default:
		response.FromError(w, err, fallback)
	}
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), &req)
	if err != nil {
		writeBookingError(w, err, "Failed to create appointment")
		return
	}

	response.Created(w, appointment)
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	var query dto.AppointmentListQuery
	var err error

	if query.Date, _, err = queryTime(r, "date"); err != nil {
		response.BadRequest(w, "Invalid date")
		return
	}
	if query.DoctorID, err = queryInt64(r, "doctor_id"); err != nil {
		response.BadRequest(w, "Invalid doctor_id")
		return
	}
	if query.PatientID, err = queryInt64(r, "patient_id"); err != nil {
		response.BadRequest(w, "Invalid patient_id")
		return
	}
	query.ServiceID = queryFirst(r, "service_id")
	query.PatientEmail = queryFirst(r, "patient_email")
	query.PatientFiscalCode = queryFirst(r, "patient_codice_fiscale", "patient_fiscal_code")
	query.Code = queryFirst(r, "code")
	query.Status = queryFirst(r, "status")

	appointments, err := h.appointmentUsecase.GetAll(r.Context(), &query)
	if err != nil {
		response.FromError(w, err, "Failed to get appointments")
		return
	}

	response.OK(w, appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.appointmentUsecase.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if err == usecase.ErrAppointmentNotFound {
			response.NotFound(w, "Appointment not found")
			return
		}
		response.FromError(w, err, "Failed to get appointment")
		return
	}

	response.OK(w, appointment)
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeBookingError(w, err, "Failed to update appointment")
		return
	}

	response.OK(w, appointment)
}

func (h *AppointmentHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	appointment, err := h.appointmentUsecase.UpdateStatus(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		switch err {
		case usecase.ErrStatusRequired:
			response.BadRequest(w, "Status is required")
		case usecase.ErrInvalidStatus:
			response.BadRequest(w, "Invalid status")
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		default:
			response.FromError(w, err, "Failed to update appointment status")
		}
		return
	}

	response.OK(w, appointment)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	err := h.appointmentUsecase.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if err == usecase.ErrAppointmentNotFound {
			response.NotFound(w, "Appointment not found")
			return
		}
		response.FromError(w, err, "Failed to delete appointment")
		return
	}

	response.Message(w, http.StatusOK, "Appointment deleted successfully")
}

func (h *AppointmentHandler) GetBusySlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathInt64(r, "doctor_id")
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	var query dto.BusySlotQuery
	if query.Date, _, err = queryTime(r, "date"); err != nil {
		response.BadRequest(w, "Invalid date")
		return
	}
	if query.StartDate, _, err = queryTime(r, "start_date"); err != nil {
		response.BadRequest(w, "Invalid start_date")
		return
	}
	if query.EndDate, err = queryRangeEnd(r, "end_date"); err != nil {
		response.BadRequest(w, "Invalid end_date")
		return
	}

	slots, err := h.appointmentUsecase.GetBusySlots(r.Context(), doctorID, &query)
	if err != nil {
		if err == usecase.ErrInvalidDateRange {
			response.BadRequest(w, "end_date must not be before start_date")
			return
		}
		response.FromError(w, err, "Failed to get busy slots")
		return
	}

	response.OK(w, slots)
}
