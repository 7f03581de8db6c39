package handler

import (
	"encoding/json"
	"net/http"

	"gestmed/internal/delivery/dto"
	"gestmed/internal/usecase"
	"gestmed/pkg/response"
	"gestmed/pkg/validator"

	"github.com/gorilla/mux"
)

type AliveHandler struct {
	aliveLogUsecase usecase.AliveLogUsecase
	validator       *validator.CustomValidator
}

func NewAliveHandler(aliveLogUsecase usecase.AliveLogUsecase, validator *validator.CustomValidator) *AliveHandler {
	return &AliveHandler{
		aliveLogUsecase: aliveLogUsecase,
		validator:       validator,
	}
}

func (h *AliveHandler) GetActiveAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.aliveLogUsecase.GetActive(r.Context())
	if err != nil {
		response.FromError(w, err, "Failed to get active appointments")
		return
	}

	response.OK(w, appointments)
}

func (h *AliveHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.aliveLogUsecase.GetByAppointment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.FromError(w, err, "Failed to get appointment logs")
		return
	}

	response.OK(w, logs)
}

func (h *AliveHandler) GetLogsByCode(w http.ResponseWriter, r *http.Request) {
	logs, err := h.aliveLogUsecase.GetByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		response.FromError(w, err, "Failed to get appointment logs")
		return
	}

	response.OK(w, logs)
}

func (h *AliveHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAliveLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	entry, err := h.aliveLogUsecase.Create(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		switch err {
		case usecase.ErrAliveLogFieldsRequired:
			response.BadRequest(w, "Title and description are required")
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		default:
			response.FromError(w, err, "Failed to create appointment log")
		}
		return
	}

	response.Created(w, entry)
}
