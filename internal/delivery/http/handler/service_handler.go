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

type ServiceHandler struct {
	serviceUsecase usecase.ServiceUsecase
	validator      *validator.CustomValidator
}

func NewServiceHandler(serviceUsecase usecase.ServiceUsecase, validator *validator.CustomValidator) *ServiceHandler {
	return &ServiceHandler{
		serviceUsecase: serviceUsecase,
		validator:      validator,
	}
}

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	svc, err := h.serviceUsecase.Create(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrServiceFieldsRequired:
			response.BadRequest(w, "Name and doctor_id are required")
		case usecase.ErrInvalidPrice:
			response.BadRequest(w, "Price must not be negative")
		default:
			response.FromError(w, err, "Failed to create service")
		}
		return
	}

	response.Created(w, svc)
}

func (h *ServiceHandler) GetAllServices(w http.ResponseWriter, r *http.Request) {
	var query dto.ServiceListQuery
	var err error

	if query.DoctorID, err = queryInt64(r, "doctor_id"); err != nil {
		response.BadRequest(w, "Invalid doctor_id")
		return
	}
	if query.IsActive, err = queryBool(r, "is_active"); err != nil {
		response.BadRequest(w, "Invalid is_active")
		return
	}
	if query.IsExternal, err = queryBool(r, "is_external"); err != nil {
		response.BadRequest(w, "Invalid is_external")
		return
	}
	query.SortBy = queryFirst(r, "sortBy", "sort_by")
	query.SortOrder = queryFirst(r, "sortOrder", "sort_order")

	services, err := h.serviceUsecase.GetAll(r.Context(), &query)
	if err != nil {
		response.FromError(w, err, "Failed to get services")
		return
	}

	response.OK(w, services)
}

func (h *ServiceHandler) GetServicesByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathInt64(r, "doctor_id")
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}
	isActive, err := queryBool(r, "is_active")
	if err != nil {
		response.BadRequest(w, "Invalid is_active")
		return
	}

	services, err := h.serviceUsecase.GetByDoctor(r.Context(), doctorID, isActive)
	if err != nil {
		response.FromError(w, err, "Failed to get services")
		return
	}

	response.OK(w, services)
}

func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.serviceUsecase.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if err == usecase.ErrServiceNotFound {
			response.NotFound(w, "Service not found")
			return
		}
		response.FromError(w, err, "Failed to get service")
		return
	}

	response.OK(w, svc)
}

func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	svc, err := h.serviceUsecase.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		switch err {
		case usecase.ErrServiceNotFound:
			response.NotFound(w, "Service not found")
		case usecase.ErrServiceFieldsRequired:
			response.BadRequest(w, "Name and doctor_id are required")
		case usecase.ErrInvalidPrice:
			response.BadRequest(w, "Price must not be negative")
		case usecase.ErrServiceDoctorInUse:
			response.BadRequest(w, "Cannot change doctor: service in use")
		default:
			response.FromError(w, err, "Failed to update service")
		}
		return
	}

	response.OK(w, svc)
}

func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	err := h.serviceUsecase.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrServiceNotFound):
			response.NotFound(w, "Service not found")
		case errors.Is(err, usecase.ErrServiceInUse):
			response.BadRequest(w, "Cannot delete: service in use")
		case errors.Is(err, service.ErrBookingBusy):
			response.Conflict(w, "A booking for this doctor is in progress, retry later")
		default:
			response.FromError(w, err, "Failed to delete service")
		}
		return
	}

	response.Message(w, http.StatusOK, "Service deleted successfully")
}
