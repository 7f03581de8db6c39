package converter

import (
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
)

func ServiceToResponse(service *entity.Service) *dto.ServiceResponse {
	if service == nil {
		return nil
	}

	return &dto.ServiceResponse{
		ID:                 service.ID,
		Name:               service.Name,
		Description:        service.Description,
		DurationMinutes:    service.DurationMinutes,
		Price:              service.Price.InexactFloat64(),
		DoctorID:           service.DoctorID,
		IsActive:           service.IsActive,
		IsExternalBookable: service.IsExternalBookable,
		CreatedAt:          service.CreatedAt,
		UpdatedAt:          service.UpdatedAt,
	}
}

func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, len(services))
	for i := range services {
		responses[i] = *ServiceToResponse(&services[i])
	}
	return responses
}
