package converter

import (
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
)

func AliveLogToResponse(log *entity.AliveLog) *dto.AliveLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AliveLogResponse{
		ID:            log.ID,
		AppointmentID: log.AppointmentID,
		Code:          log.Code,
		Title:         log.Title,
		Description:   log.Description,
		CreatedAt:     log.CreatedAt,
	}
}

func AliveLogsToResponses(logs []entity.AliveLog) []dto.AliveLogResponse {
	responses := make([]dto.AliveLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AliveLogToResponse(&logs[i])
	}
	return responses
}
