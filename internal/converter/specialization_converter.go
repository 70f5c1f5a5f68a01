package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

func SpecializationToResponse(specialization *entity.Specialization) *dto.SpecializationResponse {
	if specialization == nil {
		return nil
	}
	return &dto.SpecializationResponse{
		ID:          specialization.ID,
		Name:        specialization.Name,
		Description: specialization.Description,
		CreatedAt:   specialization.CreatedAt,
		UpdatedAt:   specialization.UpdatedAt,
	}
}

func SpecializationsToResponses(specializations []entity.Specialization) []dto.SpecializationResponse {
	responses := make([]dto.SpecializationResponse, len(specializations))
	for i := range specializations {
		responses[i] = *SpecializationToResponse(&specializations[i])
	}
	return responses
}
