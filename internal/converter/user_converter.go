package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// UserToResponse converts a User entity to UserResponse DTO.
// Roles, specializations and the patient profile are included when loaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		FullName:        user.FullName,
		Phone:           user.Phone,
		Roles:           user.RoleNames(),
		Specializations: specializationNames(user.Specializations),
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}

	if user.PatientProfile != nil {
		response.PatientProfile = PatientProfileToResponse(user.PatientProfile)
	}

	return response
}

// UserToSummary converts a User entity to the short UserSummary DTO
func UserToSummary(user *entity.User) *dto.UserSummary {
	if user == nil {
		return nil
	}
	return &dto.UserSummary{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
}

// UsersToDoctorResponses converts doctors with loaded specializations
func UsersToDoctorResponses(users []entity.User) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(users))
	for i, user := range users {
		responses[i] = dto.DoctorResponse{
			ID:              user.ID,
			FullName:        user.FullName,
			Email:           user.Email,
			Specializations: specializationNames(user.Specializations),
		}
	}
	return responses
}

func specializationNames(specializations []entity.Specialization) []string {
	names := make([]string, 0, len(specializations))
	for _, s := range specializations {
		names = append(names, s.Name)
	}
	return names
}
