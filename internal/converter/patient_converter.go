package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

// PatientProfileToResponse converts a PatientProfile entity to PatientProfileResponse DTO
func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil {
		return nil
	}

	response := &dto.PatientProfileResponse{
		UserID:           profile.UserID,
		MatricNo:         profile.MatricNo,
		Gender:           profile.Gender,
		Address:          profile.Address,
		EmergencyContact: profile.EmergencyContact,
		BloodType:        profile.BloodType,
		Genotype:         profile.Genotype,
		HeightCM:         profile.HeightCM,
		WeightKG:         profile.WeightKG,
	}
	if profile.DateOfBirth != nil {
		response.DateOfBirth = profile.DateOfBirth.Format(dateLayout)
	}

	return response
}
