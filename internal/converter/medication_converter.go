package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

func MedicationToResponse(medication *entity.Medication) *dto.MedicationResponse {
	if medication == nil {
		return nil
	}

	response := &dto.MedicationResponse{
		ID:         medication.ID,
		Name:       medication.Name,
		Status:     string(medication.Status),
		StockLevel: medication.StockLevel,
		Supplier:   medication.Supplier,
		CreatedAt:  medication.CreatedAt,
		UpdatedAt:  medication.UpdatedAt,
	}
	if medication.Expiry != nil {
		response.Expiry = medication.Expiry.Format(dateLayout)
	}
	return response
}

func MedicationsToResponses(medications []entity.Medication) []dto.MedicationResponse {
	responses := make([]dto.MedicationResponse, len(medications))
	for i := range medications {
		responses[i] = *MedicationToResponse(&medications[i])
	}
	return responses
}
