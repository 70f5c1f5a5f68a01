package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

func PrescriptionToResponse(prescription *entity.Prescription) *dto.PrescriptionResponse {
	if prescription == nil {
		return nil
	}

	response := &dto.PrescriptionResponse{
		ID:             prescription.ID,
		AppointmentID:  prescription.AppointmentID,
		MedicationID:   prescription.MedicationID,
		Medication:     MedicationToResponse(prescription.Medication),
		PrescribedByID: prescription.PrescribedByID,
		Quantity:       prescription.Quantity,
		Instructions:   prescription.Instructions,
		PrescribedDate: prescription.PrescribedDate.Format(dateLayout),
		PaymentAmount:  prescription.PaymentAmount,
		PaymentStatus:  string(prescription.PaymentStatus),
		CreatedAt:      prescription.CreatedAt,
		UpdatedAt:      prescription.UpdatedAt,
	}
	if prescription.PaymentMethod != nil {
		method := string(*prescription.PaymentMethod)
		response.PaymentMethod = &method
	}
	return response
}

func PrescriptionsToResponses(prescriptions []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i := range prescriptions {
		responses[i] = *PrescriptionToResponse(&prescriptions[i])
	}
	return responses
}
