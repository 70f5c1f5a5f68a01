package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		Patient:         UserToSummary(appointment.Patient),
		DoctorID:        appointment.DoctorID,
		Doctor:          UserToSummary(appointment.Doctor),
		Specialty:       appointment.Specialty,
		ReasonForVisit:  appointment.ReasonForVisit,
		AppointmentDate: appointment.AppointmentDate.Format(dateLayout),
		AppointmentTime: string(appointment.AppointmentTime),
		VisitType:       string(appointment.VisitType),
		Status:          string(appointment.Status),

		Diagnosis:     appointment.Diagnosis,
		Symptoms:      appointment.Symptoms,
		Notes:         appointment.Notes,
		BloodPressure: appointment.BloodPressure,
		Temperature:   appointment.Temperature,
		HeartRate:     appointment.HeartRate,
		Weight:        appointment.Weight,
		Height:        appointment.Height,
		LabResults:    appointment.LabResults,
		Allergies:     appointment.Allergies,

		PaymentAmount: appointment.PaymentAmount,

		CompletedAt: appointment.CompletedAt,
		CancelledAt: appointment.CancelledAt,
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}

	if appointment.PaymentMethod != nil {
		method := string(*appointment.PaymentMethod)
		response.PaymentMethod = &method
	}
	if appointment.PaymentStatus != nil {
		status := string(*appointment.PaymentStatus)
		response.PaymentStatus = &status
	}
	if len(appointment.Prescriptions) > 0 {
		response.Prescriptions = PrescriptionsToResponses(appointment.Prescriptions)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
