package converter

import (
	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Relations are included only when they were preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	resp := &dto.AppointmentResponse{
		ID:                appointment.ID,
		PatientID:         appointment.PatientID,
		PhysicianID:       appointment.PhysicianID,
		StartTime:         appointment.StartTime.UTC(),
		EndTime:           appointment.EndTime.UTC(),
		DurationMinutes:   appointment.DurationMinutes,
		Status:            appointment.Status,
		ConsultationNotes: appointment.ConsultationNotes,
		TelemedicineLink:  appointment.TelemedicineLink,
		CreatedAt:         appointment.CreatedAt,
		UpdatedAt:         appointment.UpdatedAt,
	}

	if appointment.Patient.ID != uuid.Nil {
		resp.Patient = &dto.PatientSummary{
			ID:        appointment.Patient.ID,
			FirstName: appointment.Patient.FirstName,
			LastName:  appointment.Patient.LastName,
		}
	}
	if appointment.Physician.ID != uuid.Nil {
		resp.Physician = &dto.PhysicianSummary{
			ID:        appointment.Physician.ID,
			FirstName: appointment.Physician.FirstName,
			LastName:  appointment.Physician.LastName,
			Specialty: appointment.Physician.Specialty,
		}
	}

	return resp
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
