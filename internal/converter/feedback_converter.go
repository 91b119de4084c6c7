package converter

import (
	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/domain/entity"
)

func FeedbackToResponse(feedback *entity.AppointmentFeedback) *dto.FeedbackResponse {
	if feedback == nil {
		return nil
	}

	return &dto.FeedbackResponse{
		ID:            feedback.ID,
		AppointmentID: feedback.AppointmentID,
		PatientID:     feedback.PatientID,
		PhysicianID:   feedback.PhysicianID,
		Rating:        feedback.Rating,
		Comment:       feedback.Comment,
		CreatedAt:     feedback.CreatedAt,
	}
}
