package handler

import (
	"encoding/json"
	"net/http"

	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/usecase"
	"medical-scheduling/pkg/response"
	"medical-scheduling/pkg/validator"
)

type FeedbackHandler struct {
	feedbackUsecase usecase.FeedbackUsecase
	validator       *validator.CustomValidator
}

func NewFeedbackHandler(feedbackUsecase usecase.FeedbackUsecase, validator *validator.CustomValidator) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackUsecase: feedbackUsecase,
		validator:       validator,
	}
}

// SubmitFeedback handles a patient's rating of a completed appointment
// @Summary Rate a completed appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param request body dto.SubmitFeedbackRequest true "Submit Feedback Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments/{id}/feedback [post]
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	var req dto.SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	feedback, err := h.feedbackUsecase.SubmitFeedback(r.Context(), appointmentID, &req)
	if err != nil {
		writeError(w, err, "Failed to submit feedback")
		return
	}

	response.Success(w, http.StatusCreated, "Feedback submitted successfully", feedback)
}

func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	feedback, err := h.feedbackUsecase.GetFeedback(r.Context(), appointmentID)
	if err != nil {
		writeError(w, err, "Failed to get feedback")
		return
	}

	response.Success(w, http.StatusOK, "Feedback retrieved successfully", feedback)
}
