package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/usecase"
	"medical-scheduling/pkg/response"
	"medical-scheduling/pkg/validator"
)

type PhysicianHandler struct {
	physicianUsecase usecase.PhysicianUsecase
	validator        *validator.CustomValidator
}

func NewPhysicianHandler(physicianUsecase usecase.PhysicianUsecase, validator *validator.CustomValidator) *PhysicianHandler {
	return &PhysicianHandler{
		physicianUsecase: physicianUsecase,
		validator:        validator,
	}
}

func (h *PhysicianHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.physicianUsecase.GetMyProfile(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateMyProfile handles physician profile and schedule updates
// @Summary Update own physician profile
// @Tags Physicians
// @Accept json
// @Produce json
// @Param request body dto.UpdatePhysicianProfileRequest true "Update Profile Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /physician/profile [put]
func (h *PhysicianHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePhysicianProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.physicianUsecase.UpdateMyProfile(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

func (h *PhysicianHandler) GetPhysician(w http.ResponseWriter, r *http.Request) {
	physicianID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid physician ID", nil)
		return
	}

	physician, err := h.physicianUsecase.GetPhysician(r.Context(), physicianID)
	if err != nil {
		writeError(w, err, "Failed to get physician")
		return
	}

	response.Success(w, http.StatusOK, "Physician retrieved successfully", physician)
}

func (h *PhysicianHandler) SearchPhysicians(w http.ResponseWriter, r *http.Request) {
	physicians, err := h.physicianUsecase.SearchPhysicians(r.Context(), r.URL.Query().Get("specialty"))
	if err != nil {
		writeError(w, err, "Failed to search physicians")
		return
	}

	response.Success(w, http.StatusOK, "Physicians retrieved successfully", physicians)
}

// SearchNearby handles geo search
// @Summary Rank verified physicians by distance
// @Tags Physicians
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Param radius_km query number false "Radius in km"
// @Param specialty query string false "Specialty substring"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /physicians/search/geo [get]
func (h *PhysicianHandler) SearchNearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	errs := map[string]string{}

	req := dto.GeoSearchRequest{Specialty: query.Get("specialty")}
	req.Latitude = parseFloatParam(query.Get("lat"), "lat", true, errs)
	req.Longitude = parseFloatParam(query.Get("lon"), "lon", true, errs)
	req.RadiusKm = parseFloatParam(query.Get("radius_km"), "radius_km", false, errs)
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	physicians, err := h.physicianUsecase.SearchNearby(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to search physicians")
		return
	}

	response.Success(w, http.StatusOK, "Physicians retrieved successfully", physicians)
}

func parseFloatParam(raw, name string, required bool, errs map[string]string) float64 {
	if raw == "" {
		if required {
			errs[name] = name + " is required"
		}
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs[name] = name + " must be a number"
		return 0
	}
	return v
}

func (h *PhysicianHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	physicianID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid physician ID", nil)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.ValidationError(w, map[string]string{"date": "date is required"})
		return
	}

	availability, err := h.physicianUsecase.GetAvailability(r.Context(), physicianID, date)
	if err != nil {
		writeError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

// VerifyPhysician handles admin verification
// @Summary Set a physician's verification flag
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.VerifyPhysicianRequest true "Verify Physician Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/physicians/{id}/verify [post]
func (h *PhysicianHandler) VerifyPhysician(w http.ResponseWriter, r *http.Request) {
	physicianID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid physician ID", nil)
		return
	}

	var req dto.VerifyPhysicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	physician, err := h.physicianUsecase.SetVerification(r.Context(), physicianID, *req.IsVerified)
	if err != nil {
		writeError(w, err, "Failed to verify physician")
		return
	}

	response.Success(w, http.StatusOK, "Physician verification updated", physician)
}
