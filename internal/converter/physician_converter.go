package converter

import (
	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/domain/availability"
	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/internal/domain/geo"
)

// PhysicianToResponse converts a Physician entity to PhysicianResponse DTO.
// A schedule that fails to parse is omitted.
func PhysicianToResponse(physician *entity.Physician) *dto.PhysicianResponse {
	if physician == nil {
		return nil
	}

	resp := &dto.PhysicianResponse{
		ID:         physician.ID,
		UserID:     physician.UserID,
		FirstName:  physician.FirstName,
		LastName:   physician.LastName,
		Specialty:  physician.Specialty,
		Address:    physician.Address,
		Latitude:   physician.Latitude,
		Longitude:  physician.Longitude,
		TimeZone:   physician.TimeZone,
		IsVerified: physician.IsVerified,
	}
	if schedule, err := availability.ParseJSON(physician.AvailabilitySchedule); err == nil {
		resp.AvailabilitySchedule = schedule.Raw()
	}

	return resp
}

// PhysiciansToResponses converts a slice of Physician entities to slice of PhysicianResponse DTOs
func PhysiciansToResponses(physicians []entity.Physician) []dto.PhysicianResponse {
	responses := make([]dto.PhysicianResponse, len(physicians))
	for i := range physicians {
		responses[i] = *PhysicianToResponse(&physicians[i])
	}
	return responses
}

// RankedPhysiciansToResponses keeps the ranking order
func RankedPhysiciansToResponses(ranked []geo.Ranked[entity.Physician]) []dto.PhysicianDistanceResponse {
	responses := make([]dto.PhysicianDistanceResponse, len(ranked))
	for i := range ranked {
		responses[i] = dto.PhysicianDistanceResponse{
			PhysicianResponse: *PhysicianToResponse(&ranked[i].Item),
			DistanceKm:        ranked[i].DistanceKm,
		}
	}
	return responses
}

// SpansToFreeIntervals converts availability spans to UTC response intervals
func SpansToFreeIntervals(spans []availability.Span) []dto.FreeInterval {
	intervals := make([]dto.FreeInterval, len(spans))
	for i, s := range spans {
		intervals[i] = dto.FreeInterval{Start: s.Start.UTC(), End: s.End.UTC()}
	}
	return intervals
}
