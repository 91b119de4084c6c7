package entity

// PhysicianFilter is a domain-level filter for physician discovery.
// Used by repository layer to avoid coupling with delivery DTOs.
type PhysicianFilter struct {
	Specialty       string // Filter by specialty (ILIKE)
	WithCoordinates bool   // Only physicians having both latitude and longitude
}
