package entity

// Role names carried in access token claims
const (
	RoleAdmin     = "admin"
	RolePhysician = "physician"
	RolePatient   = "patient"
)
