package models

// User defines a student account based on the 'users' table.
// Users are immutable once created; the engine never writes this table.
type User struct {
	NIM   string `json:"nim" db:"nim" example:"M6401211001"` // Unique student number
	Name  string `json:"name" db:"name" example:"Ahmad Fauzi"`
	Email string `json:"email" db:"email" example:"ahmad@apps.ipb.ac.id"`
}
