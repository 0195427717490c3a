package models

// Enrollment defines a (student, section) membership based on the
// 'enrollments' table. Rows are created by seeding and moved between sections
// only by the swap transaction.
type Enrollment struct {
	ID        int64  `json:"id" db:"id" example:"1"`
	NIM       string `json:"nim" db:"nim" example:"M6401211001"`
	SectionID int64  `json:"sectionId" db:"section_id" example:"1"`

	// Relations (populated when needed)
	Section *Section `json:"section,omitempty"`
}
