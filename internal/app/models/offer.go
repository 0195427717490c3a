package models

import "time"

// Offer is a persisted proposal to swap one held section for another, based
// on the 'offers' table. SourceSection is what the offerer holds and gives
// up; TargetSection is what the offerer wants. TakerNIM and CompletedAt are
// set exactly once, when the offer is matched.
type Offer struct {
	ID              int64       `json:"id" db:"id" example:"1"`
	OffererNIM      string      `json:"offererNim" db:"offerer_nim" example:"M6401211001"`
	SourceSectionID int64       `json:"sourceSectionId" db:"source_section_id" example:"1"`
	TargetSectionID int64       `json:"targetSectionId" db:"target_section_id" example:"2"`
	Status          OfferStatus `json:"status" db:"status" example:"open"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	TakerNIM        *string     `json:"takerNim,omitempty" db:"taker_nim"`
	CompletedAt     *time.Time  `json:"completedAt,omitempty" db:"completed_at"`

	// Relations (populated when needed)
	Offerer       *User    `json:"offerer,omitempty"`
	SourceSection *Section `json:"sourceSection,omitempty"`
	TargetSection *Section `json:"targetSection,omitempty"`
}
