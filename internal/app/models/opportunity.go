package models

// Opportunity is a discovered, currently-valid directed swap a specific user
// could propose: NIM holds SourceSectionID and wants TargetSectionID, and
// PartnerNIM holds the target. It carries enough context to construct an
// Offer directly or to identify eligible takers for an existing one.
type Opportunity struct {
	NIM             string `json:"nim" example:"M6401211001"`
	PartnerNIM      string `json:"partnerNim" example:"M6401211002"`
	SourceSectionID int64  `json:"sourceSectionId" example:"1"`
	TargetSectionID int64  `json:"targetSectionId" example:"2"`
	CourseCode      string `json:"courseCode" example:"KOM201"`
	TypeTag         string `json:"typeTag" example:"K"`
}
