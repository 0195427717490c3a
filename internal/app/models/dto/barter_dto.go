package dto

// CreateOfferRequest is the body for posting a new barter offer. The acting
// student travels in the body; there is no session layer in front of the
// engine.
type CreateOfferRequest struct {
	OffererNIM      string `json:"offererNim" binding:"required" example:"M6401211001"`
	SourceSectionID int64  `json:"sourceSectionId" binding:"required,gt=0" example:"1"`
	TargetSectionID int64  `json:"targetSectionId" binding:"required,gt=0" example:"2"`
}

// TakeOfferRequest is the body for accepting an open offer
type TakeOfferRequest struct {
	TakerNIM string `json:"takerNim" binding:"required" example:"M6401211002"`
}
