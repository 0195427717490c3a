package models

// EventKind identifies a barter lifecycle event
type EventKind string

const (
	EventOfferCreated   EventKind = "offer-created"
	EventOfferMatched   EventKind = "offer-matched"
	EventOfferCancelled EventKind = "offer-cancelled"
)

// EnrollmentDelta describes one enrollment move applied by a matched swap
type EnrollmentDelta struct {
	NIM           string `json:"nim" example:"M6401211001"`
	FromSectionID int64  `json:"fromSectionId" example:"1"`
	ToSectionID   int64  `json:"toSectionId" example:"2"`
}

// OfferEvent is the payload broadcast to listeners when an offer is created,
// matched or cancelled. Delivery is best-effort and happens only after the
// underlying state change committed; Deltas is populated only for matched
// events and carries both participants' moves so listeners can reconcile
// without re-querying.
type OfferEvent struct {
	Kind   EventKind         `json:"kind"`
	Offer  *Offer            `json:"offer"`
	Deltas []EnrollmentDelta `json:"deltas,omitempty"`
}
