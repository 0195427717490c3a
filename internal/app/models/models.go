package models

// OfferStatus defines the lifecycle state of a barter offer
type OfferStatus string

// Offer lifecycle states. Transitions are terminal: open may become matched
// or cancelled, nothing transitions out of matched or cancelled.
const (
	OfferStatusOpen      OfferStatus = "open"
	OfferStatusMatched   OfferStatus = "matched"
	OfferStatusCancelled OfferStatus = "cancelled"
)

// IsTerminal reports whether the status permits no further transitions
func (s OfferStatus) IsTerminal() bool {
	return s == OfferStatusMatched || s == OfferStatusCancelled
}
