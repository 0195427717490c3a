package websocket

import (
	"github.com/rs/zerolog"

	"github.com/krswitch/backend/internal/app/models"
)

// HubNotifier adapts the Hub to the barter service's notification contract.
// Created and cancelled events go to every connection; matched events
// additionally land in both participants' rooms so a client can treat room
// deliveries as personal alerts distinct from the general feed.
type HubNotifier struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHubNotifier creates a notifier backed by the given hub
func NewHubNotifier(hub *Hub, logger zerolog.Logger) *HubNotifier {
	return &HubNotifier{
		hub:    hub,
		logger: logger,
	}
}

// OfferCreated broadcasts a new open offer to all connections
func (n *HubNotifier) OfferCreated(offer *models.Offer) {
	n.hub.Broadcast(&models.OfferEvent{
		Kind:  models.EventOfferCreated,
		Offer: offer,
	})
}

// OfferMatched broadcasts a completed swap, then notifies both participants
// directly
func (n *HubNotifier) OfferMatched(offer *models.Offer, deltas []models.EnrollmentDelta) {
	event := &models.OfferEvent{
		Kind:   models.EventOfferMatched,
		Offer:  offer,
		Deltas: deltas,
	}
	n.hub.Broadcast(event)

	participants := []string{offer.OffererNIM}
	if offer.TakerNIM != nil {
		participants = append(participants, *offer.TakerNIM)
	}
	n.hub.BroadcastToUsers(participants, event)
}

// OfferCancelled broadcasts a cancellation to all connections
func (n *HubNotifier) OfferCancelled(offer *models.Offer) {
	n.hub.Broadcast(&models.OfferEvent{
		Kind:  models.EventOfferCancelled,
		Offer: offer,
	})
}
