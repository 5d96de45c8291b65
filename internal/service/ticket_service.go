package service

import (
	"context"

	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/storage"
)

// TicketService exposes the flight tickets extracted from assistant replies.
type TicketService struct {
	store storage.Store
}

// NewTicketService creates a ticket service backed by the given store.
func NewTicketService(store storage.Store) *TicketService {
	return &TicketService{store: store}
}

// ListFlights returns a session's flight tickets in insertion order.
func (s *TicketService) ListFlights(ctx context.Context, userID, sessionID string) ([]*models.Flight, error) {
	if err := s.checkOwner(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListFlights(ctx, sessionID)
}

// DeleteFlight removes a flight ticket from a session.
func (s *TicketService) DeleteFlight(ctx context.Context, userID, sessionID, flightID string) error {
	if err := s.checkOwner(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.store.DeleteFlight(ctx, flightID); err != nil {
		return ErrNotFound
	}
	return nil
}

func (s *TicketService) checkOwner(ctx context.Context, userID, sessionID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return ErrNotFound
	}
	if session.UserID != userID {
		return ErrForbidden
	}
	return nil
}
