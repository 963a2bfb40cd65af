package event

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/matchpoint-app/matchpoint/internal/storage"
)

// Service contains the core business logic for event operations.
type Service struct {
	storage storage.Storage
}

// NewService creates a new event service.
func NewService(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Create persists a validated draft as a new event record and returns it.
func (s *Service) Create(ctx context.Context, v *Validated) (*storage.Event, error) {
	if v == nil {
		return nil, NewValidationError("draft", "validated draft is required")
	}

	eventID := uuid.New()
	req := storage.CreateEventRequest{
		EventID:           eventID,
		Name:              v.Name,
		Sport:             v.Sport,
		StartsAt:          v.StartsAt,
		Location:          v.Location,
		Description:       v.Description,
		VenueNames:        v.VenueNames,
		Recurring:         v.Recurring,
		RecurrencePattern: v.RecurrencePattern,
	}

	log.Info().Str("eventID", eventID.String()).Str("sport", v.Sport).Msg("Creating event")

	e, err := s.storage.CreateEvent(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("eventID", eventID.String()).Msg("Failed to create event")
		return nil, err
	}
	return e, nil
}

// Get retrieves an event by ID.
func (s *Service) Get(ctx context.Context, eventID uuid.UUID) (*storage.Event, error) {
	if eventID == uuid.Nil {
		return nil, NewValidationError("eventId", "event ID is required")
	}
	return s.storage.GetEvent(ctx, eventID)
}

// List lists events, optionally filtered by sport and time window.
func (s *Service) List(ctx context.Context, req storage.ListEventsRequest) ([]*storage.Event, error) {
	if req.Limit < 0 {
		return nil, NewValidationError("limit", "limit must be non-negative")
	}
	evs, err := s.storage.ListEvents(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("ListEvents failed")
	}
	return evs, err
}

// Update applies the provided fields to an existing event. Supplied
// values go through the same normalization and bounds checks as drafts.
func (s *Service) Update(ctx context.Context, req storage.UpdateEventRequest) (*storage.Event, error) {
	if req.EventID == uuid.Nil {
		return nil, NewValidationError("eventId", "event ID is required")
	}
	if err := s.validateUpdate(&req); err != nil {
		return nil, err
	}

	log.Info().Str("eventID", req.EventID.String()).Msg("Updating event")
	return s.storage.UpdateEvent(ctx, req)
}

// Delete removes an event and its venue associations.
func (s *Service) Delete(ctx context.Context, eventID uuid.UUID) error {
	if eventID == uuid.Nil {
		return NewValidationError("eventId", "event ID is required")
	}
	log.Info().Str("eventID", eventID.String()).Msg("Deleting event")
	return s.storage.DeleteEvent(ctx, eventID)
}

func (s *Service) validateUpdate(req *storage.UpdateEventRequest) error {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return NewValidationError("name", "event name must not be empty")
		}
		if len(trimmed) > 200 {
			return NewValidationError("name", "event name exceeds 200 characters")
		}
		req.Name = &trimmed
	}
	if req.Sport != nil {
		trimmed := strings.TrimSpace(*req.Sport)
		if trimmed == "" {
			return NewValidationError("sport", "sport type must not be empty")
		}
		if len(trimmed) > 100 {
			return NewValidationError("sport", "sport type exceeds 100 characters")
		}
		req.Sport = &trimmed
	}
	if req.StartsAt != nil && req.StartsAt.IsZero() {
		return NewValidationError("startsAt", "a valid event date and time is required")
	}
	if req.Description != nil && len(*req.Description) > 1000 {
		return NewValidationError("description", "description exceeds 1000 characters")
	}
	if req.Location != nil && len(*req.Location) > 200 {
		return NewValidationError("location", "location exceeds 200 characters")
	}
	if req.VenueNames != nil {
		cleaned := make([]string, 0, len(req.VenueNames))
		for _, name := range req.VenueNames {
			name = strings.TrimSpace(name)
			if name == "" {
				return NewValidationError("venueNames", "venue name must not be empty")
			}
			cleaned = appendVenue(cleaned, name)
		}
		if len(cleaned) == 0 {
			return NewValidationError("venueNames", "at least one venue is required")
		}
		req.VenueNames = cleaned
	}
	if req.StartsAt != nil {
		t := req.StartsAt.UTC()
		req.StartsAt = &t
	}
	return nil
}
