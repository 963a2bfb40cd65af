// Package storage defines the persistence contract for event records and
// the request/response types shared by its adapters.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event represents a persisted sports event.
type Event struct {
	EventID           uuid.UUID  `json:"eventId"`
	Name              string     `json:"name"`
	Sport             string     `json:"sport"`
	StartsAt          time.Time  `json:"startsAt"`
	Location          *string    `json:"location,omitempty"`
	Description       *string    `json:"description,omitempty"`
	VenueNames        []string   `json:"venueNames"`
	Recurring         bool       `json:"recurring"`
	RecurrencePattern *string    `json:"recurrencePattern,omitempty"`
	CreationTime      time.Time  `json:"creationTime"`
	LastUpdateTime    *time.Time `json:"lastUpdateTime,omitempty"`
}

// CreateEventRequest represents the request to create a new event.
type CreateEventRequest struct {
	EventID           uuid.UUID `json:"eventId"`
	Name              string    `json:"name"`
	Sport             string    `json:"sport"`
	StartsAt          time.Time `json:"startsAt"`
	Location          *string   `json:"location,omitempty"`
	Description       *string   `json:"description,omitempty"`
	VenueNames        []string  `json:"venueNames"`
	Recurring         bool      `json:"recurring"`
	RecurrencePattern *string   `json:"recurrencePattern,omitempty"`
}

// UpdateEventRequest carries the mutable fields of an event. Nil pointers
// leave the stored value untouched.
type UpdateEventRequest struct {
	EventID           uuid.UUID  `json:"eventId"`
	Name              *string    `json:"name,omitempty"`
	Sport             *string    `json:"sport,omitempty"`
	StartsAt          *time.Time `json:"startsAt,omitempty"`
	Location          *string    `json:"location,omitempty"`
	Description       *string    `json:"description,omitempty"`
	VenueNames        []string   `json:"venueNames,omitempty"`
	Recurring         *bool      `json:"recurring,omitempty"`
	RecurrencePattern *string    `json:"recurrencePattern,omitempty"`
}

// ListEventsRequest represents the request to list events.
type ListEventsRequest struct {
	Sport  string     `json:"sport,omitempty"`
	After  *time.Time `json:"after,omitempty"`
	Before *time.Time `json:"before,omitempty"`
	Limit  int        `json:"limit,omitempty"`
}

// Storage is the persistence interface implemented by the postgres and
// sqlite adapters.
type Storage interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, eventID uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, req ListEventsRequest) ([]*Event, error)
	UpdateEvent(ctx context.Context, req UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, eventID uuid.UUID) error

	HealthCheck(ctx context.Context) error
	Close() error
}
