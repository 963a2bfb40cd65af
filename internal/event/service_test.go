package event

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matchpoint-app/matchpoint/internal/storage"
)

// stubStorage records calls and returns canned results.
type stubStorage struct {
	created *storage.CreateEventRequest
	updated *storage.UpdateEventRequest
	deleted []uuid.UUID
}

func (s *stubStorage) CreateEvent(_ context.Context, req storage.CreateEventRequest) (*storage.Event, error) {
	s.created = &req
	return &storage.Event{
		EventID:      req.EventID,
		Name:         req.Name,
		Sport:        req.Sport,
		StartsAt:     req.StartsAt,
		VenueNames:   req.VenueNames,
		CreationTime: time.Now().UTC(),
	}, nil
}

func (s *stubStorage) GetEvent(_ context.Context, id uuid.UUID) (*storage.Event, error) {
	return nil, NewNotFoundError("eventId", "event not found")
}

func (s *stubStorage) ListEvents(_ context.Context, _ storage.ListEventsRequest) ([]*storage.Event, error) {
	return nil, nil
}

func (s *stubStorage) UpdateEvent(_ context.Context, req storage.UpdateEventRequest) (*storage.Event, error) {
	s.updated = &req
	return &storage.Event{EventID: req.EventID}, nil
}

func (s *stubStorage) DeleteEvent(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubStorage) HealthCheck(_ context.Context) error { return nil }
func (s *stubStorage) Close() error                        { return nil }

func TestServiceCreate_MapsValidatedDraft(t *testing.T) {
	store := &stubStorage{}
	svc := NewService(store)

	loc := "Main Gym"
	v := &Validated{
		Name:       "Basketball Game",
		Sport:      "Basketball",
		StartsAt:   time.Date(2025, 6, 7, 14, 0, 0, 0, time.UTC),
		Location:   &loc,
		VenueNames: []string{"Main Gym"},
	}

	created, err := svc.Create(context.Background(), v)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.created == nil {
		t.Fatalf("storage not called")
	}
	if store.created.Name != "Basketball Game" || store.created.Sport != "Basketball" {
		t.Fatalf("unexpected storage request: %+v", store.created)
	}
	if created.EventID == uuid.Nil {
		t.Fatalf("expected generated event ID")
	}
}

func TestServiceCreate_RejectsNil(t *testing.T) {
	svc := NewService(&stubStorage{})
	if _, err := svc.Create(context.Background(), nil); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdate_NormalizesFields(t *testing.T) {
	store := &stubStorage{}
	svc := NewService(store)

	name := "  Renamed Cup  "
	req := storage.UpdateEventRequest{
		EventID:    uuid.New(),
		Name:       &name,
		VenueNames: []string{" Court A ", "Court A", "Court B"},
	}
	if _, err := svc.Update(context.Background(), req); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := *store.updated.Name; got != "Renamed Cup" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
	if len(store.updated.VenueNames) != 2 {
		t.Fatalf("expected deduplicated venues, got %v", store.updated.VenueNames)
	}
}

func TestServiceUpdate_BoundsChecked(t *testing.T) {
	svc := NewService(&stubStorage{})

	long := strings.Repeat("x", 201)
	_, err := svc.Update(context.Background(), storage.UpdateEventRequest{EventID: uuid.New(), Name: &long})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	empty := "   "
	_, err = svc.Update(context.Background(), storage.UpdateEventRequest{EventID: uuid.New(), Sport: &empty})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error for blank sport, got %v", err)
	}
}

func TestServiceUpdate_RequiresID(t *testing.T) {
	svc := NewService(&stubStorage{})
	if _, err := svc.Update(context.Background(), storage.UpdateEventRequest{}); !IsValidationError(err) {
		t.Fatalf("expected validation error for missing ID, got %v", err)
	}
}

func TestServiceDelete_RequiresID(t *testing.T) {
	store := &stubStorage{}
	svc := NewService(store)
	if err := svc.Delete(context.Background(), uuid.Nil); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected one delete call")
	}
}
