package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/matchpoint-app/matchpoint/internal/api/respond"
	"github.com/matchpoint-app/matchpoint/internal/event"
	"github.com/matchpoint-app/matchpoint/internal/ics"
	"github.com/matchpoint-app/matchpoint/internal/storage"
)

// EventHandler handles event CRUD requests (thin transport layer).
type EventHandler struct {
	events *event.Service
}

// NewEventHandler creates a new event handler.
func NewEventHandler(events *event.Service) *EventHandler {
	return &EventHandler{events: events}
}

// eventPayload is the JSON body for create and update requests. Create
// requires name, sport, dateTime, and at least one venue; update treats
// every field as optional.
type eventPayload struct {
	Name              *string  `json:"name,omitempty"`
	Sport             *string  `json:"sport,omitempty"`
	DateTime          *string  `json:"dateTime,omitempty"`
	Location          *string  `json:"location,omitempty"`
	Description       *string  `json:"description,omitempty"`
	VenueNames        []string `json:"venueNames,omitempty"`
	Recurring         *bool    `json:"isRecurring,omitempty"`
	RecurrencePattern *string  `json:"recurrencePattern,omitempty"`
}

// CreateEvent handles POST /api/events. The body goes through the same
// normalization and validation gate as conversational drafts.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	patch := event.Patch{VenueNames: req.VenueNames, Recurring: req.Recurring}
	if req.Name != nil {
		patch.Name = *req.Name
	}
	if req.Sport != nil {
		patch.Sport = *req.Sport
	}
	if req.DateTime != nil {
		patch.StartsAt = *req.DateTime
	}
	if req.Location != nil {
		patch.Location = *req.Location
	}
	if req.Description != nil {
		patch.Description = *req.Description
	}
	if req.RecurrencePattern != nil {
		patch.RecurrencePattern = *req.RecurrencePattern
	}

	draft := event.MergePatch(event.Draft{}, patch)
	validated, err := event.Validate(draft)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	created, err := h.events.Create(r.Context(), validated)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, created)
}

// GetEvent handles GET /api/events/{eventId}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	e, err := h.events.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	req := storage.ListEventsRequest{Sport: r.URL.Query().Get("sport")}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			respond.WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		req.Limit = limit
	}
	if v := r.URL.Query().Get("after"); v != "" {
		ts, err := event.ParseInstant(v)
		if err != nil {
			respond.WriteBadRequest(w, "invalid after timestamp")
			return
		}
		req.After = &ts
	}
	if v := r.URL.Query().Get("before"); v != "" {
		ts, err := event.ParseInstant(v)
		if err != nil {
			respond.WriteBadRequest(w, "invalid before timestamp")
			return
		}
		req.Before = &ts
	}

	evs, err := h.events.List(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if evs == nil {
		evs = []*storage.Event{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": evs,
		"count":  len(evs),
	})
}

// UpdateEvent handles PATCH /api/events/{eventId}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}

	var req eventPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	update := storage.UpdateEventRequest{
		EventID:           id,
		Name:              req.Name,
		Sport:             req.Sport,
		Location:          req.Location,
		Description:       req.Description,
		VenueNames:        req.VenueNames,
		Recurring:         req.Recurring,
		RecurrencePattern: req.RecurrencePattern,
	}
	if req.DateTime != nil {
		ts, err := event.ParseInstant(*req.DateTime)
		if err != nil {
			respond.WriteBadRequest(w, "invalid dateTime")
			return
		}
		update.StartsAt = &ts
	}

	e, err := h.events.Update(r.Context(), update)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// DeleteEvent handles DELETE /api/events/{eventId}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	if err := h.events.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportEventICS handles GET /api/events/{eventId}/ics
func (h *EventHandler) ExportEventICS(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	e, err := h.events.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="event-`+id.String()+`.ics"`)
	_, _ = w.Write([]byte(ics.Export(e)))
}

func pathEventID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["eventId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		respond.WriteBadRequest(w, "invalid event ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondDomainError maps domain errors onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case event.IsValidationError(err):
		respond.WriteBadRequest(w, err.Error())
	case event.IsNotFoundError(err):
		respond.WriteNotFound(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
