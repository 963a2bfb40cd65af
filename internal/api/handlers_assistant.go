package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/matchpoint-app/matchpoint/internal/action"
	"github.com/matchpoint-app/matchpoint/internal/api/respond"
	"github.com/matchpoint-app/matchpoint/internal/assistant"
	"github.com/matchpoint-app/matchpoint/internal/event"
)

// AssistantHandler owns the live extraction sessions. Each session is an
// independent interaction: its transcript and draft are discarded on
// abandon or after a successful commit. The handler serializes access to
// each session; a request arriving while one is in flight gets 409.
type AssistantHandler struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry

	completer  assistant.Completer
	classifier *action.Classifier
	creator    assistant.Creator
}

type sessionEntry struct {
	mu      sync.Mutex
	session *assistant.Session
}

// NewAssistantHandler creates a handler backed by the given completion
// service and event service.
func NewAssistantHandler(completer assistant.Completer, classifier *action.Classifier, events *event.Service) *AssistantHandler {
	return &AssistantHandler{
		sessions:   make(map[uuid.UUID]*sessionEntry),
		completer:  completer,
		classifier: classifier,
		creator:    &serviceCreator{events: events},
	}
}

// serviceCreator adapts the event service to the commit pipeline's
// create-operation contract.
type serviceCreator struct {
	events *event.Service
}

func (c *serviceCreator) CreateEvent(ctx context.Context, v *event.Validated) (uuid.UUID, error) {
	created, err := c.events.Create(ctx, v)
	if err != nil {
		return uuid.Nil, err
	}
	return created.EventID, nil
}

type sessionView struct {
	SessionID uuid.UUID        `json:"sessionId"`
	State     assistant.State  `json:"state"`
	Turns     []assistant.Turn `json:"turns"`
	Draft     draftView        `json:"draft"`
	Ready     bool             `json:"ready"`
}

type draftView struct {
	Name              string   `json:"name,omitempty"`
	Sport             string   `json:"sport,omitempty"`
	StartsAt          string   `json:"startsAt,omitempty"`
	Location          string   `json:"location,omitempty"`
	Description       string   `json:"description,omitempty"`
	VenueNames        []string `json:"venueNames,omitempty"`
	Recurring         bool     `json:"isRecurring,omitempty"`
	RecurrencePattern string   `json:"recurrencePattern,omitempty"`
}

func viewDraft(d event.Draft) draftView {
	v := draftView{
		Name:              d.Name,
		Sport:             d.Sport,
		Location:          d.Location,
		Description:       d.Description,
		VenueNames:        d.VenueNames,
		Recurring:         d.Recurring,
		RecurrencePattern: d.RecurrencePattern,
	}
	if d.StartsAt != nil {
		v.StartsAt = d.StartsAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}

func (h *AssistantHandler) view(id uuid.UUID, s *assistant.Session) sessionView {
	return sessionView{
		SessionID: id,
		State:     s.State(),
		Turns:     s.Turns(),
		Draft:     viewDraft(s.Draft()),
		Ready:     s.ReadyToConfirm(),
	}
}

// CreateSession handles POST /api/assistant/sessions
func (h *AssistantHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.New()
	entry := &sessionEntry{session: assistant.NewSession(h.completer, h.classifier)}

	h.mu.Lock()
	h.sessions[id] = entry
	h.mu.Unlock()

	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId": id,
		"state":     entry.session.State(),
		"greeting":  assistant.Greeting,
	})
}

// GetSession handles GET /api/assistant/sessions/{sessionId}
func (h *AssistantHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	respond.WriteJSON(w, http.StatusOK, h.view(id, entry.session))
}

// SendMessage handles POST /api/assistant/sessions/{sessionId}/messages
func (h *AssistantHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	if !entry.mu.TryLock() {
		respond.WriteConflict(w, "a message is already being processed for this session")
		return
	}
	defer entry.mu.Unlock()

	reply, err := entry.session.SendTurn(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyTurn):
			respond.WriteBadRequest(w, err.Error())
		case errors.Is(err, assistant.ErrBusy):
			respond.WriteConflict(w, err.Error())
		default:
			respond.WriteInternalError(w, err.Error())
		}
		return
	}

	view := h.view(id, entry.session)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reply":   reply,
		"state":   view.State,
		"draft":   view.Draft,
		"ready":   view.Ready,
		"session": view.SessionID,
	})
}

// Confirm handles POST /api/assistant/sessions/{sessionId}/confirm
func (h *AssistantHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.session.Confirm(); err != nil {
		switch {
		case errors.Is(err, assistant.ErrNotReady):
			respond.WriteBadRequest(w, err.Error())
		default:
			respond.WriteConflict(w, err.Error())
		}
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.view(id, entry.session))
}

// Cancel handles POST /api/assistant/sessions/{sessionId}/cancel
func (h *AssistantHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.session.Cancel(); err != nil {
		respond.WriteConflict(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.view(id, entry.session))
}

// Commit handles POST /api/assistant/sessions/{sessionId}/commit
func (h *AssistantHandler) Commit(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !entry.mu.TryLock() {
		respond.WriteConflict(w, "a request is already being processed for this session")
		return
	}
	defer entry.mu.Unlock()

	res := entry.session.Commit(r.Context(), h.creator)
	if !res.OK {
		status := http.StatusBadGateway
		if res.Err.Category == action.CategoryValidationFailed {
			status = http.StatusBadRequest
		}
		respond.WriteClassified(w, status, string(res.Err.Category), res.Err.Field, res.Err.Message)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"eventId": res.Data,
		"state":   entry.session.State(),
	})
	// successful commit resets the session; drop it from the registry
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// DeleteSession handles DELETE /api/assistant/sessions/{sessionId}.
// Abandoning discards the transcript and draft entirely.
func (h *AssistantHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	entry.session.Reset()
	entry.mu.Unlock()

	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (h *AssistantHandler) lookup(w http.ResponseWriter, r *http.Request) (uuid.UUID, *sessionEntry, bool) {
	raw := mux.Vars(r)["sessionId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		respond.WriteBadRequest(w, "invalid session ID")
		return uuid.Nil, nil, false
	}

	h.mu.Lock()
	entry, found := h.sessions[id]
	h.mu.Unlock()
	if !found {
		respond.WriteNotFound(w, "session not found")
		return uuid.Nil, nil, false
	}
	return id, entry, true
}
