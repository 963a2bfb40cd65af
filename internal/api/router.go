// Package api exposes the HTTP transport for event CRUD and assistant
// sessions.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/matchpoint-app/matchpoint/internal/action"
	"github.com/matchpoint-app/matchpoint/internal/api/recovery"
	"github.com/matchpoint-app/matchpoint/internal/assistant"
	"github.com/matchpoint-app/matchpoint/internal/event"
	"github.com/matchpoint-app/matchpoint/internal/storage"
)

// NewRouter wires all handlers onto a mux router with panic recovery.
func NewRouter(store storage.Storage, completer assistant.Completer) http.Handler {
	events := event.NewService(store)
	classifier := action.NewClassifier()

	eventHandler := NewEventHandler(events)
	assistantHandler := NewAssistantHandler(completer, classifier, events)
	healthHandler := NewHealthHandler(store)

	r := mux.NewRouter()
	r.HandleFunc("/api/health", healthHandler.Health).Methods(http.MethodGet)

	r.HandleFunc("/api/events", eventHandler.CreateEvent).Methods(http.MethodPost)
	r.HandleFunc("/api/events", eventHandler.ListEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/events/{eventId}", eventHandler.GetEvent).Methods(http.MethodGet)
	r.HandleFunc("/api/events/{eventId}", eventHandler.UpdateEvent).Methods(http.MethodPatch)
	r.HandleFunc("/api/events/{eventId}", eventHandler.DeleteEvent).Methods(http.MethodDelete)
	r.HandleFunc("/api/events/{eventId}/ics", eventHandler.ExportEventICS).Methods(http.MethodGet)

	r.HandleFunc("/api/assistant/sessions", assistantHandler.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/api/assistant/sessions/{sessionId}", assistantHandler.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/api/assistant/sessions/{sessionId}", assistantHandler.DeleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/api/assistant/sessions/{sessionId}/messages", assistantHandler.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/assistant/sessions/{sessionId}/confirm", assistantHandler.Confirm).Methods(http.MethodPost)
	r.HandleFunc("/api/assistant/sessions/{sessionId}/cancel", assistantHandler.Cancel).Methods(http.MethodPost)
	r.HandleFunc("/api/assistant/sessions/{sessionId}/commit", assistantHandler.Commit).Methods(http.MethodPost)

	return recovery.Middleware(r)
}
