// Package assistant implements the conversational event-creation flow: an
// explicit session state machine over an ordered transcript, field
// extraction into a running draft, and the confirm/commit pipeline.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/matchpoint-app/matchpoint/internal/action"
	"github.com/matchpoint-app/matchpoint/internal/event"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation. The transcript is append-only
// and its insertion order is the conversation order.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Completion is the completion service's reply: assistant prose plus any
// fields it extracted. Extracted may be empty or partially populated.
type Completion struct {
	AssistantText string
	Extracted     event.Patch
}

// Completer is the external completion service contract. The full
// transcript is replayed verbatim on every call.
type Completer interface {
	Complete(ctx context.Context, transcript []Turn) (*Completion, error)
}

// Creator is the external create operation invoked by the commit pipeline.
type Creator interface {
	CreateEvent(ctx context.Context, v *event.Validated) (uuid.UUID, error)
}

// State is the session's position in the conversation lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingReply State = "awaiting_reply"
	StateReviewing     State = "reviewing"
	StateConfirming    State = "confirming"
	StateCommitting    State = "committing"
)

var (
	// ErrEmptyTurn is returned when a user turn is blank after trimming.
	ErrEmptyTurn = errors.New("user turn must not be empty")
	// ErrBusy is returned when a call arrives while an external request
	// is in flight. The caller is expected to serialize turns.
	ErrBusy = errors.New("session has a request in flight")
	// ErrNotReady is returned when confirmation is requested before the
	// draft carries any identifying field.
	ErrNotReady = errors.New("draft is not ready for confirmation")
)

// Session owns one interaction's transcript and draft. It is not safe
// for concurrent use; callers serialize access (the HTTP layer disables
// input while a request is in flight).
type Session struct {
	state      State
	turns      []Turn
	draft      event.Draft
	completer  Completer
	classifier *action.Classifier
	now        func() time.Time
}

// NewSession creates an idle session bound to a completion service.
func NewSession(completer Completer, classifier *action.Classifier) *Session {
	return &Session{
		state:      StateIdle,
		completer:  completer,
		classifier: classifier,
		now:        time.Now,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Turns returns a copy of the transcript in conversation order.
func (s *Session) Turns() []Turn {
	return append([]Turn(nil), s.turns...)
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() event.Draft {
	d := s.draft
	d.VenueNames = append([]string(nil), s.draft.VenueNames...)
	return d
}

// ReadyToConfirm reports whether the confirmation affordance should be
// offered. Deliberately lenient: any one of name, sport, or start time is
// enough to show partial progress. The hard completeness gate is the
// validator, applied at commit.
func (s *Session) ReadyToConfirm() bool {
	return s.state == StateReviewing && s.draft.HasAnySignal()
}

// SendTurn accepts a new user turn, replays the full transcript to the
// completion service, and merges any extracted fields into the draft.
// The user turn is appended before the external call resolves. On
// completion failure the error is classified and a synthesized assistant
// turn with remediation text is appended; the draft is left unchanged.
// The returned turn is always the assistant turn that ended up in the
// transcript.
func (s *Session) SendTurn(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyTurn
	}
	switch s.state {
	case StateIdle, StateReviewing:
		// accepted
	case StateAwaitingReply, StateCommitting:
		return Turn{}, ErrBusy
	case StateConfirming:
		// A new turn while confirming dismisses the affordance and
		// continues the conversation.
	}

	s.turns = append(s.turns, Turn{Role: RoleUser, Text: text, CreatedAt: s.now()})
	s.state = StateAwaitingReply

	res := action.Do(ctx, s.classifier, func(ctx context.Context) (*Completion, error) {
		return s.completer.Complete(ctx, s.Turns())
	})

	var reply Turn
	if res.OK {
		reply = Turn{Role: RoleAssistant, Text: res.Data.AssistantText, CreatedAt: s.now()}
		s.draft = event.MergePatch(s.draft, res.Data.Extracted)
	} else {
		log.Warn().
			Str("category", string(res.Err.Category)).
			Str("detail", res.Err.Message).
			Msg("completion call failed")
		reply = Turn{Role: RoleAssistant, Text: remediationText(*res.Err), CreatedAt: s.now()}
	}
	s.turns = append(s.turns, reply)
	s.state = StateReviewing
	return reply, nil
}

// Confirm moves a reviewing session to the confirmation step. The draft
// must carry at least one identifying field.
func (s *Session) Confirm() error {
	if s.state != StateReviewing {
		return ErrBusy
	}
	if !s.draft.HasAnySignal() {
		return ErrNotReady
	}
	s.state = StateConfirming
	return nil
}

// Cancel dismisses the confirmation affordance. No draft fields are
// discarded.
func (s *Session) Cancel() error {
	if s.state != StateConfirming {
		return ErrBusy
	}
	s.state = StateReviewing
	return nil
}

// Commit re-validates the confirmed draft and invokes the create
// operation. On validation failure the session returns to reviewing and
// the creator is never called. On create success the session resets to
// idle; on create failure it returns to reviewing with the draft intact
// so the user can correct input and retry.
func (s *Session) Commit(ctx context.Context, creator Creator) action.Result[uuid.UUID] {
	if s.state != StateConfirming {
		return action.Fail[uuid.UUID](s.classifier.Classify(ErrBusy))
	}
	s.state = StateCommitting

	validated, err := event.Validate(s.draft)
	if err != nil {
		s.state = StateReviewing
		return action.Fail[uuid.UUID](s.classifier.Classify(err))
	}

	res := action.Do(ctx, s.classifier, func(ctx context.Context) (uuid.UUID, error) {
		return creator.CreateEvent(ctx, validated)
	})
	if !res.OK {
		log.Warn().
			Str("category", string(res.Err.Category)).
			Str("detail", res.Err.Message).
			Msg("event creation failed")
		s.state = StateReviewing
		return res
	}

	log.Info().Str("eventID", res.Data.String()).Msg("event created from conversation")
	s.Reset()
	return res
}

// Reset discards the transcript and draft and returns the session to its
// initial empty state. Used after a successful commit and when the user
// abandons the interaction.
func (s *Session) Reset() {
	s.state = StateIdle
	s.turns = nil
	s.draft = event.Draft{}
}

// remediationText maps a classified failure to the assistant-voice
// message appended to the transcript.
func remediationText(ce action.ClassifiedError) string {
	switch ce.Category {
	case action.CategoryConfigMissing:
		return "I'm having trouble connecting to the AI service. Please check that the Gemini API key is configured in your environment variables."
	case action.CategoryServiceMisconfigured:
		return "I'm having trouble with the AI service configuration. Please check your Gemini API settings and model access."
	case action.CategorySchemaMissing, action.CategoryPermissionDenied:
		return "I ran into a problem on the server side: " + ce.Message
	default:
		return "I encountered an error: " + ce.Message + ". Could you try rephrasing your request or providing more details about the sports event?"
	}
}

// Greeting is the assistant's opening message for a fresh session.
const Greeting = "Hi! I'm your sports event assistant. Just tell me what you need! For example:\n\n" +
	"• \"Create a basketball tournament next Saturday at 2 PM\"\n" +
	"• \"I want a weekly soccer practice every Monday at 6 PM\"\n" +
	"• \"Plan a tennis championship on March 15th\"\n\n" +
	"What sports event would you like to create?"
