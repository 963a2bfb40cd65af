// Package gemini implements the assistant.Completer contract against the
// Gemini generateContent REST API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matchpoint-app/matchpoint/internal/assistant"
	"github.com/matchpoint-app/matchpoint/internal/event"
)

// Provider calls the Gemini API to drive the extraction conversation.
type Provider struct {
	client *resty.Client
	model  string
	apiKey string
}

// New creates a provider for the given base URL, model, and API key.
func New(baseURL, model, apiKey string) *Provider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second)
	return &Provider{client: client, model: model, apiKey: apiKey}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *generateContent  `json:"system_instruction,omitempty"`
	Contents          []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Complete replays the transcript to Gemini and splits the reply into
// assistant prose and the extracted event fields.
func (p *Provider) Complete(ctx context.Context, transcript []assistant.Turn) (*assistant.Completion, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	req := generateRequest{
		SystemInstruction: &generateContent{Parts: []generatePart{{Text: systemPrompt}}},
	}
	for _, turn := range transcript {
		role := "user"
		if turn.Role == assistant.RoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, generateContent{
			Role:  role,
			Parts: []generatePart{{Text: turn.Text}},
		})
	}

	var out generateResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", p.model))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil && out.Error.Message != "" {
			return nil, fmt.Errorf("gemini API error %d: %s", resp.StatusCode(), out.Error.Message)
		}
		return nil, fmt.Errorf("gemini API error %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text, patch := splitReply(b.String())
	return &assistant.Completion{AssistantText: text, Extracted: patch}, nil
}

// splitReply separates the conversational portion of the model's reply
// from the fenced eventData JSON block, when one is present. Fields the
// draft model does not recognize are dropped by the decoder; a malformed
// block is treated as no extraction rather than an error.
func splitReply(reply string) (string, event.Patch) {
	const fence = "```"

	start := strings.Index(reply, fence+"json")
	if start < 0 {
		start = strings.Index(reply, fence)
	}
	if start < 0 {
		return strings.TrimSpace(reply), event.Patch{}
	}

	afterFence := reply[start:]
	open := strings.Index(afterFence, "\n")
	if open < 0 {
		return strings.TrimSpace(reply), event.Patch{}
	}
	rest := afterFence[open+1:]
	end := strings.Index(rest, fence)
	if end < 0 {
		return strings.TrimSpace(reply), event.Patch{}
	}

	var patch event.Patch
	if err := json.Unmarshal([]byte(rest[:end]), &patch); err != nil {
		return strings.TrimSpace(reply), event.Patch{}
	}

	prose := reply[:start] + rest[end+len(fence):]
	return strings.TrimSpace(prose), patch
}

// systemPrompt constrains the model to sports-event extraction and fixes
// the machine-readable reply format.
const systemPrompt = `You are a sports event creation assistant. You ONLY help users create sports events; politely refuse anything else.

Hold a natural conversation. Whenever the user has supplied event details, append a fenced JSON block to your reply containing every field you have gathered so far:

` + "```json" + `
{"name": "...", "sport": "...", "dateTime": "2006-01-02T15:04", "location": "...", "description": "...", "venueNames": ["..."], "isRecurring": false, "recurrencePattern": ""}
` + "```" + `

Rules:
- dateTime uses the local form YYYY-MM-DDTHH:MM or an RFC 3339 instant.
- Omit fields the user has not provided; never invent values.
- Ask for the event name, sport, and date/time if they are still missing.
- Keep the conversational part of the reply outside the JSON block.`
