package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matchpoint-app/matchpoint/internal/assistant"
)

func candidateReply(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"role":  "model",
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
}

func TestComplete_ParsesReplyAndExtraction(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		reply := "Great, a basketball game!\n```json\n" +
			`{"name":"Basketball Game","sport":"Basketball","dateTime":"2025-06-07T14:00","location":"Main Gym"}` +
			"\n```\nShall I create it?"
		_ = json.NewEncoder(w).Encode(candidateReply(reply))
	}))
	defer srv.Close()

	p := New(srv.URL, "gemini-2.0-flash", "test-key")
	out, err := p.Complete(context.Background(), []assistant.Turn{
		{Role: assistant.RoleUser, Text: "Create a basketball game Saturday 2pm at Main Gym"},
	})
	require.NoError(t, err)

	require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	require.Len(t, gotBody.Contents, 1)
	require.Equal(t, "user", gotBody.Contents[0].Role)
	require.NotNil(t, gotBody.SystemInstruction)

	require.Equal(t, "Basketball Game", out.Extracted.Name)
	require.Equal(t, "Basketball", out.Extracted.Sport)
	require.Equal(t, "Main Gym", out.Extracted.Location)
	require.Contains(t, out.AssistantText, "Great, a basketball game!")
	require.Contains(t, out.AssistantText, "Shall I create it?")
	require.NotContains(t, out.AssistantText, "```")
}

func TestComplete_MapsTurnRoles(t *testing.T) {
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(candidateReply("ok"))
	}))
	defer srv.Close()

	p := New(srv.URL, "m", "k")
	_, err := p.Complete(context.Background(), []assistant.Turn{
		{Role: assistant.RoleUser, Text: "hi"},
		{Role: assistant.RoleAssistant, Text: "hello"},
		{Role: assistant.RoleUser, Text: "plan a game"},
	})
	require.NoError(t, err)

	require.Len(t, gotBody.Contents, 3)
	require.Equal(t, "user", gotBody.Contents[0].Role)
	require.Equal(t, "model", gotBody.Contents[1].Role)
	require.Equal(t, "user", gotBody.Contents[2].Role)
	require.Equal(t, "plan a game", gotBody.Contents[2].Parts[0].Text)
}

func TestComplete_MissingKey(t *testing.T) {
	p := New("http://localhost:1", "m", "")
	_, err := p.Complete(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "API key")
}

func TestComplete_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":    404,
				"message": "models/gemini-nope is not found for API version v1beta",
				"status":  "NOT_FOUND",
			},
		})
	}))
	defer srv.Close()

	p := New(srv.URL, "gemini-nope", "k")
	_, err := p.Complete(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
	require.Contains(t, err.Error(), "is not found")
}

func TestComplete_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer srv.Close()

	p := New(srv.URL, "m", "k")
	_, err := p.Complete(context.Background(), nil)
	require.Error(t, err)
}

func TestSplitReply_NoBlock(t *testing.T) {
	text, patch := splitReply("Just a question: what sport?")
	require.Equal(t, "Just a question: what sport?", text)
	require.True(t, patch.IsEmpty())
}

func TestSplitReply_MalformedBlockIgnored(t *testing.T) {
	text, patch := splitReply("here\n```json\n{not json}\n```\n")
	require.True(t, patch.IsEmpty())
	require.True(t, strings.Contains(text, "here"))
}

func TestSplitReply_UnknownFieldsIgnored(t *testing.T) {
	_, patch := splitReply("ok\n```json\n" +
		`{"name":"Cup","organizer":"someone","priority":9}` +
		"\n```")
	require.Equal(t, "Cup", patch.Name)
}
