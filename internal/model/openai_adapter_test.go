package model

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestModel(t *testing.T, finishReason, content string) (*openaiChatModel, *map[string]any) {
	t.Helper()
	captured := map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finishReason,
			}},
			"usage": map[string]any{"prompt_tokens": 4, "completion_tokens": 2, "total_tokens": 6},
		})
	}))
	t.Cleanup(srv.Close)

	m, err := NewOpenAIChatModel(OpenAIConfig{
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Model:       "gpt-4o-mini",
		Temperature: 0.5,
		MaxTokens:   100,
	})
	require.NoError(t, err)
	return m, &captured
}

func TestOpenAIGenerate_Success(t *testing.T) {
	m, captured := newOpenAITestModel(t, "stop", "revised")

	msg, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "revised", msg.Content)
	assert.Equal(t, "stop", msg.ResponseMeta.FinishReason)
	assert.Equal(t, 6, msg.ResponseMeta.Usage.TotalTokens)

	req := *captured
	assert.Equal(t, "gpt-4o-mini", req["model"])
	assert.InDelta(t, 0.5, req["temperature"], 1e-6)
	messages, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestOpenAIGenerate_ContentFilterIsBlocked(t *testing.T) {
	m, _ := newOpenAITestModel(t, "content_filter", "")

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestOpenAIGenerate_EmptyContent(t *testing.T) {
	m, _ := newOpenAITestModel(t, "stop", "")

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlocked)
}

func TestOpenAIStream_SingleChunk(t *testing.T) {
	m, captured := newOpenAITestModel(t, "stop", "revised")

	sr, err := m.Stream(context.Background(), []*schema.Message{schema.UserMessage("x")})
	require.NoError(t, err)
	defer sr.Close()

	msg, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "revised", msg.Content)
	_, err = sr.Recv()
	assert.ErrorIs(t, err, io.EOF)
	assert.NotContains(t, *captured, "stream")
}

func TestOpenAIStream_ContentFilterIsBlocked(t *testing.T) {
	m, _ := newOpenAITestModel(t, "content_filter", "")

	_, err := m.Stream(context.Background(), []*schema.Message{schema.UserMessage("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestConvertMessages_SkipsEmptyAssistant(t *testing.T) {
	out := convertMessages([]*schema.Message{
		schema.UserMessage("a"),
		schema.AssistantMessage("", nil),
		schema.UserMessage("b"),
	})
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Content)
	assert.Equal(t, "b", out[1].Content)
}
