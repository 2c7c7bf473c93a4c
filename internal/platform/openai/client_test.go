package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillsprint-backend/internal/llm"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(logger.Nop(), Config{APIKey: "sk-test", Model: "gpt-test", BaseURL: srv.URL + "/v1"})
}

func TestGenerateContent_Success(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`))
	})

	out, err := c.GenerateContent(context.Background(), "say hello", 0.2)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "gpt-test", got["model"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
	assert.EqualValues(t, 8192, got["max_tokens"])
}

func TestGenerateContent_MissingKey(t *testing.T) {
	c := NewClient(logger.Nop(), Config{})
	_, err := c.GenerateContent(context.Background(), "p", 0.7)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}

func TestGenerateContent_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	_, err := c.GenerateContent(context.Background(), "p", 0.7)
	var httpErr *llm.HTTPError
	require.True(t, errors.As(err, &httpErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestGenerateContent_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := c.GenerateContent(context.Background(), "p", 0.7)
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}
