package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillsprint-backend/internal/llm"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, key string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(logger.Nop(), Config{APIKey: key, Model: "gemini-test", BaseURL: srv.URL})
}

func TestGenerateContent_Success(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`))
	}, "secret")

	out, err := c.GenerateContent(context.Background(), "write an outline", 0.7)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "write an outline", got.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.7, got.GenerationConfig.Temperature)
	assert.Equal(t, 40, got.GenerationConfig.TopK)
	assert.Equal(t, 0.95, got.GenerationConfig.TopP)
	assert.Equal(t, 8192, got.GenerationConfig.MaxOutputTokens)
	require.Len(t, got.SafetySettings, 4)
	for _, s := range got.SafetySettings {
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", s.Threshold)
	}
}

func TestGenerateContent_ClampsTemperature(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"x"}]}}]}`))
	}, "secret")

	_, err := c.GenerateContent(context.Background(), "p", 3.5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.GenerationConfig.Temperature)
}

func TestGenerateContent_MissingKey(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true }, "")

	_, err := c.GenerateContent(context.Background(), "p", 0.7)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.False(t, called, "no request should be sent without a key")
}

func TestGenerateContent_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}, "secret")

	_, err := c.GenerateContent(context.Background(), "p", 0.7)
	var httpErr *llm.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "quota")
}

func TestGenerateContent_MalformedResponses(t *testing.T) {
	cases := map[string]string{
		"no candidates": `{"candidates":[]}`,
		"no content":    `{"candidates":[{"finishReason":"SAFETY"}]}`,
		"no parts":      `{"candidates":[{"content":{"parts":[]}}]}`,
		"no text":       `{"candidates":[{"content":{"parts":[{}]}}]}`,
		"not json":      `<html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}, "secret")
			_, err := c.GenerateContent(context.Background(), "p", 0.7)
			assert.ErrorIs(t, err, llm.ErrMalformedResponse)
		})
	}
}

func TestGenerateContent_TransportErrorHidesKey(t *testing.T) {
	c := NewClient(logger.Nop(), Config{APIKey: "topsecret", BaseURL: "http://127.0.0.1:1"})
	_, err := c.GenerateContent(context.Background(), "p", 0.7)
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "topsecret"))
}

func TestGenerateContent_EmptyPrompt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "secret")
	_, err := c.GenerateContent(context.Background(), "   ", 0.7)
	assert.ErrorIs(t, err, llm.ErrEmptyPrompt)
}
