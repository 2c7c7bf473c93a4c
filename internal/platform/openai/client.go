// Package openai adapts the OpenAI chat completions API to llm.Client.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/skillsprint-backend/internal/llm"
	"github.com/yungbote/skillsprint-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

const (
	DefaultModel = "gpt-4o-mini"
	providerName = "openai"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// SystemPrompt is sent ahead of every prompt when set.
	SystemPrompt string
}

type Client struct {
	log    *logger.Logger
	client *goopenai.Client
	model  string
	system string
}

func NewClient(log *logger.Logger, cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		log:    log.With("client", "OpenAIClient"),
		model:  model,
		system: strings.TrimSpace(cfg.SystemPrompt),
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return c
	}
	oc := goopenai.DefaultConfig(key)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		oc.BaseURL = strings.TrimRight(base, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}
	c.client = goopenai.NewClientWithConfig(oc)
	return c
}

func (c *Client) Model() string { return c.model }

func (c *Client) GenerateContent(ctx context.Context, prompt string, temperature float64) (string, error) {
	if c.client == nil {
		return "", llm.ErrMissingAPIKey
	}
	if err := llm.ValidatePrompt(prompt); err != nil {
		return "", err
	}

	msgs := make([]goopenai.ChatCompletionMessage, 0, 2)
	if c.system != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: c.system})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: prompt})

	resp, err := c.client.CreateChatCompletion(ctxutil.Default(ctx), goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: float32(llm.ClampTemperature(temperature)),
		TopP:        float32(llm.TopP),
		MaxTokens:   llm.MaxOutputTokens,
	})
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", llm.ErrMalformedResponse)
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("%w: empty content (finish_reason=%s)", llm.ErrMalformedResponse, resp.Choices[0].FinishReason)
	}
	return text, nil
}

func mapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &llm.HTTPError{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := string(reqErr.Body)
		if body == "" && reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &llm.HTTPError{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return fmt.Errorf("openai request: %w", err)
}
