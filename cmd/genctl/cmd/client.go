package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
)

var errMissingToken = errors.New("API token not found; set --token or SKILLSPRINT_TOKEN")

// Client calls the SkillSprint API as the token's user.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	// StreamClient has no timeout; event streams stay open for the whole run.
	StreamClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Token:        token,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		StreamClient: &http.Client{},
	}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

type requestEnvelope struct {
	Request generation.GenerationRequest `json:"request"`
}

type triggerResponse struct {
	Success   bool      `json:"success"`
	RequestID uuid.UUID `json:"requestId"`
}

// CreateRequest sends POST /api/generation-requests.
func (c *Client) CreateRequest(ctx context.Context, req generation.CourseRequest) (*generation.GenerationRequest, error) {
	var out requestEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/generation-requests", req, &out); err != nil {
		return nil, err
	}
	return &out.Request, nil
}

// Trigger sends POST /functions/v1/generate-course-content.
func (c *Client) Trigger(ctx context.Context, id uuid.UUID, req generation.CourseRequest) error {
	body := map[string]any{"requestId": id, "courseRequest": req}
	var out triggerResponse
	if err := c.do(ctx, http.MethodPost, "/functions/v1/generate-course-content", body, &out); err != nil {
		return err
	}
	if !out.Success {
		return errors.New("trigger was not accepted")
	}
	return nil
}

// GetRequest sends GET /api/generation-requests/{id}.
func (c *Client) GetRequest(ctx context.Context, id uuid.UUID) (*generation.GenerationRequest, error) {
	var out requestEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/generation-requests/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Request, nil
}

// CancelRequest sends POST /api/generation-requests/{id}/cancel.
func (c *Client) CancelRequest(ctx context.Context, id uuid.UUID) (*generation.GenerationRequest, error) {
	var out requestEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/generation-requests/"+id.String()+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out.Request, nil
}

type streamMessage struct {
	Event string              `json:"event"`
	Data  generation.Snapshot `json:"data"`
}

// Watch follows GET /api/generation-requests/{id}/events and calls onSnap for every
// update. It returns the last snapshot once the stream reports a terminal status.
func (c *Client) Watch(ctx context.Context, id uuid.UUID, onSnap func(generation.Snapshot)) (*generation.Snapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/generation-requests/"+id.String()+"/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.StreamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var last *generation.Snapshot
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var msg streamMessage
		if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &msg); err != nil {
			return last, fmt.Errorf("failed to parse event: %w", err)
		}
		snap := msg.Data
		last = &snap
		if onSnap != nil {
			onSnap(snap)
		}
		if snap.Status.Terminal() {
			return last, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return last, fmt.Errorf("stream: %w", err)
	}
	return last, errors.New("stream ended before the request finished")
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// readAPIError pulls the message out of either error body shape the API uses.
func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(raw))

	var flat struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &flat) == nil && len(flat.Error) > 0 {
		var s string
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(flat.Error, &s) == nil && s != "" {
			msg = s
		} else if json.Unmarshal(flat.Error, &nested) == nil && nested.Message != "" {
			msg = nested.Message
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
