package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeRow(w http.ResponseWriter, status int, row generation.GenerationRequest) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"request": row})
}

func TestCreateCreatesThenTriggers(t *testing.T) {
	id := uuid.New()
	var calls []string
	var triggered map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/generation-requests":
			var body generation.CourseRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Go", body.Topic)
			writeRow(w, http.StatusCreated, generation.GenerationRequest{ID: id, Status: generation.StatusPending})
		case "/functions/v1/generate-course-content":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&triggered))
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "requestId": id})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := runCLI(t, "create", "--url", srv.URL, "--token", "tok",
		"--topic", "Go", "--audience", "devs", "--level", "beginner", "--duration", "2 weeks", "--watch=false")
	require.NoError(t, err)
	assert.Equal(t, []string{"POST /api/generation-requests", "POST /functions/v1/generate-course-content"}, calls)
	assert.Equal(t, id.String(), triggered["requestId"])
	assert.Contains(t, out, id.String())
}

func TestStatusPrintsRow(t *testing.T) {
	id := uuid.New()
	msg := "LLM returned empty response"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generation-requests/"+id.String(), r.URL.Path)
		writeRow(w, http.StatusOK, generation.GenerationRequest{
			ID:            id,
			Status:        generation.StatusFailed,
			Progress:      30,
			StatusMessage: "Generation failed",
			ErrorMessage:  &msg,
		})
	}))
	defer srv.Close()

	out, err := runCLI(t, "status", id.String(), "--url", srv.URL, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, " 30%")
	assert.Contains(t, out, msg)
}

func TestStatusReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"generation request not found","code":"not_found"}}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, "status", uuid.NewString(), "--url", srv.URL, "--token", "tok")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "generation request not found", apiErr.Message)
}

func TestStatusRejectsBadID(t *testing.T) {
	_, err := runCLI(t, "status", "not-a-uuid", "--token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request id")
}

func TestCancelPrintsNewStatus(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generation-requests/"+id.String()+"/cancel", r.URL.Path)
		writeRow(w, http.StatusOK, generation.GenerationRequest{ID: id, Status: generation.StatusCancelled})
	}))
	defer srv.Close()

	out, err := runCLI(t, "cancel", id.String(), "--url", srv.URL, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")
}

func sseLine(t *testing.T, event string, snap generation.Snapshot) string {
	raw, err := json.Marshal(map[string]any{"channel": snap.ID.String(), "event": event, "data": snap})
	assert.NoError(t, err)
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, raw)
}

func TestWatchFollowsUntilTerminal(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generation-requests/"+id.String()+"/events", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, ": ping\n\n")
		_, _ = fmt.Fprint(w, sseLine(t, "GenerationUpdated", generation.Snapshot{ID: id, Status: generation.StatusProcessing, Progress: 40, StatusMessage: "Generating module 2/5"}))
		_, _ = fmt.Fprint(w, sseLine(t, "GenerationDone", generation.Snapshot{ID: id, Status: generation.StatusCompleted, Progress: 100, StatusMessage: "Course generation complete", ContentGenerated: true}))
	}))
	defer srv.Close()

	out, err := runCLI(t, "watch", id.String(), "--url", srv.URL, "--token", "tok")
	require.NoError(t, err)
	assert.Contains(t, out, "Generating module 2/5")
	assert.Contains(t, out, "Course generation complete")
}

func TestWatchReturnsErrorForFailedRun(t *testing.T) {
	id := uuid.New()
	msg := "boom"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, sseLine(t, "GenerationDone", generation.Snapshot{ID: id, Status: generation.StatusFailed, ErrorMessage: &msg}))
	}))
	defer srv.Close()

	_, err := runCLI(t, "watch", id.String(), "--url", srv.URL, "--token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWatchStreamEndsEarly(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, sseLine(t, "GenerationUpdated", generation.Snapshot{ID: id, Status: generation.StatusProcessing, Progress: 10}))
	}))
	defer srv.Close()

	_, err := runCLI(t, "watch", id.String(), "--url", srv.URL, "--token", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream ended")
}

func TestMissingToken(t *testing.T) {
	_, err := runCLI(t, "status", uuid.NewString(), "--token", "")
	require.ErrorIs(t, err, errMissingToken)
}

func TestProgressBarClamps(t *testing.T) {
	assert.Contains(t, progressBar(-5), "  0%")
	assert.Contains(t, progressBar(150), "100%")
}
