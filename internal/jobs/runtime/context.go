package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	jobsrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/jobs"
	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

// ErrCancelRequested is the cancel cause used when a client cancels a running request.
var ErrCancelRequested = errors.New("generation cancel requested")

// ErrNotPending is returned by Start when the row has already left pending.
var ErrNotPending = errors.New("generation request is not pending")

const (
	MsgStarting  = "Starting generation"
	MsgCancelled = "Generation cancelled"
	MsgFailed    = "Generation failed"
	MsgCompleted = "Course generation complete"
)

// Notifier receives a snapshot after every accepted write.
type Notifier interface {
	RequestUpdated(userID uuid.UUID, snap generation.Snapshot)
}

/*
Context is the execution handle for one generation run. Pipelines never write the
course_generation_requests row directly; every status, progress and course_data change
goes through these methods, which keep status forward-only, progress monotonic and
terminal rows untouched.
*/
type Context struct {
	Ctx     context.Context
	Request *generation.GenerationRequest
	Repo    jobsrepo.GenerationRequestRepo
	Notify  Notifier
	Log     *logger.Logger

	mu           sync.Mutex
	lastProgress int
}

func NewContext(ctx context.Context, req *generation.GenerationRequest, repo jobsrepo.GenerationRequestRepo, notify Notifier, baseLog *logger.Logger) *Context {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	c := &Context{
		Ctx:     ctxutil.Default(ctx),
		Request: req,
		Repo:    repo,
		Notify:  notify,
	}
	if req != nil {
		c.lastProgress = req.Progress
		c.Log = baseLog.With("request_id", req.ID.String(), "user_id", req.UserID.String())
	} else {
		c.Log = baseLog
	}
	return c
}

func (c *Context) RequestID() uuid.UUID {
	if c == nil || c.Request == nil {
		return uuid.Nil
	}
	return c.Request.ID
}

// CourseRequest decodes request_data.
func (c *Context) CourseRequest() (generation.CourseRequest, error) {
	var out generation.CourseRequest
	if c.Request == nil || len(c.Request.RequestData) == 0 {
		return out, fmt.Errorf("request_data is empty")
	}
	if err := json.Unmarshal(c.Request.RequestData, &out); err != nil {
		return out, fmt.Errorf("decode request_data: %w", err)
	}
	return out, nil
}

// CancelRequested reports whether the run context was cancelled by a client cancel.
func (c *Context) CancelRequested() bool {
	return errors.Is(context.Cause(c.Ctx), ErrCancelRequested)
}

// writeCtx outlives the run context so terminal writes still land after a cancel.
func (c *Context) writeCtx() dbctx.Context {
	return dbctx.Context{Ctx: context.WithoutCancel(c.Ctx)}
}

// Start moves pending to processing at progress 5.
func (c *Context) Start() error {
	ok, err := c.Repo.UpdateFieldsIfStatus(c.writeCtx(), c.RequestID(), []generation.Status{generation.StatusPending}, map[string]interface{}{
		"status":         string(generation.StatusProcessing),
		"progress":       5,
		"status_message": MsgStarting,
	})
	if err != nil {
		return fmt.Errorf("start generation: %w", err)
	}
	if !ok {
		return ErrNotPending
	}
	c.mu.Lock()
	c.Request.Status = generation.StatusProcessing
	c.Request.StatusMessage = MsgStarting
	c.Request.Progress = 5
	c.lastProgress = 5
	c.mu.Unlock()
	c.notify()
	return nil
}

// Progress records a non-terminal update. Progress never moves backwards and write
// failures are logged, not returned.
func (c *Context) Progress(pct int, msg string) {
	c.mu.Lock()
	if pct < c.lastProgress {
		pct = c.lastProgress
	}
	if pct > 100 {
		pct = 100
	}
	c.mu.Unlock()

	ok, err := c.Repo.UpdateFieldsUnlessStatus(c.writeCtx(), c.RequestID(), generation.TerminalStatuses, map[string]interface{}{
		"progress":       pct,
		"status_message": msg,
	})
	if err != nil {
		c.Log.Warn("Progress write failed (continuing)", "progress", pct, "error", err)
		return
	}
	if !ok {
		return
	}
	c.mu.Lock()
	c.lastProgress = pct
	c.Request.Progress = pct
	c.Request.StatusMessage = msg
	c.mu.Unlock()
	c.notify()
}

// SaveCourseData persists partial course data. Failures are logged.
func (c *Context) SaveCourseData(v any) {
	data, err := marshalJSON(v)
	if err != nil {
		c.Log.Warn("Encode course_data failed", "error", err)
		return
	}
	ok, err := c.Repo.UpdateFieldsUnlessStatus(c.writeCtx(), c.RequestID(), generation.TerminalStatuses, map[string]interface{}{
		"course_data": data,
	})
	if err != nil {
		c.Log.Warn("course_data write failed (continuing)", "error", err)
		return
	}
	if ok {
		c.mu.Lock()
		c.Request.CourseData = data
		c.mu.Unlock()
	}
}

// Fail marks the run failed unless it already reached a terminal status.
func (c *Context) Fail(cause error) bool {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	ok, err := c.Repo.UpdateFieldsUnlessStatus(c.writeCtx(), c.RequestID(), generation.TerminalStatuses, map[string]interface{}{
		"status":         string(generation.StatusFailed),
		"status_message": MsgFailed,
		"error_message":  msg,
	})
	if err != nil {
		c.Log.Error("Fail write failed", "error", err, "cause", msg)
		return false
	}
	if !ok {
		return false
	}
	c.mu.Lock()
	c.Request.Status = generation.StatusFailed
	c.Request.StatusMessage = MsgFailed
	c.Request.ErrorMessage = &msg
	c.mu.Unlock()
	c.notify()
	return true
}

// Cancel records the cancelled status. A row already cancelled by the client still gets
// the final message; completed and failed rows are left alone.
func (c *Context) Cancel() bool {
	ok, err := c.Repo.UpdateFieldsUnlessStatus(c.writeCtx(), c.RequestID(),
		[]generation.Status{generation.StatusCompleted, generation.StatusFailed},
		map[string]interface{}{
			"status":         string(generation.StatusCancelled),
			"status_message": MsgCancelled,
		})
	if err != nil {
		c.Log.Error("Cancel write failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	c.mu.Lock()
	c.Request.Status = generation.StatusCancelled
	c.Request.StatusMessage = MsgCancelled
	c.mu.Unlock()
	c.notify()
	return true
}

// Complete stores the final course data and marks the run completed. It returns false when
// the row turned terminal first (typically a cancel that raced the last sprint).
func (c *Context) Complete(v any) (bool, error) {
	data, err := marshalJSON(v)
	if err != nil {
		return false, fmt.Errorf("encode course_data: %w", err)
	}
	ok, err := c.Repo.UpdateFieldsUnlessStatus(c.writeCtx(), c.RequestID(), generation.TerminalStatuses, map[string]interface{}{
		"status":            string(generation.StatusCompleted),
		"progress":          100,
		"status_message":    MsgCompleted,
		"content_generated": true,
		"course_data":       data,
	})
	if err != nil {
		return false, fmt.Errorf("complete generation: %w", err)
	}
	if !ok {
		return false, nil
	}
	c.mu.Lock()
	c.Request.Status = generation.StatusCompleted
	c.Request.Progress = 100
	c.Request.StatusMessage = MsgCompleted
	c.Request.ContentGenerated = true
	c.Request.CourseData = data
	c.lastProgress = 100
	c.mu.Unlock()
	c.notify()
	return true, nil
}

func (c *Context) notify() {
	if c.Notify == nil || c.Request == nil {
		return
	}
	c.mu.Lock()
	snap := c.Request.Snapshot()
	userID := c.Request.UserID
	c.mu.Unlock()
	c.Notify.RequestUpdated(userID, snap)
}

func marshalJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
