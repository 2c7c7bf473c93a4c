package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	jobsrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/jobs"
	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/jobs/runtime"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

var (
	ErrQueueFull      = errors.New("generation queue is full")
	ErrAlreadyStarted = errors.New("worker pool already started")
)

type Config struct {
	Concurrency int
	QueueSize   int
	// JobType selects the registered handler every submitted request runs with.
	JobType string
}

// Worker runs submitted generation requests on a fixed pool of goroutines. Each request
// runs on exactly one goroutine from start to finish.
type Worker struct {
	log      *logger.Logger
	repo     jobsrepo.GenerationRequestRepo
	registry *runtime.Registry
	notify   runtime.Notifier
	metrics  *observability.Metrics

	jobType     string
	concurrency int
	queue       chan uuid.UUID

	mu      sync.Mutex
	group   *errgroup.Group
	running map[uuid.UUID]context.CancelCauseFunc
}

func NewWorker(
	baseLog *logger.Logger,
	repo jobsrepo.GenerationRequestRepo,
	registry *runtime.Registry,
	notify runtime.Notifier,
	metrics *observability.Metrics,
	cfg Config,
) *Worker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = cfg.Concurrency * 16
	}
	return &Worker{
		log:         baseLog.With("component", "GenerationWorker"),
		repo:        repo,
		registry:    registry,
		notify:      notify,
		metrics:     metrics,
		jobType:     cfg.JobType,
		concurrency: cfg.Concurrency,
		queue:       make(chan uuid.UUID, cfg.QueueSize),
		running:     make(map[uuid.UUID]context.CancelCauseFunc),
	}
}

// Start launches the pool. Loops exit when ctx is done; in-flight runs see the same
// cancellation and leave their rows as they are.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.group != nil {
		return ErrAlreadyStarted
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		workerID := i + 1
		g.Go(func() error {
			w.runLoop(gctx, workerID)
			return nil
		})
	}
	w.group = g
	w.log.Info("Starting generation worker pool", "concurrency", w.concurrency, "queue_size", cap(w.queue))
	return nil
}

// Wait blocks until every loop has returned.
func (w *Worker) Wait() error {
	w.mu.Lock()
	g := w.group
	w.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// Submit queues a request without blocking.
func (w *Worker) Submit(id uuid.UUID) error {
	select {
	case w.queue <- id:
		w.metrics.SetQueueDepth(len(w.queue))
		return nil
	default:
		return ErrQueueFull
	}
}

// RequeuePending submits pending rows untouched for olderThan. The queue is in memory, so
// requests accepted before a restart are otherwise never started. Rows run at most once
// because starting a run is a guarded pending -> processing update.
func (w *Worker) RequeuePending(ctx context.Context, olderThan time.Duration) (int, error) {
	room := cap(w.queue) - len(w.queue)
	if olderThan <= 0 || room <= 0 {
		return 0, nil
	}
	rows, err := w.repo.ListStale(dbctx.Context{Ctx: ctx}, generation.StatusPending, time.Now().Add(-olderThan), nil, room)
	if err != nil {
		return 0, fmt.Errorf("list pending requests: %w", err)
	}
	n := 0
	for _, row := range rows {
		if err := w.Submit(row.ID); err != nil {
			w.log.Warn("Requeue stopped", "request_id", row.ID, "requeued", n, "error", err)
			break
		}
		n++
	}
	if n > 0 {
		w.log.Info("Requeued pending generation requests", "count", n)
	}
	return n, nil
}

// Cancel aborts the in-flight run for id, if this process is running it.
func (w *Worker) Cancel(id uuid.UUID) bool {
	w.mu.Lock()
	cancel, ok := w.running[id]
	w.mu.Unlock()
	if ok {
		cancel(runtime.ErrCancelRequested)
	}
	return ok
}

// Running reports how many requests are executing right now.
func (w *Worker) Running() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.running)
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID, "queued", len(w.queue))
			return
		case id := <-w.queue:
			w.metrics.SetQueueDepth(len(w.queue))
			w.process(ctx, workerID, id)
		}
	}
}

func (w *Worker) process(ctx context.Context, workerID int, id uuid.UUID) {
	req, err := w.repo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		w.log.Warn("Load generation request failed", "worker_id", workerID, "request_id", id, "error", err)
		return
	}
	if req.Status != generation.StatusPending {
		w.log.Info("Skipping request that is not pending", "worker_id", workerID, "request_id", id, "status", req.Status)
		return
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	w.track(id, cancel)
	defer func() {
		w.untrack(id)
		cancel(nil)
	}()

	jc := runtime.NewContext(runCtx, req, w.repo, w.notify, w.log)
	h, err := w.registry.Resolve(w.jobType)
	if err != nil {
		w.log.Error("No handler for generation request", "worker_id", workerID, "request_id", id, "error", err)
		jc.Fail(err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.metrics.IncWorkerPanic()
			w.log.Error("Generation handler panic", "worker_id", workerID, "request_id", id, "panic", r)
			jc.Fail(&panicError{Val: r})
		}
	}()

	runErr := h.Run(jc)
	switch {
	case runErr == nil:
	case errors.Is(runErr, runtime.ErrNotPending):
		w.log.Info("Request left pending before start", "worker_id", workerID, "request_id", id)
	case runCtx.Err() != nil:
		// shutdown; the row stays processing
	default:
		jc.Fail(runErr)
	}
}

func (w *Worker) track(id uuid.UUID, cancel context.CancelCauseFunc) {
	w.mu.Lock()
	w.running[id] = cancel
	w.mu.Unlock()
}

func (w *Worker) untrack(id uuid.UUID) {
	w.mu.Lock()
	delete(w.running, id)
	w.mu.Unlock()
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
