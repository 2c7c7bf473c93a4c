package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	jobsrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/jobs"
	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/jobs/runtime"
	"github.com/yungbote/skillsprint-backend/internal/jobs/worker"
	"github.com/yungbote/skillsprint-backend/internal/platform/apierr"
	"github.com/yungbote/skillsprint-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

var (
	ErrNotPending       = errors.New("generation request is not pending")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRequestNotFound  = errors.New("generation request not found")
)

// Dispatcher hands a pending request to the worker pool and aborts in-flight runs.
type Dispatcher interface {
	Submit(id uuid.UUID) error
	Cancel(id uuid.UUID) bool
}

type GenerationService interface {
	CreateForRequestUser(dbc dbctx.Context, req generation.CourseRequest) (*generation.GenerationRequest, error)
	GetForRequestUser(dbc dbctx.Context, id uuid.UUID) (*generation.GenerationRequest, error)
	// Trigger stores req on a pending row and queues the run. It does not wait for it.
	Trigger(dbc dbctx.Context, id uuid.UUID, req generation.CourseRequest) error
	CancelForRequestUser(dbc dbctx.Context, id uuid.UUID) (*generation.GenerationRequest, error)
}

type generationService struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     jobsrepo.GenerationRequestRepo
	dispatch Dispatcher
	notify   runtime.Notifier
	validate *validator.Validate
}

func NewGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo jobsrepo.GenerationRequestRepo,
	dispatch Dispatcher,
	notify runtime.Notifier,
) GenerationService {
	return &generationService{
		db:       db,
		log:      baseLog.With("service", "GenerationService"),
		repo:     repo,
		dispatch: dispatch,
		notify:   notify,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *generationService) CreateForRequestUser(dbc dbctx.Context, req generation.CourseRequest) (*generation.GenerationRequest, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthenticated", ErrNotAuthenticated)
	}
	req = req.Trimmed()
	if err := s.validateCourseRequest(req); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request_data: %w", err)
	}
	row := &generation.GenerationRequest{
		UserID:      rd.UserID,
		Status:      generation.StatusPending,
		RequestData: datatypes.JSON(payload),
	}
	if err := s.repo.Create(s.dbc(dbc), row); err != nil {
		return nil, fmt.Errorf("create generation request: %w", err)
	}
	s.log.Info("Generation request created", "request_id", row.ID, "user_id", rd.UserID)
	return row, nil
}

func (s *generationService) GetForRequestUser(dbc dbctx.Context, id uuid.UUID) (*generation.GenerationRequest, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthenticated", ErrNotAuthenticated)
	}
	row, err := s.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if row.UserID != rd.UserID {
		return nil, apierr.NotFound("not_found", ErrRequestNotFound)
	}
	return row, nil
}

func (s *generationService) Trigger(dbc dbctx.Context, id uuid.UUID, req generation.CourseRequest) error {
	if id == uuid.Nil {
		return apierr.BadRequest("invalid_request", errors.New("requestId is required"))
	}
	req = req.Trimmed()
	if err := s.validateCourseRequest(req); err != nil {
		return err
	}
	row, err := s.load(dbc, id)
	if err != nil {
		return err
	}
	if rd := ctxutil.GetRequestData(dbc.Ctx); rd != nil && rd.UserID != uuid.Nil && rd.UserID != row.UserID {
		return apierr.NotFound("not_found", ErrRequestNotFound)
	}
	if row.Status != generation.StatusPending {
		return apierr.Conflict("not_pending", fmt.Errorf("%w (status=%s)", ErrNotPending, row.Status))
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request_data: %w", err)
	}
	ok, err := s.repo.UpdateFieldsIfStatus(s.dbc(dbc), id, []generation.Status{generation.StatusPending}, map[string]interface{}{
		"request_data": datatypes.JSON(payload),
	})
	if err != nil {
		return fmt.Errorf("store request_data: %w", err)
	}
	if !ok {
		return apierr.Conflict("not_pending", ErrNotPending)
	}

	if err := s.dispatch.Submit(id); err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			return apierr.Unavailable("queue_full", err)
		}
		return fmt.Errorf("dispatch generation: %w", err)
	}
	s.log.Info("Generation dispatched", "request_id", id, "user_id", row.UserID, "topic", req.Topic)
	return nil
}

// CancelForRequestUser moves a pending or processing row to cancelled and aborts the
// in-flight run when this instance owns it. Terminal rows are returned unchanged.
func (s *generationService) CancelForRequestUser(dbc dbctx.Context, id uuid.UUID) (*generation.GenerationRequest, error) {
	row, err := s.GetForRequestUser(dbc, id)
	if err != nil {
		return nil, err
	}
	if row.Status.Terminal() {
		return row, nil
	}
	ok, err := s.repo.UpdateFieldsIfStatus(s.dbc(dbc), id,
		[]generation.Status{generation.StatusPending, generation.StatusProcessing},
		map[string]interface{}{
			"status":         string(generation.StatusCancelled),
			"status_message": runtime.MsgCancelled,
		})
	if err != nil {
		return nil, fmt.Errorf("cancel generation: %w", err)
	}
	aborted := s.dispatch.Cancel(id)
	s.log.Info("Generation cancel requested", "request_id", id, "updated", ok, "aborted_in_flight", aborted)

	row, err = s.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if ok && s.notify != nil {
		s.notify.RequestUpdated(row.UserID, row.Snapshot())
	}
	return row, nil
}

func (s *generationService) load(dbc dbctx.Context, id uuid.UUID) (*generation.GenerationRequest, error) {
	if id == uuid.Nil {
		return nil, apierr.BadRequest("invalid_request", errors.New("missing request id"))
	}
	row, err := s.repo.GetByID(s.dbc(dbc), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("not_found", ErrRequestNotFound)
		}
		return nil, fmt.Errorf("load generation request: %w", err)
	}
	return row, nil
}

func (s *generationService) dbc(dbc dbctx.Context) dbctx.Context {
	if dbc.Tx == nil {
		dbc.Tx = s.db
	}
	return dbc
}

func (s *generationService) validateCourseRequest(req generation.CourseRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed %s", jsonName(fe.Field()), fe.Tag()))
		}
		return apierr.BadRequest("invalid_request", fmt.Errorf("invalid courseRequest: %s", strings.Join(parts, ", ")))
	}
	return apierr.BadRequest("invalid_request", err)
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
