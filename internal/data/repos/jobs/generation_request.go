package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

// GenerationRequestRepo is the narrow persistence surface for course_generation_requests.
// Lookups of a missing row return gorm.ErrRecordNotFound.
type GenerationRequestRepo interface {
	Create(dbc dbctx.Context, req *types.GenerationRequest) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationRequest, error)
	GetStatus(dbc dbctx.Context, id uuid.UUID) (types.Status, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, allowed []types.Status, updates map[string]interface{}) (bool, error)
	UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowed []types.Status, updates map[string]interface{}) (bool, error)
	ListStale(dbc dbctx.Context, status types.Status, before time.Time, ids []uuid.UUID, limit int) ([]*types.GenerationRequest, error)
}

type generationRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRequestRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRequestRepo {
	return &generationRequestRepo{
		db:  db,
		log: baseLog.With("repo", "GenerationRequestRepo"),
	}
}

func (r *generationRequestRepo) Create(dbc dbctx.Context, req *types.GenerationRequest) error {
	if req == nil {
		return nil
	}
	return dbc.DB(r.db).Create(req).Error
}

func (r *generationRequestRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationRequest, error) {
	var out types.GenerationRequest
	if err := dbc.DB(r.db).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *generationRequestRepo) GetStatus(dbc dbctx.Context, id uuid.UUID) (types.Status, error) {
	var row struct {
		Status string
	}
	err := dbc.DB(r.db).
		Model(&types.GenerationRequest{}).
		Select("status").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return "", err
	}
	return types.Status(row.Status), nil
}

func (r *generationRequestRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.GenerationRequest{}).
		Where("id = ?", id).
		Updates(withUpdatedAt(updates)).Error
}

// UpdateFieldsIfStatus applies updates only while the row is in one of the allowed statuses.
// The boolean reports whether a row was changed.
func (r *generationRequestRepo) UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, allowed []types.Status, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil || len(allowed) == 0 {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.GenerationRequest{}).
		Where("id = ?", id).
		Where("status IN ?", statusStrings(allowed)).
		Updates(withUpdatedAt(updates))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *generationRequestRepo) UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowed []types.Status, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	q := dbc.DB(r.db).
		Model(&types.GenerationRequest{}).
		Where("id = ?", id)
	if len(disallowed) == 1 {
		q = q.Where("status <> ?", string(disallowed[0]))
	} else if len(disallowed) > 1 {
		q = q.Where("status NOT IN ?", statusStrings(disallowed))
	}
	res := q.Updates(withUpdatedAt(updates))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func withUpdatedAt(updates map[string]interface{}) map[string]interface{} {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return updates
}

func statusStrings(in []types.Status) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// ListStale returns rows in status whose last write is older than before, oldest first.
// A non-empty ids restricts the result to those rows before limit applies.
func (r *generationRequestRepo) ListStale(dbc dbctx.Context, status types.Status, before time.Time, ids []uuid.UUID, limit int) ([]*types.GenerationRequest, error) {
	q := dbc.DB(r.db).
		Where("status = ?", string(status)).
		Where("updated_at < ?", before)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	q = q.Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.GenerationRequest
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
