package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/jobs/pipeline/personalized_path"
	"github.com/yungbote/skillsprint-backend/internal/platform/apierr"
	"github.com/yungbote/skillsprint-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

const RoleServiceRole = "service_role"

type PersonalizedPathRunner interface {
	Run(ctx context.Context, userID, basePathID uuid.UUID) (*personalized_path.Result, error)
}

type PersonalizedPathService interface {
	Generate(ctx context.Context, userID, basePathID uuid.UUID) (*personalized_path.Result, error)
}

type personalizedPathService struct {
	log    *logger.Logger
	runner PersonalizedPathRunner
}

func NewPersonalizedPathService(baseLog *logger.Logger, runner PersonalizedPathRunner) PersonalizedPathService {
	return &personalizedPathService{
		log:    baseLog.With("service", "PersonalizedPathService"),
		runner: runner,
	}
}

// Generate runs the personalization synchronously. Authenticated callers may only
// generate paths for themselves unless they carry the service role.
func (s *personalizedPathService) Generate(ctx context.Context, userID, basePathID uuid.UUID) (*personalized_path.Result, error) {
	if userID == uuid.Nil || basePathID == uuid.Nil {
		return nil, apierr.BadRequest("invalid_request", errors.New("userId and basePathId are required"))
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil &&
		rd.UserID != userID && rd.Role != RoleServiceRole {
		return nil, apierr.Forbidden("forbidden", errors.New("cannot personalize a path for another user"))
	}
	res, err := s.runner.Run(ctx, userID, basePathID)
	if err != nil {
		if errors.Is(err, personalized_path.ErrBasePathNotFound) {
			return nil, apierr.NotFound("not_found", err)
		}
		return nil, err
	}
	return res, nil
}
