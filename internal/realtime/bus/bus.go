package bus

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime"
)

const (
	KindLocal    = "local"
	KindRedis    = "redis"
	KindPostgres = "postgres"

	defaultChannel = "skillsprint_sse"
)

// Bus relays SSE messages between API instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

type Config struct {
	Kind        string
	RedisAddr   string
	Channel     string
	PostgresDSN string
}

// New returns the configured bus, or nil for the local (single instance) mode.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Bus, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", KindLocal:
		return nil, nil
	case KindRedis:
		return NewRedisBus(ctx, log, cfg.RedisAddr, cfg.Channel)
	case KindPostgres:
		return NewPostgresBus(ctx, log, cfg.PostgresDSN, cfg.Channel)
	default:
		return nil, fmt.Errorf("unknown realtime bus %q", cfg.Kind)
	}
}

func channelOrDefault(ch string) string {
	if ch = strings.TrimSpace(ch); ch != "" {
		return ch
	}
	return defaultChannel
}
