package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime"
)

// Postgres limits NOTIFY payloads to just under 8000 bytes.
const maxNotifyPayload = 7900

type postgresBus struct {
	log     *logger.Logger
	pool    *pgxpool.Pool
	channel string
	retry   time.Duration
}

// NewPostgresBus relays messages with LISTEN/NOTIFY on the application database.
func NewPostgresBus(ctx context.Context, log *logger.Logger, dsn, channel string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("missing postgres DSN for realtime bus")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &postgresBus{
		log:     log.With("service", "PostgresSSEBus"),
		pool:    pool,
		channel: channelOrDefault(channel),
		retry:   time.Second,
	}, nil
}

func (b *postgresBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.pool == nil {
		return fmt.Errorf("postgres SSE bus not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if len(raw) > maxNotifyPayload {
		return fmt.Errorf("sse payload too large for NOTIFY (%d bytes)", len(raw))
	}
	_, err = b.pool.Exec(ctx, "SELECT pg_notify($1, $2)", b.channel, string(raw))
	return err
}

func (b *postgresBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.pool == nil {
		return fmt.Errorf("postgres SSE bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	conn, err := b.listen(ctx)
	if err != nil {
		return err
	}
	go b.forward(ctx, conn, onMsg)
	return nil
}

func (b *postgresBus) listen(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen conn: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", b.channel, err)
	}
	return conn, nil
}

// forward owns conn and re-listens on a fresh connection after errors.
func (b *postgresBus) forward(ctx context.Context, conn *pgxpool.Conn, onMsg func(m realtime.SSEMessage)) {
	defer func() {
		if conn != nil {
			conn.Release()
		}
	}()
	for {
		if conn == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.retry):
			}
			var err error
			if conn, err = b.listen(ctx); err != nil {
				b.log.Warn("Postgres re-listen failed", "error", err)
				conn = nil
				continue
			}
		}
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.log.Warn("Postgres notification wait failed", "error", err)
			// the connection state is unknown; drop it rather than return it to the pool
			_ = conn.Conn().Close(context.Background())
			conn.Release()
			conn = nil
			continue
		}
		msg, err := decodeMessage([]byte(n.Payload))
		if err != nil {
			b.log.Warn("Bad postgres SSE payload", "error", err)
			continue
		}
		onMsg(msg)
	}
}

func (b *postgresBus) Close() error {
	if b == nil || b.pool == nil {
		return nil
	}
	b.pool.Close()
	return nil
}
