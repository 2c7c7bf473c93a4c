package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/domain/generation"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

// Publisher carries messages to every API instance. bus.Bus implementations satisfy it.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

const publishTimeout = 2 * time.Second

// GenerationNotifier turns persisted request changes into SSE messages on the request's
// channel. With a Publisher the message goes through the bus and comes back to this
// instance's hub via the forwarder; without one it goes straight to the local hub.
type GenerationNotifier struct {
	hub     *SSEHub
	pub     Publisher
	log     *logger.Logger
	metrics *observability.Metrics
	busName string
}

func NewGenerationNotifier(baseLog *logger.Logger, hub *SSEHub, pub Publisher, busName string, metrics *observability.Metrics) *GenerationNotifier {
	return &GenerationNotifier{
		hub:     hub,
		pub:     pub,
		log:     baseLog.With("service", "GenerationNotifier"),
		metrics: metrics,
		busName: busName,
	}
}

func ChannelFor(requestID uuid.UUID) string { return requestID.String() }

func MessageFor(snap generation.Snapshot) SSEMessage {
	ev := SSEEventGenerationUpdated
	if snap.Status.Terminal() {
		ev = SSEEventGenerationDone
	}
	return SSEMessage{Channel: ChannelFor(snap.ID), Event: ev, Data: snap}
}

func (n *GenerationNotifier) RequestUpdated(userID uuid.UUID, snap generation.Snapshot) {
	if n == nil {
		return
	}
	msg := MessageFor(snap)
	if n.pub == nil {
		n.broadcast(msg)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := n.pub.Publish(ctx, msg); err != nil {
		n.metrics.IncBusPublishError(n.busName)
		n.log.Warn("Bus publish failed, delivering locally", "request_id", snap.ID, "user_id", userID, "error", err)
		n.broadcast(msg)
	}
}

func (n *GenerationNotifier) broadcast(msg SSEMessage) {
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
}
