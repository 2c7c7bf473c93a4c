package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime"
)

func TestNew_Local(t *testing.T) {
	for _, kind := range []string{"", "local", " LOCAL "} {
		b, err := New(context.Background(), logger.Nop(), Config{Kind: kind})
		require.NoError(t, err)
		assert.Nil(t, b, "kind %q", kind)
	}
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := New(ctx, logger.Nop(), Config{Kind: "kafka"})
	assert.ErrorContains(t, err, "unknown realtime bus")

	_, err = New(ctx, logger.Nop(), Config{Kind: KindRedis})
	assert.ErrorContains(t, err, "REDIS_ADDR")

	_, err = New(ctx, logger.Nop(), Config{Kind: KindPostgres})
	assert.ErrorContains(t, err, "DSN")
}

func TestDecodeMessage(t *testing.T) {
	msg, err := decodeMessage([]byte(`{"channel":"abc","event":"GenerationDone","data":{"progress":100}}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", msg.Channel)
	assert.Equal(t, realtime.SSEEventGenerationDone, msg.Event)
	assert.Equal(t, map[string]any{"progress": float64(100)}, msg.Data)

	_, err = decodeMessage([]byte(`{"event":"GenerationDone"}`))
	assert.Error(t, err)
	_, err = decodeMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestUninitializedBuses(t *testing.T) {
	var rb *redisBus
	assert.Error(t, rb.Publish(context.Background(), realtime.SSEMessage{Channel: "x"}))
	assert.NoError(t, rb.Close())

	var pb *postgresBus
	assert.Error(t, pb.Publish(context.Background(), realtime.SSEMessage{Channel: "x"}))
	assert.Error(t, pb.StartForwarder(context.Background(), func(realtime.SSEMessage) {}))
	assert.NoError(t, pb.Close())
}

func TestChannelOrDefault(t *testing.T) {
	assert.Equal(t, defaultChannel, channelOrDefault("  "))
	assert.Equal(t, "custom", channelOrDefault("custom"))
}
