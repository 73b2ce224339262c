package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisherSpy struct {
	routingKey string
	events     []any
	err        error
}

func (p *publisherSpy) Publish(ctx context.Context, routingKey string, event any) error {
	p.routingKey = routingKey
	p.events = append(p.events, event)
	return p.err
}

func (p *publisherSpy) Close() error { return nil }

func TestEmitPublishesEnvelope(t *testing.T) {
	spy := &publisherSpy{}
	emitter := NewAuditEmitter(spy, "audit.messenger", "messenger-api", "test")

	userID := int64(3)
	emitter.Emit(context.Background(), EventUserLogin, "alice", "req-1", &userID)

	require.Len(t, spy.events, 1)
	assert.Equal(t, "audit.messenger", spy.routingKey)

	envelope, ok := spy.events[0].(AuditEnvelope)
	require.True(t, ok)
	assert.Equal(t, 1, envelope.SchemaVersion)
	assert.Equal(t, EventUserLogin, envelope.EventType)
	assert.Equal(t, "messenger-api", envelope.Service)
	assert.Equal(t, "req-1", envelope.RequestID)
	require.NotNil(t, envelope.UserID)
	assert.Equal(t, int64(3), *envelope.UserID)
	assert.NotEmpty(t, envelope.OccurredAt)
}

func TestEmitNilEmitterIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), EventUserLogin, "", "", nil)
}

func TestEmitSwallowsPublishError(t *testing.T) {
	spy := &publisherSpy{err: assert.AnError}
	emitter := NewAuditEmitter(spy, "audit.messenger", "messenger-api", "test")

	emitter.Emit(context.Background(), EventChatDeleted, "", "req-2", nil)
	require.Len(t, spy.events, 1)
}
