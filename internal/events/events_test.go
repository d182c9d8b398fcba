package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/events/eventstest"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, []byte) error { return errors.New("down") }
func (failingPublisher) Close() error                                  { return nil }

func TestEmitWrapsPayload(t *testing.T) {
	rec := &eventstest.Recorder{}
	e := events.NewEmitter(rec, logger.NewNop())

	e.Emit(context.Background(), events.DeliverySent, 12, map[string]any{"dn_no": "MDN69-001"})

	require.Len(t, rec.Messages, 1)
	msg := rec.Messages[0]
	assert.Equal(t, events.DeliverySent, msg.EventType)
	assert.Equal(t, "12", msg.AggregateID)
	assert.NotEmpty(t, msg.EventID)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "MDN69-001", payload["dn_no"])
}

func TestEmitSwallowsPublishFailure(t *testing.T) {
	e := events.NewEmitter(failingPublisher{}, logger.NewNop())
	assert.NotPanics(t, func() {
		e.Emit(context.Background(), events.GoodsReceived, 1, struct{}{})
	})

	var nilEmitter *events.Emitter
	assert.NotPanics(t, func() {
		nilEmitter.Emit(context.Background(), events.GoodsReceived, 1, struct{}{})
	})
}
