package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/platform/broker"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ReservationChanged   = "ReservationChanged"
	ReservationRequested = "ReservationRequested"
	DeliverySent         = "DeliverySent"
	FinishedGoodProduced = "FinishedGoodProduced"
	GoodsReceived        = "GoodsReceived"
	DocumentPairVoided   = "DocumentPairVoided"
)

// Envelope is the wire shape of every event on the events topic.
type Envelope struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	Payload     json.RawMessage `json:"payload"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Emitter publishes events after commit. Publishing is best effort: failures
// are logged and never returned to the caller.
type Emitter struct {
	pub    broker.Publisher
	logger logger.Logger
}

func NewEmitter(pub broker.Publisher, log logger.Logger) *Emitter {
	if pub == nil {
		pub = broker.Noop{}
	}
	return &Emitter{pub: pub, logger: log}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, aggregateID int64, payload any) {
	if e == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error("Failed to marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	key := strconv.FormatInt(aggregateID, 10)
	env := Envelope{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		AggregateID: key,
		Payload:     raw,
		Timestamp:   time.Now().UTC(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		e.logger.Error("Failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := e.pub.Publish(ctx, key, data); err != nil {
		e.logger.Warn("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("aggregate_id", key),
			zap.Error(err),
		)
	}
}
