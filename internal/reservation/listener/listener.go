package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-stockflow-service/internal/auth"
	"github.com/fekuna/omnipos-stockflow-service/internal/events"
	"github.com/fekuna/omnipos-stockflow-service/internal/platform/logger"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation"
	"github.com/fekuna/omnipos-stockflow-service/internal/reservation/dto"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the consuming side of a Kafka topic.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// ReservationListener turns ReservationRequested events into bulk reservations.
type ReservationListener struct {
	consumer MessageReader
	uc       reservation.UseCase
	logger   logger.Logger
}

func NewReservationListener(consumer MessageReader, uc reservation.UseCase, logger logger.Logger) *ReservationListener {
	return &ReservationListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *ReservationListener) Start(ctx context.Context) {
	l.logger.Info("Starting Reservation Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Reservation Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Cancellation is a normal shutdown, not a failure.
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type RequestedEvent struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Payload   RequestedPayload `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
}

type RequestedPayload struct {
	SalesOrderID int64          `json:"sales_order_id"`
	RequestedBy  string         `json:"requested_by"`
	Items        []dto.BulkLine `json:"items"`
}

func (l *ReservationListener) processMessage(ctx context.Context, value []byte) {
	var event RequestedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != events.ReservationRequested {
		return
	}

	l.logger.Info("Processing ReservationRequested event",
		zap.String("event_id", event.EventID),
		zap.Int64("sales_order_id", event.Payload.SalesOrderID),
	)

	if event.Payload.RequestedBy != "" {
		ctx = auth.WithUserID(ctx, event.Payload.RequestedBy)
	}
	_, err := l.uc.BulkReserve(ctx, &dto.BulkReserveInput{
		SalesOrderID: event.Payload.SalesOrderID,
		Items:        event.Payload.Items,
	})
	if err != nil {
		l.logger.Error("Failed to reserve stock for requested order",
			zap.String("event_id", event.EventID),
			zap.Int64("sales_order_id", event.Payload.SalesOrderID),
			zap.Error(err),
		)
	}
}
