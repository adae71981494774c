package consumer

import (
	"context"
	"encoding/json"

	"digiwave-dashboard/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type AttendanceEventHandler func(ctx context.Context, event events.AttendanceTransitionedEvent) error

// ConsumeAttendanceTransitions feeds every transition event to handle until
// ctx is done. Undecodable messages are committed and skipped; a failed
// handle leaves the message uncommitted for redelivery.
func ConsumeAttendanceTransitions(
	ctx context.Context,
	reader MessageReader,
	handle AttendanceEventHandler,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.attendance_session")
	log.Info("attendance transition consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("attendance transition consumer stopped")
				return
			}
			log.Error("fetch attendance transition message failed", zap.Error(err))
			continue
		}

		var event events.AttendanceTransitionedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode attendance transition event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := handle(ctx, event); err != nil {
			log.Error("handle attendance transition failed",
				zap.String("event_id", event.EventID),
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit attendance transition message failed", zap.Error(err))
			continue
		}

		log.Debug("attendance transition handled",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
		)
	}
}
