package producer

import (
	"context"
	"encoding/json"

	"digiwave-dashboard/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafkago.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type EventPublisher interface {
	PublishAttendanceTransitioned(ctx context.Context, event events.AttendanceTransitionedEvent) error
}

type noopEventPublisher struct{}

func NewNoopPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) PublishAttendanceTransitioned(context.Context, events.AttendanceTransitionedEvent) error {
	return nil
}

type kafkaEventPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

func NewKafkaPublisher(writer MessageWriter, logger ...*zap.Logger) EventPublisher {
	l := zap.L().Named("kafka.producer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("kafka.producer")
	}
	return &kafkaEventPublisher{writer: writer, logger: l}
}

func (p *kafkaEventPublisher) PublishAttendanceTransitioned(
	ctx context.Context,
	event events.AttendanceTransitionedEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafkago.Message{
		Topic: events.AttendanceSessionTopic,
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte("attendance_session")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish attendance event failed",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return err
	}

	p.logger.Debug("attendance event published",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("topic", events.AttendanceSessionTopic),
	)
	return nil
}
