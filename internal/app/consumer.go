package app

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"digiwave-dashboard/internal/bootstrap"
	"digiwave-dashboard/internal/config"
	"digiwave-dashboard/internal/events"
	"digiwave-dashboard/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const auditConsumerGroup = "digiwave-attendance-audit"

// RunConsumer tails the attendance transition topic into the audit log
// until SIGINT or SIGTERM.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.AttendanceSessionTopic,
		GroupID:        auditConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeAttendanceTransitions(ctx, reader, AuditTransition(bootstrap.NewZapAuditLogger(logger)), logger)
	logger.Info("consumer shutting down")
	return nil
}

// AuditTransition records each transition as an audit entry, e.g.
// attendance.clocked_in becomes ATTENDANCE_CLOCKED_IN.
func AuditTransition(audit bootstrap.AuditLogger) consumer.AttendanceEventHandler {
	return func(ctx context.Context, e events.AttendanceTransitionedEvent) error {
		audit.Log(ctx, bootstrap.AuditLog{
			Action:  strings.ToUpper(strings.ReplaceAll(e.EventType, ".", "_")),
			Message: fmt.Sprintf("%s -> %s", e.FromState, e.ToState),
			Meta: map[string]any{
				"event_id":    e.EventID,
				"user_id":     e.UserID,
				"employee_id": e.EmployeeID,
				"company_id":  e.CompanyID,
				"occurred_at": e.OccurredAt,
			},
		})
		return nil
	}
}
