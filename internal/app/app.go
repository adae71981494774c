package app

import (
	"context"
	"errors"
	"net/http"

	"digiwave-dashboard/internal/attendance"
	"digiwave-dashboard/internal/config"
	"digiwave-dashboard/internal/leave"
	"digiwave-dashboard/internal/messaging/kafka/producer"
	"digiwave-dashboard/internal/notification"
	"digiwave-dashboard/internal/rbac"
	"digiwave-dashboard/internal/shared/connection"
	"digiwave-dashboard/internal/shared/upstream"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	connectRetries = 5
	inboxCapacity  = 50
)

// App is the wired attendance BFF.
type App struct {
	Manager *attendance.Manager

	closers []func() error
	logger  *zap.Logger
}

// BuildApp connects the optional infrastructure, wires the attendance
// module and registers its routes on router.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger.Named("app")}

	enforcer, err := rbac.NewEnforcer(rbac.DetailsPolicies(cfg.RBAC.DetailsRoles))
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis.Addr, connectRetries)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		a.logger.Info("redis connection established")
	}

	publisher := producer.NewNoopPublisher()
	if cfg.Kafka.Broker != "" {
		writer, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, connectRetries)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, writer.Close)
		publisher = producer.NewKafkaPublisher(writer, logger)
		a.logger.Info("kafka publisher enabled", zap.String("broker", cfg.Kafka.Broker))
	}

	backend := upstream.New(cfg.UpstreamBaseURL, &http.Client{Timeout: cfg.Session.MutationTimeout}, logger)
	leaves := leave.NewCachedLookup(leave.NewHTTPLookup(backend, logger), rdb, cfg.Redis.LeaveCacheTTL, logger)

	inbox := notification.NewInbox(inboxCapacity)
	notifier := notification.Multi{inbox, notification.NewLogNotifier(logger)}

	a.Manager = attendance.NewManager(
		attendance.SessionConfig{
			PollInterval:    cfg.Session.PollInterval,
			TickInterval:    cfg.Session.TickInterval,
			RefetchDelay:    cfg.Session.RefetchDelay,
			MutationTimeout: cfg.Session.MutationTimeout,
			DefaultShift: attendance.ShiftWindow{
				StartHour: cfg.Shift.DefaultStartHour,
				EndHour:   cfg.Shift.DefaultEndHour,
			},
			Location: cfg.Location(),
		},
		attendance.Deps{
			Client:    attendance.NewHTTPClient(backend, logger),
			Leaves:    leaves,
			Notifier:  notifier,
			Publisher: publisher,
		},
		cfg.Session.IdleTimeout,
		logger,
	)
	a.Manager.OnUnmount(func(id attendance.Identity) { inbox.Forget(id.UserID) })

	registerModules(router, cfg, a.Manager, inbox, rbac.NewService(enforcer, logger), rdb, logger)
	return a, nil
}

// Run evicts idle sessions until ctx is done.
func (a *App) Run(ctx context.Context) {
	a.Manager.Run(ctx)
}

// Close ends every session, then releases the connections.
func (a *App) Close() error {
	if a.Manager != nil {
		a.Manager.Shutdown()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
