// Package notification is the toast channel between the attendance session
// and the dashboard page. Sessions push; the page drains its inbox.
package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess  Level = "success"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelBlocking Level = "blocking" // modal the user must dismiss
)

type Notification struct {
	UserID  string    `json:"-"`
	Level   Level     `json:"level"`
	Title   string    `json:"title,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier never fails: a lost toast must not break an attendance action.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, x := range m {
		x.Notify(ctx, n)
	}
}

type logNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger ...*zap.Logger) Notifier {
	l := zap.L().Named("notification")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification")
	}
	return &logNotifier{logger: l}
}

func (l *logNotifier) Notify(_ context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("user_id", n.UserID),
		zap.String("level", string(n.Level)),
		zap.String("message", n.Message),
	}
	switch n.Level {
	case LevelError:
		l.logger.Warn("notification", fields...)
	default:
		l.logger.Debug("notification", fields...)
	}
}

// Inbox keeps the most recent notifications per user until the page drains
// them. Older entries are dropped once a user's queue is full.
type Inbox struct {
	mu       sync.Mutex
	capacity int
	queues   map[string][]Notification
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = 20
	}
	return &Inbox{capacity: capacity, queues: make(map[string][]Notification)}
}

func (b *Inbox) Notify(_ context.Context, n Notification) {
	if n.UserID == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	q := append(b.queues[n.UserID], n)
	if len(q) > b.capacity {
		q = q[len(q)-b.capacity:]
	}
	b.queues[n.UserID] = q
}

// Drain returns and clears the user's pending notifications, oldest first.
func (b *Inbox) Drain(userID string) []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.queues[userID]
	delete(b.queues, userID)
	if q == nil {
		return []Notification{}
	}
	return q
}

// Forget drops everything queued for the user.
func (b *Inbox) Forget(userID string) {
	b.mu.Lock()
	delete(b.queues, userID)
	b.mu.Unlock()
}
