package attendance

import (
	"context"
	"errors"
	"sync"
	"time"

	attendanceerrors "digiwave-dashboard/internal/attendance/errors"
	"digiwave-dashboard/internal/device"
	"digiwave-dashboard/internal/events"
	"digiwave-dashboard/internal/leave"
	"digiwave-dashboard/internal/messaging/kafka/producer"
	"digiwave-dashboard/internal/notification"
	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/contextutil"
	"digiwave-dashboard/internal/shared/upstream"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Identity is the user a session acts for, as carried by the dashboard token.
type Identity struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       string
}

type SessionConfig struct {
	PollInterval    time.Duration
	TickInterval    time.Duration
	RefetchDelay    time.Duration
	MutationTimeout time.Duration
	DefaultShift    ShiftWindow
	Location        *time.Location
}

// Deps are the collaborators shared by every session. Leaves, Notifier,
// Publisher and Now are optional.
type Deps struct {
	Client    Client
	Leaves    leave.Lookup
	Notifier  notification.Notifier
	Publisher producer.EventPublisher
	Now       func() time.Time
}

const statusKey = "status"

// Session is one user's attendance widget: the last server snapshot, the
// locally ticked counter derived from it and the guarded user actions.
type Session struct {
	identity    Identity
	cfg         SessionConfig
	deps        Deps
	logger      *zap.Logger
	device      device.Classification
	fingerprint string
	location    *time.Location // page's zone when reported, else cfg.Location

	refetch singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	token        string
	status       Status
	loaded       bool
	timer        Timer
	leaves       []leave.Record
	inFlight     Action
	epoch        uint64 // bumped by every confirmed mutation
	stale        bool
	lastSyncedAt time.Time
	tickStop     chan struct{}
	tickStart    time.Time
	subs         map[int]chan DisplayResponse
	nextSub      int
	started      bool
	closed       bool
}

func NewSession(identity Identity, token string, signals device.Signals, cfg SessionConfig, deps Deps, logger ...*zap.Logger) *Session {
	l := zap.L().Named("attendance.session")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.session")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.MutationTimeout <= 0 {
		cfg.MutationTimeout = 15 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.NewLogNotifier(l)
	}
	if deps.Publisher == nil {
		deps.Publisher = producer.NewNoopPublisher()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	location := cfg.Location
	if loc, ok := signals.Location(); ok {
		location = loc
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		identity:    identity,
		cfg:         cfg,
		deps:        deps,
		logger:      l.With(zap.String("user_id", identity.UserID)),
		device:      device.Classify(signals),
		fingerprint: device.Fingerprint(signals),
		location:    location,
		ctx:         ctx,
		cancel:      cancel,
		token:       token,
		subs:        make(map[int]chan DisplayResponse),
	}
}

func (s *Session) Identity() Identity {
	return s.identity
}

// Start emits the one-time mobile notice and begins polling. It is a no-op
// on a started or closed session.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	if s.device.IsMobile {
		s.logger.Info("mobile device detected", zap.Int("score", s.device.Score))
		s.notify(s.ctx, notification.LevelBlocking, "Desktop Required", attendanceerrors.ErrMobileBlocked.Message)
	}

	s.wg.Add(1)
	go s.pollLoop()
}

// Close stops both timers and releases subscribers. It blocks until the
// session's goroutines have exited.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTickerLocked()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// SetToken replaces the bearer token forwarded upstream.
func (s *Session) SetToken(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) pollLoop() {
	defer s.wg.Done()

	s.poll()
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *Session) poll() {
	if err := s.Refresh(s.ctx); err != nil && s.ctx.Err() == nil {
		s.logger.Warn("status poll failed, keeping last state", zap.Error(err))
	}
}

// Refresh fetches the authoritative status and reconciles the session with
// it. Concurrent callers share one upstream call. On failure the displayed
// state is kept and marked stale.
func (s *Session) Refresh(ctx context.Context) error {
	ch := s.refetch.DoChan(statusKey, func() (any, error) {
		return nil, s.refresh()
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) refresh() error {
	epoch := s.currentEpoch()
	ctx, cancel := context.WithTimeout(s.upstreamContext(s.ctx), s.cfg.MutationTimeout)
	defer cancel()

	st, err := s.deps.Client.GetTodayStatus(ctx)
	if err != nil {
		s.markStale()
		return err
	}

	now := s.now()
	snap := snapshot{status: st}
	if s.deps.Leaves != nil {
		records, err := s.deps.Leaves.GetLeaveForUser(ctx, s.identity.UserID, now.In(s.location))
		if err != nil {
			s.logger.Warn("leave lookup failed, keeping previous leaves", zap.Error(err))
		} else {
			snap.leaves, snap.hasLeaves = records, true
		}
	}
	s.apply(epoch, snap, now)
	return nil
}

type snapshot struct {
	status    Status
	leaves    []leave.Record
	hasLeaves bool
}

// apply replaces the session's state with snap. A snapshot fetched before a
// mutation was confirmed is dropped.
func (s *Session) apply(epoch uint64, snap snapshot, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if epoch != s.epoch {
		s.logger.Debug("dropping status fetched before the last mutation")
		return
	}
	s.status = snap.status
	if snap.hasLeaves {
		s.leaves = snap.leaves
	}
	s.loaded = true
	s.timer = Reconcile(snap.status, now)
	s.stale = false
	s.lastSyncedAt = now
	s.syncTickerLocked()
	s.broadcastLocked(now)
}

func (s *Session) markStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stale = true
	s.broadcastLocked(s.now())
}

func (s *Session) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// syncTickerLocked keeps exactly one tick goroutine alive while Working and
// restarts it when the session start moves.
func (s *Session) syncTickerLocked() {
	if s.timer.State != StateWorking {
		s.stopTickerLocked()
		return
	}
	if s.tickStop != nil && s.tickStart.Equal(s.timer.SessionStart) {
		return
	}
	s.stopTickerLocked()

	stop := make(chan struct{})
	s.tickStop, s.tickStart = stop, s.timer.SessionStart
	s.wg.Add(1)
	go s.tickLoop(stop)
}

func (s *Session) stopTickerLocked() {
	if s.tickStop == nil {
		return
	}
	close(s.tickStop)
	s.tickStop = nil
	s.tickStart = time.Time{}
}

func (s *Session) tickLoop(stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timer = s.timer.Tick(now)
	s.broadcastLocked(now)
}

// ticking reports whether a tick goroutine is running.
func (s *Session) ticking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickStop != nil
}

func (s *Session) ClockIn(ctx context.Context) error {
	return s.perform(ctx, ActionClockIn, nil)
}

func (s *Session) ClockOut(ctx context.Context, confirmer Confirmer) error {
	return s.perform(ctx, ActionClockOut, confirmer)
}

// ToggleBreak starts or ends a break depending on the current state and
// returns the action it attempted.
func (s *Session) ToggleBreak(ctx context.Context, confirmer Confirmer) (Action, error) {
	if s.device.IsMobile {
		return "", s.blockMobile(ctx)
	}

	s.mu.Lock()
	action, ok := s.timer.State.BreakAction()
	s.mu.Unlock()
	if !ok {
		s.notify(ctx, notification.LevelWarning, "", "You need to clock in before taking a break")
		return "", attendanceerrors.ErrInvalidTransition
	}
	return action, s.perform(ctx, action, confirmer)
}

func (s *Session) perform(ctx context.Context, action Action, confirmer Confirmer) error {
	logger := contextutil.GetLogger(ctx, s.logger).With(zap.String("action", string(action)))

	if s.device.IsMobile {
		return s.blockMobile(ctx)
	}

	from, err := s.begin(action)
	if err != nil {
		logger.Debug("action rejected locally", zap.Error(err))
		s.notify(ctx, notification.LevelWarning, "", messageOf(err))
		return err
	}
	defer s.finish()

	if confirmer != nil && !s.confirm(ctx, logger, action, confirmer) {
		s.notify(ctx, notification.LevelInfo, "", promptFor(action).Title+" cancelled")
		return attendanceerrors.ErrActionCancelled
	}

	now := s.now()
	mctx, cancel := context.WithTimeout(s.upstreamContext(ctx), s.cfg.MutationTimeout)
	defer cancel()

	snap, err := s.mutate(mctx, action, now)
	if err != nil {
		appErr := upstream.AsAppError(err, failureMessage(action))
		logger.Warn("attendance mutation failed", zap.Error(err))
		s.notify(ctx, notification.LevelError, "", appErr.Message)
		return appErr
	}

	to, _ := from.Next(action)
	logger.Info("attendance transitioned",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	s.notify(ctx, notification.LevelSuccess, "", successMessage(action))
	s.publish(action, from, to, now)
	s.resync(snap)
	return nil
}

// blockMobile raises the blocking device notice. Nothing is sent upstream.
func (s *Session) blockMobile(ctx context.Context) error {
	s.notify(ctx, notification.LevelBlocking, "Desktop Required", attendanceerrors.ErrMobileBlocked.Message)
	return attendanceerrors.ErrMobileBlocked
}

// begin validates action against the current state and eligibility and
// marks it in flight.
func (s *Session) begin(action Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return StateOffline, attendanceerrors.ErrSessionNotMounted
	}
	if !s.loaded {
		return StateOffline, attendanceerrors.ErrStatusNotLoaded
	}
	if s.inFlight != "" {
		return s.timer.State, attendanceerrors.ErrActionInFlight
	}
	from := s.timer.State
	if _, err := from.Next(action); err != nil {
		return from, err
	}
	now := s.now()
	local := now.In(s.location)
	if err := s.eligibilityLocked(action, local, leave.Active(s.leaves, local)); err != nil {
		return from, err
	}

	s.inFlight = action
	s.broadcastLocked(now)
	return from, nil
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = ""
	s.broadcastLocked(s.now())
}

// eligibilityLocked runs the local shift and leave checks for action.
func (s *Session) eligibilityLocked(action Action, local time.Time, active *leave.Record) *apperror.AppError {
	if action == ActionClockIn {
		if c := ValidateShiftTiming(local, s.shiftWindowLocked()); !c.IsWithinShift {
			return attendanceerrors.ErrOutsideShift.WithMessage(c.Message)
		}
	}
	if c := ValidateLeaveRestrictions(action, active, local); !c.IsAllowed {
		return attendanceerrors.ErrLeaveRestricted.WithMessage(c.Message)
	}
	return nil
}

func (s *Session) shiftWindowLocked() ShiftWindow {
	if w, ok := ParseShiftWindow(s.status.ShiftTime); ok {
		return w
	}
	return s.cfg.DefaultShift
}

// confirm asks c and fails open: a dialog that errors or panics counts as
// accepted.
func (s *Session) confirm(ctx context.Context, logger *zap.Logger, action Action, c Confirmer) (accepted bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("confirmation dialog panicked, proceeding", zap.Any("panic", r))
			accepted = true
		}
	}()

	ok, err := c.Confirm(ctx, promptFor(action))
	if err != nil {
		logger.Warn("confirmation dialog unavailable, proceeding", zap.Error(err))
		return true
	}
	return ok
}

func (s *Session) mutate(ctx context.Context, action Action, now time.Time) (*Status, error) {
	ts := now.UTC().Format(time.RFC3339)
	switch action {
	case ActionClockIn:
		return s.deps.Client.ClockIn(ctx, ClockRequest{DeviceFingerprint: s.fingerprint, Timestamp: ts})
	case ActionClockOut:
		return s.deps.Client.ClockOut(ctx, ClockRequest{DeviceFingerprint: s.fingerprint, Timestamp: ts})
	default:
		res, err := s.deps.Client.ToggleBreak(ctx, BreakRequest{Action: action, DeviceFingerprint: s.fingerprint, Timestamp: ts})
		if err != nil {
			return nil, err
		}
		return res.Status, nil
	}
}

// resync brings the session up to date after a confirmed mutation, from the
// returned snapshot when there is one, otherwise by refetching after
// RefetchDelay.
func (s *Session) resync(snap *Status) {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	if snap != nil {
		s.apply(epoch, snapshot{status: *snap}, s.now())
		return
	}

	if s.cfg.RefetchDelay > 0 {
		timer := time.NewTimer(s.cfg.RefetchDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			return
		}
	}
	// A poll already in flight predates the mutation; do not join it.
	s.refetch.Forget(statusKey)
	if err := s.Refresh(s.ctx); err != nil && s.ctx.Err() == nil {
		s.logger.Warn("refetch after mutation failed", zap.Error(err))
	}
}

func (s *Session) publish(action Action, from, to State, now time.Time) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.MutationTimeout)
	defer cancel()

	event := events.AttendanceTransitionedEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType(action),
		UserID:      s.identity.UserID,
		EmployeeID:  s.identity.EmployeeID,
		CompanyID:   s.identity.CompanyID,
		FromState:   from.String(),
		ToState:     to.String(),
		Fingerprint: s.fingerprint,
		OccurredAt:  now.UTC(),
	}
	if err := s.deps.Publisher.PublishAttendanceTransitioned(ctx, event); err != nil {
		s.logger.Warn("publish attendance event failed", zap.String("event_id", event.EventID), zap.Error(err))
	}
}

func (s *Session) upstreamContext(ctx context.Context) context.Context {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	ctx = contextutil.WithUserID(ctx, s.identity.UserID)
	return contextutil.WithAccessToken(ctx, token)
}

func (s *Session) notify(ctx context.Context, level notification.Level, title, message string) {
	s.deps.Notifier.Notify(ctx, notification.Notification{
		UserID:  s.identity.UserID,
		Level:   level,
		Title:   title,
		Message: message,
		At:      s.now(),
	})
}

func (s *Session) now() time.Time {
	return s.deps.Now()
}

func messageOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func eventType(a Action) string {
	switch a {
	case ActionClockIn:
		return events.EventClockedIn
	case ActionClockOut:
		return events.EventClockedOut
	case ActionStartBreak:
		return events.EventBreakStarted
	default:
		return events.EventBreakEnded
	}
}

func successMessage(a Action) string {
	switch a {
	case ActionClockIn:
		return "Clocked in successfully"
	case ActionClockOut:
		return "Clocked out successfully"
	case ActionStartBreak:
		return "Break started"
	default:
		return "Break ended"
	}
}

func failureMessage(a Action) string {
	switch a {
	case ActionClockIn:
		return "Failed to clock in"
	case ActionClockOut:
		return "Failed to clock out"
	default:
		return "Failed to update break status"
	}
}
