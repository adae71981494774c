package attendance

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	attendanceerrors "digiwave-dashboard/internal/attendance/errors"
	"digiwave-dashboard/internal/device"
	"digiwave-dashboard/internal/events"
	"digiwave-dashboard/internal/leave"
	"digiwave-dashboard/internal/notification"
	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/contextutil"
	"digiwave-dashboard/internal/shared/upstream"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeClient serves whatever status the test last set and records calls.
type fakeClient struct {
	mu        sync.Mutex
	status    Status
	statusErr error
	calls     []string
	tokens    []string

	ClockInFn     func(ctx context.Context, req ClockRequest) (*Status, error)
	ClockOutFn    func(ctx context.Context, req ClockRequest) (*Status, error)
	ToggleBreakFn func(ctx context.Context, req BreakRequest) (BreakResult, error)
}

func (f *fakeClient) setStatus(st Status, err error) {
	f.mu.Lock()
	f.status, f.statusErr = st, err
	f.mu.Unlock()
}

func (f *fakeClient) record(ctx context.Context, call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.tokens = append(f.tokens, contextutil.GetAccessToken(ctx))
	f.mu.Unlock()
}

func (f *fakeClient) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeClient) GetTodayStatus(ctx context.Context) (Status, error) {
	f.record(ctx, "status")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakeClient) ClockIn(ctx context.Context, req ClockRequest) (*Status, error) {
	f.record(ctx, "clock_in")
	if f.ClockInFn == nil {
		return nil, nil
	}
	return f.ClockInFn(ctx, req)
}

func (f *fakeClient) ClockOut(ctx context.Context, req ClockRequest) (*Status, error) {
	f.record(ctx, "clock_out")
	if f.ClockOutFn == nil {
		return nil, nil
	}
	return f.ClockOutFn(ctx, req)
}

func (f *fakeClient) ToggleBreak(ctx context.Context, req BreakRequest) (BreakResult, error) {
	f.record(ctx, "toggle_break")
	if f.ToggleBreakFn == nil {
		return BreakResult{Action: req.Action}, nil
	}
	return f.ToggleBreakFn(ctx, req)
}

func (f *fakeClient) ViewAttendance(ctx context.Context, userID string, date time.Time) (Details, error) {
	f.record(ctx, "details")
	return Details{UserID: userID, Date: date}, nil
}

type fakeLeaves struct {
	records []leave.Record
	err     error
}

func (f *fakeLeaves) GetLeaveForUser(context.Context, string, time.Time) ([]leave.Record, error) {
	return f.records, f.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []notification.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notification.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) last() notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return notification.Notification{}
	}
	return r.items[len(r.items)-1]
}

func (r *recordingNotifier) all() []notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Notification(nil), r.items...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AttendanceTransitionedEvent
}

func (p *recordingPublisher) PublishAttendanceTransitioned(_ context.Context, e events.AttendanceTransitionedEvent) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var (
	desktop = device.Signals{UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", ViewportWidth: 1920, ViewportHeight: 1080}
	mobile  = device.Signals{UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile", ViewportWidth: 390, ViewportHeight: 844, TouchPoints: 5}
)

type harness struct {
	session   *Session
	client    *fakeClient
	leaves    *fakeLeaves
	clock     *fakeClock
	notifier  *recordingNotifier
	publisher *recordingPublisher
}

func newHarness(t *testing.T, signals device.Signals, initial Status) *harness {
	t.Helper()
	h := &harness{
		client:    &fakeClient{},
		leaves:    &fakeLeaves{},
		clock:     &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}
	h.client.setStatus(initial, nil)
	h.session = NewSession(
		Identity{UserID: "u-1", EmployeeID: "e-1", CompanyID: "c-1"},
		"token-1",
		signals,
		SessionConfig{
			PollInterval:    time.Hour,
			TickInterval:    time.Hour,
			MutationTimeout: time.Second,
			DefaultShift:    ShiftWindow{StartHour: 9, EndHour: 18},
			Location:        time.UTC,
		},
		Deps{
			Client:    h.client,
			Leaves:    h.leaves,
			Notifier:  h.notifier,
			Publisher: h.publisher,
			Now:       h.clock.Now,
		},
		zap.NewNop(),
	)
	t.Cleanup(h.session.Close)
	return h
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	assert.NoError(t, h.session.Refresh(context.Background()))
}

func working(start time.Time, base int64) Status {
	return Status{IsClockedIn: true, CurrentSessionStart: &start, TotalWorkingSeconds: base, SessionCount: 1}
}

func onBreak(base int64) Status {
	return Status{IsClockedIn: true, IsOnBreak: true, TotalWorkingSeconds: base, TotalBreakSeconds: 60, SessionCount: 1}
}

func TestSession_ClockInFromOffline(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	h.load(t)

	d := h.session.Display()
	assert.Equal(t, "offline", d.State)
	assert.Equal(t, "Offline", d.StatusText)
	assert.True(t, d.Actions.ClockIn.Visible)
	assert.True(t, d.Actions.ClockIn.Enabled)
	assert.False(t, d.Actions.ClockOut.Visible)

	clockedAt := h.clock.Now()
	var sent ClockRequest
	h.client.ClockInFn = func(_ context.Context, req ClockRequest) (*Status, error) {
		sent = req
		h.client.setStatus(working(clockedAt, 0), nil)
		return nil, nil
	}

	assert.NoError(t, h.session.ClockIn(context.Background()))
	assert.Equal(t, device.Fingerprint(desktop), sent.DeviceFingerprint)
	assert.Equal(t, clockedAt.Format(time.RFC3339), sent.Timestamp)
	assert.Equal(t, 2, h.client.count("status"), "refetch after mutation")

	d = h.session.Display()
	assert.Equal(t, "working", d.State)
	assert.Equal(t, "success", d.Category)
	assert.Equal(t, "00:00:00", d.WorkingTime)
	assert.False(t, d.Busy)
	assert.True(t, h.session.ticking())

	h.clock.Advance(65 * time.Second)
	h.session.tick()
	assert.Equal(t, "00:01:05", h.session.Display().WorkingTime)

	assert.Equal(t, notification.LevelSuccess, h.notifier.last().Level)
	assert.Equal(t, "Clocked in successfully", h.notifier.last().Message)
	if assert.Len(t, h.publisher.events, 1) {
		e := h.publisher.events[0]
		assert.Equal(t, events.EventClockedIn, e.EventType)
		assert.Equal(t, "offline", e.FromState)
		assert.Equal(t, "working", e.ToState)
		assert.Equal(t, "e-1", e.EmployeeID)
	}
	for _, tok := range h.client.tokens {
		assert.Equal(t, "token-1", tok)
	}
}

func TestSession_FullDayLeaveBlocksClockIn(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	today := leave.CivilDate(h.clock.Now())
	h.leaves.records = []leave.Record{{Type: leave.TypeFull, Status: leave.StatusApproved, StartDate: today, EndDate: today}}
	h.load(t)

	d := h.session.Display()
	assert.False(t, d.Actions.ClockIn.Enabled)
	assert.Equal(t, "Cannot clock-in on full day leave", d.Actions.ClockIn.Reason)
	if assert.NotNil(t, d.ActiveLeave) {
		assert.Equal(t, leave.TypeFull, d.ActiveLeave.Type)
	}

	err := h.session.ClockIn(context.Background())
	assert.ErrorIs(t, err, attendanceerrors.ErrLeaveRestricted)
	assert.Equal(t, "Cannot clock-in on full day leave", apperror.ToHTTP(err).Message)
	assert.Equal(t, 0, h.client.count("clock_in"))
	assert.Equal(t, notification.LevelWarning, h.notifier.last().Level)
	assert.Equal(t, "offline", h.session.Display().State)
}

func TestSession_BreakConfirmationErrorFailsOpen(t *testing.T) {
	h := newHarness(t, desktop, working(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 0))
	h.load(t)
	assert.Equal(t, "Start Break", h.session.Display().Actions.Break.Label)

	var sent BreakRequest
	h.client.ToggleBreakFn = func(_ context.Context, req BreakRequest) (BreakResult, error) {
		sent = req
		h.client.setStatus(onBreak(3600), nil)
		return BreakResult{Action: req.Action}, nil
	}

	action, err := h.session.ToggleBreak(context.Background(), ConfirmationResult(ConfirmationError))
	assert.NoError(t, err)
	assert.Equal(t, ActionStartBreak, action)
	assert.Equal(t, ActionStartBreak, sent.Action)

	d := h.session.Display()
	assert.Equal(t, "on_break", d.State)
	assert.Equal(t, "On Break", d.StatusText)
	assert.Equal(t, "01:00:00", d.WorkingTime)
	assert.Equal(t, "End Break", d.Actions.Break.Label)
	assert.False(t, h.session.ticking())

	for i := 0; i < 30; i++ {
		h.clock.Advance(time.Second)
		h.session.tick()
		assert.Equal(t, "01:00:00", h.session.Display().WorkingTime)
	}
}

func TestSession_EndBreakRestartsCounter(t *testing.T) {
	h := newHarness(t, desktop, onBreak(3600))
	h.load(t)

	resumed := h.clock.Now()
	h.client.ToggleBreakFn = func(_ context.Context, req BreakRequest) (BreakResult, error) {
		assert.Equal(t, ActionEndBreak, req.Action)
		st := working(resumed, 3600)
		return BreakResult{Action: req.Action, Status: &st}, nil
	}

	action, err := h.session.ToggleBreak(context.Background(), ConfirmationResult(ConfirmationAccepted))
	assert.NoError(t, err)
	assert.Equal(t, ActionEndBreak, action)
	assert.Equal(t, 1, h.client.count("status"), "snapshot on the response replaces the refetch")
	assert.True(t, h.session.ticking())

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, "01:00:10", h.session.Display().WorkingTime)
}

func TestSession_DeclinedConfirmationCancels(t *testing.T) {
	h := newHarness(t, desktop, working(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 0))
	h.load(t)

	err := h.session.ClockOut(context.Background(), ConfirmationResult(ConfirmationDeclined))
	assert.ErrorIs(t, err, attendanceerrors.ErrActionCancelled)
	assert.Equal(t, 0, h.client.count("clock_out"))
	assert.Equal(t, "working", h.session.Display().State)
	assert.False(t, h.session.Display().Busy)
}

func TestSession_PanickingConfirmationFailsOpen(t *testing.T) {
	h := newHarness(t, desktop, working(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 0))
	h.load(t)
	h.client.ClockOutFn = func(context.Context, ClockRequest) (*Status, error) {
		return &Status{SessionCount: 1, TotalWorkingSeconds: 3600}, nil
	}

	err := h.session.ClockOut(context.Background(), ConfirmFunc(func(context.Context, Prompt) (bool, error) {
		panic("dialog blew up")
	}))
	assert.NoError(t, err)
	assert.Equal(t, 1, h.client.count("clock_out"))
	d := h.session.Display()
	assert.Equal(t, "offline", d.State)
	assert.Equal(t, "00:00:00", d.WorkingTime)
	assert.False(t, h.session.ticking())
}

func TestSession_MutationFailureKeepsState(t *testing.T) {
	t.Run("upstream message", func(t *testing.T) {
		h := newHarness(t, desktop, Status{})
		h.load(t)
		h.client.ClockInFn = func(context.Context, ClockRequest) (*Status, error) {
			return nil, &upstream.Error{
				Status:   http.StatusConflict,
				AppError: apperror.New("ALREADY_CLOCKED_IN", "You are already clocked in", http.StatusConflict),
			}
		}

		err := h.session.ClockIn(context.Background())
		assert.Error(t, err)
		assert.Equal(t, "You are already clocked in", apperror.ToHTTP(err).Message)
		assert.Equal(t, notification.LevelError, h.notifier.last().Level)
		assert.Equal(t, "You are already clocked in", h.notifier.last().Message)
		assert.Equal(t, "offline", h.session.Display().State)
		assert.Equal(t, 1, h.client.count("status"))
		assert.Empty(t, h.publisher.events)
	})

	t.Run("fallback message", func(t *testing.T) {
		h := newHarness(t, desktop, Status{})
		h.load(t)
		h.client.ClockInFn = func(context.Context, ClockRequest) (*Status, error) {
			return nil, errors.New("connection reset")
		}

		err := h.session.ClockIn(context.Background())
		assert.Error(t, err)
		assert.Equal(t, "Failed to clock in", h.notifier.last().Message)
		assert.False(t, h.session.Display().Busy)
	})
}

func TestSession_PollFailureMarksStale(t *testing.T) {
	h := newHarness(t, desktop, working(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 0))
	h.load(t)
	assert.False(t, h.session.Display().Stale)

	h.client.setStatus(Status{}, errors.New("backend down"))
	h.clock.Advance(time.Minute)
	assert.Error(t, h.session.Refresh(context.Background()))

	d := h.session.Display()
	assert.True(t, d.Stale)
	assert.Equal(t, "working", d.State)
	assert.Equal(t, "01:01:00", d.WorkingTime)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), *d.LastSyncedAt)

	h.client.setStatus(working(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 0), nil)
	assert.NoError(t, h.session.Refresh(context.Background()))
	assert.False(t, h.session.Display().Stale)
}

func TestSession_LeaveLookupFailureKeepsPreviousLeaves(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	today := leave.CivilDate(h.clock.Now())
	h.leaves.records = []leave.Record{{Type: leave.TypeFull, Status: leave.StatusApproved, StartDate: today, EndDate: today}}
	h.load(t)

	h.leaves.records, h.leaves.err = nil, errors.New("leave service down")
	h.load(t)
	assert.NotNil(t, h.session.Display().ActiveLeave)
}

func TestSession_MobileBlocksEveryAction(t *testing.T) {
	h := newHarness(t, mobile, Status{})
	h.session.Start()
	assert.Eventually(t, func() bool { return h.session.Display().Loaded }, time.Second, 10*time.Millisecond)

	first := h.notifier.all()
	if assert.NotEmpty(t, first) {
		assert.Equal(t, notification.LevelBlocking, first[0].Level)
	}

	d := h.session.Display()
	assert.True(t, d.Device.IsMobile)
	assert.NotEmpty(t, d.Notice)
	assert.False(t, d.Actions.ClockIn.Enabled)

	assert.ErrorIs(t, h.session.ClockIn(context.Background()), attendanceerrors.ErrMobileBlocked)
	assert.Equal(t, 0, h.client.count("clock_in"))
	assert.Equal(t, notification.LevelBlocking, h.notifier.last().Level)
}

func TestSession_OutsideShift(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	h.clock.Advance(10 * time.Hour) // 20:00
	h.load(t)

	err := h.session.ClockIn(context.Background())
	assert.ErrorIs(t, err, attendanceerrors.ErrOutsideShift)
	assert.Equal(t, 0, h.client.count("clock_in"))

	h.client.setStatus(Status{ShiftTime: "19:00 - 04:00"}, nil)
	h.load(t)
	assert.Equal(t, "19:00 - 04:00", h.session.Display().ShiftTime)
	assert.True(t, h.session.Display().Actions.ClockIn.Enabled)
}

func TestSession_SecondConcurrentActionRejected(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	h.load(t)

	release := make(chan struct{})
	h.client.ClockInFn = func(ctx context.Context, _ ClockRequest) (*Status, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		st := working(h.clock.Now(), 0)
		return &st, nil
	}

	done := make(chan error, 1)
	go func() { done <- h.session.ClockIn(context.Background()) }()
	assert.Eventually(t, func() bool { return h.session.Display().Busy }, time.Second, 5*time.Millisecond)

	d := h.session.Display()
	assert.False(t, d.Actions.ClockIn.Enabled)
	assert.Equal(t, reasonInFlight, d.Actions.ClockIn.Reason)
	assert.ErrorIs(t, h.session.ClockIn(context.Background()), attendanceerrors.ErrActionInFlight)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, h.client.count("clock_in"))
	assert.Equal(t, "working", h.session.Display().State)
}

func TestSession_MutationTimeout(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	h.session.cfg.MutationTimeout = 20 * time.Millisecond
	h.load(t)
	h.client.ClockInFn = func(ctx context.Context, _ ClockRequest) (*Status, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	err := h.session.ClockIn(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "Failed to clock in", h.notifier.last().Message)
	assert.Equal(t, "offline", h.session.Display().State)
}

func TestSession_ActionsBeforeLoadRejected(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	assert.ErrorIs(t, h.session.ClockIn(context.Background()), attendanceerrors.ErrStatusNotLoaded)
	assert.Equal(t, reasonLoading, h.session.Display().Actions.ClockIn.Reason)
}

func TestSession_ToggleBreakWhileOffline(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	h.load(t)
	_, err := h.session.ToggleBreak(context.Background(), nil)
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidTransition)
	assert.Equal(t, 0, h.client.count("toggle_break"))
}

func TestSession_MobileToggleBreakShowsDeviceNotice(t *testing.T) {
	h := newHarness(t, mobile, Status{})
	h.load(t)

	_, err := h.session.ToggleBreak(context.Background(), nil)
	assert.ErrorIs(t, err, attendanceerrors.ErrMobileBlocked)
	assert.Equal(t, notification.LevelBlocking, h.notifier.last().Level)
	assert.Equal(t, attendanceerrors.ErrMobileBlocked.Message, h.notifier.last().Message)
	assert.Equal(t, 0, h.client.count("toggle_break"))
}

func TestSession_EligibilityUsesPageTimezone(t *testing.T) {
	withOffset := func(minutes int) device.Signals {
		s := desktop
		s.TimezoneOffset = &minutes
		return s
	}

	t.Run("page hour inside shift while server hour is not", func(t *testing.T) {
		// UTC-08:00; 20:00 UTC is 12:00 on the page.
		h := newHarness(t, withOffset(480), Status{})
		h.clock.Advance(10 * time.Hour)
		h.load(t)

		d := h.session.Display()
		assert.Equal(t, "UTC-08:00", d.Timezone)
		assert.True(t, d.Actions.ClockIn.Enabled)
		assert.NoError(t, h.session.ClockIn(context.Background()))
		assert.Equal(t, 1, h.client.count("clock_in"))
	})

	t.Run("page hour outside shift while server hour is inside", func(t *testing.T) {
		// UTC+10:00; 10:00 UTC is 20:00 on the page.
		h := newHarness(t, withOffset(-600), Status{})
		h.load(t)

		assert.ErrorIs(t, h.session.ClockIn(context.Background()), attendanceerrors.ErrOutsideShift)
		assert.Equal(t, 0, h.client.count("clock_in"))
	})

	t.Run("unreported offset falls back to the configured zone", func(t *testing.T) {
		h := newHarness(t, desktop, Status{})
		h.load(t)
		assert.Equal(t, "UTC", h.session.Display().Timezone)
	})
}

func TestSession_DropsSnapshotFetchedBeforeMutation(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	h.load(t)

	stale := h.session.currentEpoch()
	h.client.ClockInFn = func(context.Context, ClockRequest) (*Status, error) {
		st := working(h.clock.Now(), 0)
		return &st, nil
	}
	assert.NoError(t, h.session.ClockIn(context.Background()))

	h.session.apply(stale, snapshot{status: Status{}}, h.clock.Now())
	assert.Equal(t, "working", h.session.Display().State)
}

func TestSession_TickerFollowsSessionStart(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h := newHarness(t, desktop, working(start, 0))
	h.load(t)

	h.session.mu.Lock()
	first := h.session.tickStop
	h.session.mu.Unlock()

	h.load(t)
	h.session.mu.Lock()
	assert.Equal(t, first, h.session.tickStop, "same start keeps the ticker")
	h.session.mu.Unlock()

	h.client.setStatus(working(start.Add(time.Hour), 1800), nil)
	h.load(t)
	h.session.mu.Lock()
	assert.NotEqual(t, first, h.session.tickStop, "new start restarts the ticker")
	h.session.mu.Unlock()
}

func TestSession_SubscribeAndClose(t *testing.T) {
	h := newHarness(t, desktop, Status{})
	updates, cancel := h.session.Subscribe()
	defer cancel()

	initial := <-updates
	assert.False(t, initial.Loaded)

	h.load(t)
	d := <-updates
	assert.True(t, d.Loaded)

	h.session.Close()
	_, open := <-updates
	assert.False(t, open)

	late, _ := h.session.Subscribe()
	_, open = <-late
	assert.False(t, open)
}
