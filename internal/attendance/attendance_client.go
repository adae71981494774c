package attendance

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"digiwave-dashboard/internal/leave"
	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/upstream"

	"go.uber.org/zap"
)

//go:generate mockgen -source=attendance_client.go -destination=mock/attendance_client_mock.go -package=mock
type Client interface {
	GetTodayStatus(ctx context.Context) (Status, error)
	ClockIn(ctx context.Context, req ClockRequest) (*Status, error)
	ClockOut(ctx context.Context, req ClockRequest) (*Status, error)
	ToggleBreak(ctx context.Context, req BreakRequest) (BreakResult, error)
	ViewAttendance(ctx context.Context, userID string, date time.Time) (Details, error)
}

type httpClient struct {
	client *upstream.Client
	logger *zap.Logger
}

// NewHTTPClient talks to the backend's /attendance endpoints as the user
// whose token is carried by ctx.
func NewHTTPClient(client *upstream.Client, logger ...*zap.Logger) Client {
	l := zap.L().Named("attendance.client")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.client")
	}
	return &httpClient{client: client, logger: l}
}

func (h *httpClient) GetTodayStatus(ctx context.Context) (Status, error) {
	var resp StatusResponse
	if err := h.client.Get(ctx, "/attendance/today-status", nil, &resp); err != nil {
		return Status{}, err
	}
	st, err := resp.toStatus()
	if err != nil {
		return Status{}, malformed(err)
	}
	return st, nil
}

func (h *httpClient) ClockIn(ctx context.Context, req ClockRequest) (*Status, error) {
	return h.mutate(ctx, "/attendance/clock-in", req)
}

func (h *httpClient) ClockOut(ctx context.Context, req ClockRequest) (*Status, error) {
	return h.mutate(ctx, "/attendance/clock-out", req)
}

func (h *httpClient) ToggleBreak(ctx context.Context, req BreakRequest) (BreakResult, error) {
	var resp MutationResponse
	if err := h.client.Post(ctx, "/attendance/toggle-break", req, &resp); err != nil {
		return BreakResult{}, err
	}
	result := BreakResult{Action: req.Action}
	if resp.Action != "" {
		result.Action = Action(resp.Action)
	}
	result.Status = h.snapshot(resp.Status)
	return result, nil
}

func (h *httpClient) ViewAttendance(ctx context.Context, userID string, date time.Time) (Details, error) {
	if strings.TrimSpace(userID) == "" {
		return Details{}, apperror.RequiredField("user_id")
	}
	query := url.Values{
		"user_id": {userID},
		"date":    {date.Format(leave.DateLayout)},
	}
	var resp DetailsResponse
	if err := h.client.Get(ctx, "/attendance/admin-details", query, &resp); err != nil {
		return Details{}, err
	}
	d, err := resp.toDetails(userID, date)
	if err != nil {
		return Details{}, malformed(err)
	}
	return d, nil
}

func (h *httpClient) mutate(ctx context.Context, path string, req ClockRequest) (*Status, error) {
	var resp MutationResponse
	if err := h.client.Post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return h.snapshot(resp.Status), nil
}

// snapshot converts an optional status returned with a mutation. A snapshot
// that does not parse is dropped; the caller refetches instead.
func (h *httpClient) snapshot(resp *StatusResponse) *Status {
	if resp == nil {
		return nil
	}
	st, err := resp.toStatus()
	if err != nil {
		h.logger.Warn("ignoring malformed status on mutation response", zap.Error(err))
		return nil
	}
	return &st
}

func malformed(err error) error {
	return apperror.Wrap(err, apperror.CodeUpstreamError, "Unexpected response from server", http.StatusBadGateway)
}
