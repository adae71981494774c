package leave

import (
	"context"
	"net/url"
	"strings"
	"time"

	leaveerrors "digiwave-dashboard/internal/leave/errors"
	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/upstream"

	"go.uber.org/zap"
)

//go:generate mockgen -source=leave_client.go -destination=mock/leave_client_mock.go -package=mock
type Lookup interface {
	GetLeaveForUser(ctx context.Context, userID string, date time.Time) ([]Record, error)
}

type httpLookup struct {
	client *upstream.Client
	logger *zap.Logger
}

// NewHTTPLookup reads leaves from the backend's GET /leaves/user endpoint.
func NewHTTPLookup(client *upstream.Client, logger ...*zap.Logger) Lookup {
	l := zap.L().Named("leave.lookup")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.lookup")
	}
	return &httpLookup{client: client, logger: l}
}

func (h *httpLookup) GetLeaveForUser(ctx context.Context, userID string, date time.Time) ([]Record, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, leaveerrors.ErrInvalidUserID
	}

	query := url.Values{
		"user_id": {userID},
		"date":    {date.Format(DateLayout)},
	}
	var rows []LeaveResponse
	if err := h.client.Get(ctx, "/leaves/user", query, &rows); err != nil {
		if apperror.Is(err, apperror.CodeUnauthorized) {
			return nil, err
		}
		return nil, apperror.Wrap(err, leaveerrors.ErrLeaveLookupFailed.Code, leaveerrors.ErrLeaveLookupFailed.Message, leaveerrors.ErrLeaveLookupFailed.HTTPStatus)
	}

	return h.toRecords(userID, rows), nil
}

// toRecords drops rows the session cannot interpret instead of failing the
// whole lookup.
func (h *httpLookup) toRecords(userID string, rows []LeaveResponse) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			h.logger.Warn("skipping malformed leave",
				zap.String("user_id", userID),
				zap.String("leave_id", row.ID),
				zap.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}
	return records
}
