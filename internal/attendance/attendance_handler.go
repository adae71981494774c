package attendance

import (
	"errors"
	"io"
	"net/http"
	"time"

	attendanceerrors "digiwave-dashboard/internal/attendance/errors"
	"digiwave-dashboard/internal/leave"
	"digiwave-dashboard/internal/middleware"
	"digiwave-dashboard/internal/notification"
	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/contextutil"
	"digiwave-dashboard/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	manager *Manager
	inbox   *notification.Inbox
	logger  *zap.Logger
}

func NewHandler(manager *Manager, inbox *notification.Inbox, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{manager: manager, inbox: inbox, logger: l}
}

func writeServiceError(c *gin.Context, err error) {
	response.FromError(c, err)
}

func identityFrom(c *gin.Context) (Identity, bool) {
	id := Identity{
		UserID:     c.GetString(middleware.KeyUserID),
		EmployeeID: c.GetString(middleware.KeyEmployeeID),
		CompanyID:  c.GetString(middleware.KeyCompanyID),
		Role:       c.GetString(middleware.KeyRole),
	}
	return id, id.UserID != ""
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	id, ok := identityFrom(c)
	if !ok {
		writeServiceError(c, attendanceerrors.ErrMissingIdentity)
		return nil, false
	}
	s, err := h.manager.Get(id.UserID, c.GetString(middleware.KeyAccessToken))
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	return s, true
}

// bindOptionalJSON binds a JSON body that the page may omit entirely.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return apperror.MapValidationError(err)
	}
	return nil
}

func (h *Handler) Mount(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		writeServiceError(c, attendanceerrors.ErrMissingIdentity)
		return
	}

	var req MountRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeServiceError(c, err)
		return
	}

	s := h.manager.Mount(id, c.GetString(middleware.KeyAccessToken), req.Device)
	if err := s.Refresh(c.Request.Context()); err != nil {
		contextutil.GetLogger(c.Request.Context(), h.logger).Debug("initial status fetch failed", zap.Error(err))
	}
	response.Success(c, http.StatusCreated, s.Display())
}

func (h *Handler) Unmount(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		writeServiceError(c, attendanceerrors.ErrMissingIdentity)
		return
	}
	if !h.manager.Unmount(id.UserID) {
		writeServiceError(c, attendanceerrors.ErrSessionNotMounted)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Display(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, s.Display())
}

// Focus reconciles with the backend right away, as on window refocus. A
// failed fetch still answers with the (now stale) display.
func (h *Handler) Focus(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Refresh(c.Request.Context()); err != nil {
		contextutil.GetLogger(c.Request.Context(), h.logger).Warn("focus refresh failed", zap.Error(err))
	}
	response.Success(c, http.StatusOK, s.Display())
}

// Stream pushes the display as server-sent "display" events until the
// client goes away or the session is unmounted.
func (h *Handler) Stream(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	updates, cancel := s.Subscribe()
	defer cancel()

	userID := s.Identity().UserID
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case d, open := <-updates:
			if !open {
				return false
			}
			h.manager.Touch(userID)
			c.SSEvent("display", d)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *Handler) Notifications(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		writeServiceError(c, attendanceerrors.ErrMissingIdentity)
		return
	}
	response.Success(c, http.StatusOK, NotificationsResponse{
		Notifications: h.inbox.Drain(id.UserID),
	})
}

func (h *Handler) ClockIn(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.ClockIn(c.Request.Context()); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ActionResponse{Action: ActionClockIn, Display: s.Display()})
}

func (h *Handler) ClockOut(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req ActionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeServiceError(c, err)
		return
	}

	if err := s.ClockOut(c.Request.Context(), ConfirmationResult(req.Confirmation)); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ActionResponse{Action: ActionClockOut, Display: s.Display()})
}

func (h *Handler) ToggleBreak(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req ActionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeServiceError(c, err)
		return
	}

	action, err := s.ToggleBreak(c.Request.Context(), ConfirmationResult(req.Confirmation))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ActionResponse{Action: action, Display: s.Display()})
}

// Details proxies the per-session drill-down for one user and day. It needs
// no mounted session: the caller's token travels on the request context.
func (h *Handler) Details(c *gin.Context) {
	var q DetailsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	date, err := time.ParseInLocation(leave.DateLayout, q.Date, h.manager.cfg.Location)
	if err != nil {
		writeServiceError(c, attendanceerrors.ErrInvalidDate)
		return
	}

	details, err := h.manager.deps.Client.ViewAttendance(c.Request.Context(), q.UserID, date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, mapDetailsView(details, h.manager.deps.Now()))
}
