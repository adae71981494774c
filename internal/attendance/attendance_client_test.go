package attendance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digiwave-dashboard/internal/attendance"
	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/contextutil"
	"digiwave-dashboard/internal/shared/response"
	"digiwave-dashboard/internal/shared/upstream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newBackendClient(t *testing.T, register func(r *gin.Engine)) attendance.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return attendance.NewHTTPClient(upstream.New(srv.URL, srv.Client(), zap.NewNop()), zap.NewNop())
}

func TestHTTPClient_GetTodayStatus(t *testing.T) {
	client := newBackendClient(t, func(r *gin.Engine) {
		r.GET("/attendance/today-status", func(c *gin.Context) {
			assert.Equal(t, "Bearer tok", c.GetHeader("Authorization"))
			c.Data(http.StatusOK, "application/json", []byte(`{"ok":true,"data":{
				"is_clocked_in": true,
				"is_on_break": false,
				"current_session_start": "2026-03-10T09:00:00Z",
				"total_working_seconds": 120,
				"total_break_seconds": 30,
				"session_count": 2,
				"first_clock_in": "2026-03-10T08:00:00Z",
				"present_today": 14,
				"absent_today": 3,
				"shift_time": "09:00-18:00"
			}}`))
		})
	})

	ctx := contextutil.WithAccessToken(context.Background(), "tok")
	st, err := client.GetTodayStatus(ctx)
	assert.NoError(t, err)
	assert.True(t, st.IsClockedIn)
	assert.False(t, st.IsOnBreak)
	if assert.NotNil(t, st.CurrentSessionStart) {
		assert.True(t, st.CurrentSessionStart.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
	}
	assert.Equal(t, int64(120), st.TotalWorkingSeconds)
	assert.Equal(t, int64(30), st.TotalBreakSeconds)
	assert.Equal(t, 2, st.SessionCount)
	assert.Equal(t, "09:00-18:00", st.ShiftTime)
	assert.JSONEq(t, "14", string(st.PresentToday))
	assert.JSONEq(t, "3", string(st.AbsentToday))
}

func TestHTTPClient_GetTodayStatus_Malformed(t *testing.T) {
	client := newBackendClient(t, func(r *gin.Engine) {
		r.GET("/attendance/today-status", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", []byte(`{"ok":true,"data":{"is_clocked_in":true,"current_session_start":"yesterday"}}`))
		})
	})

	_, err := client.GetTodayStatus(context.Background())
	assert.True(t, apperror.Is(err, apperror.CodeUpstreamError))
}

func TestHTTPClient_ClockIn(t *testing.T) {
	t.Run("without snapshot", func(t *testing.T) {
		client := newBackendClient(t, func(r *gin.Engine) {
			r.POST("/attendance/clock-in", func(c *gin.Context) {
				var req attendance.ClockRequest
				assert.NoError(t, c.ShouldBindJSON(&req))
				assert.Equal(t, "fp-1", req.DeviceFingerprint)
				assert.Equal(t, "2026-03-10T10:00:00Z", req.Timestamp)
				response.Success(c, http.StatusOK, gin.H{"message": "ok"})
			})
		})

		st, err := client.ClockIn(context.Background(), attendance.ClockRequest{DeviceFingerprint: "fp-1", Timestamp: "2026-03-10T10:00:00Z"})
		assert.NoError(t, err)
		assert.Nil(t, st)
	})

	t.Run("with snapshot", func(t *testing.T) {
		client := newBackendClient(t, func(r *gin.Engine) {
			r.POST("/attendance/clock-in", func(c *gin.Context) {
				start := "2026-03-10T10:00:00Z"
				response.Success(c, http.StatusOK, attendance.MutationResponse{
					Status: &attendance.StatusResponse{IsClockedIn: true, CurrentSessionStart: &start, SessionCount: 1},
				})
			})
		})

		st, err := client.ClockIn(context.Background(), attendance.ClockRequest{})
		assert.NoError(t, err)
		if assert.NotNil(t, st) {
			assert.True(t, st.IsClockedIn)
			assert.Equal(t, 1, st.SessionCount)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		client := newBackendClient(t, func(r *gin.Engine) {
			r.POST("/attendance/clock-in", func(c *gin.Context) {
				response.Error(c, http.StatusBadRequest, "ALREADY_CLOCKED_IN", "You are already clocked in", nil)
			})
		})

		_, err := client.ClockIn(context.Background(), attendance.ClockRequest{})
		assert.Error(t, err)
		assert.Equal(t, "You are already clocked in", upstream.Message(err, "fallback"))
	})
}

func TestHTTPClient_ToggleBreak(t *testing.T) {
	client := newBackendClient(t, func(r *gin.Engine) {
		r.POST("/attendance/toggle-break", func(c *gin.Context) {
			var req attendance.BreakRequest
			assert.NoError(t, c.ShouldBindJSON(&req))
			assert.Equal(t, attendance.ActionStartBreak, req.Action)
			response.Success(c, http.StatusOK, attendance.MutationResponse{Action: "start"})
		})
	})

	res, err := client.ToggleBreak(context.Background(), attendance.BreakRequest{Action: attendance.ActionStartBreak})
	assert.NoError(t, err)
	assert.Equal(t, attendance.ActionStartBreak, res.Action)
	assert.Nil(t, res.Status)
}

func TestHTTPClient_ViewAttendance(t *testing.T) {
	client := newBackendClient(t, func(r *gin.Engine) {
		r.GET("/attendance/admin-details", func(c *gin.Context) {
			assert.Equal(t, "u-2", c.Query("user_id"))
			assert.Equal(t, "2026-03-09", c.Query("date"))
			c.Data(http.StatusOK, "application/json", []byte(`{"ok":true,"data":{"sessions":[
				{"clock_in":"2026-03-09T09:00:00Z","clock_out":"2026-03-09T17:00:00Z",
				 "breaks":[{"start":"2026-03-09T12:00:00Z","end":"2026-03-09T12:30:00Z"}]},
				{"clock_in":"2026-03-09T18:00:00Z","clock_out":null,"breaks":[]}
			]}}`))
		})
	})

	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	d, err := client.ViewAttendance(context.Background(), "u-2", date)
	assert.NoError(t, err)
	assert.Equal(t, "u-2", d.UserID)
	if assert.Len(t, d.Sessions, 2) {
		assert.Len(t, d.Sessions[0].Breaks, 1)
		assert.NotNil(t, d.Sessions[0].ClockOut)
		assert.Nil(t, d.Sessions[1].ClockOut)
	}

	_, err = client.ViewAttendance(context.Background(), " ", date)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidInput))
}
