package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/contextutil"
	"digiwave-dashboard/internal/shared/response"
	"digiwave-dashboard/internal/shared/upstream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type echo struct {
	Value string `json:"value"`
}

func newBackend(t *testing.T, register func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Get(t *testing.T) {
	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/echo", func(c *gin.Context) {
			assert.Equal(t, "Bearer tok-1", c.GetHeader("Authorization"))
			assert.Equal(t, "rid-1", c.GetHeader("X-Request-ID"))
			response.Success(c, http.StatusOK, echo{Value: c.Query("v")})
		})
	})

	ctx := contextutil.WithAccessToken(context.Background(), "tok-1")
	ctx = contextutil.WithRequestID(ctx, "rid-1")

	var out echo
	err := upstream.New(srv.URL, srv.Client()).Get(ctx, "/echo", url.Values{"v": {"hello"}}, &out)
	assert.NoError(t, err)
	assert.Equal(t, "hello", out.Value)
}

func TestClient_Post(t *testing.T) {
	srv := newBackend(t, func(r *gin.Engine) {
		r.POST("/echo", func(c *gin.Context) {
			assert.NotEmpty(t, c.GetHeader("Idempotency-Key"))
			var in echo
			assert.NoError(t, c.ShouldBindJSON(&in))
			response.Success(c, http.StatusCreated, in)
		})
		r.POST("/empty", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	})
	client := upstream.New(srv.URL, srv.Client())

	var out echo
	assert.NoError(t, client.Post(context.Background(), "/echo", echo{Value: "x"}, &out))
	assert.Equal(t, "x", out.Value)

	assert.NoError(t, client.Post(context.Background(), "/empty", nil, nil))
}

func TestClient_Errors(t *testing.T) {
	srv := newBackend(t, func(r *gin.Engine) {
		r.POST("/conflict", func(c *gin.Context) {
			response.Error(c, http.StatusConflict, "CONFLICT", "Already clocked in", nil)
		})
		r.POST("/bare", func(c *gin.Context) {
			c.String(http.StatusInternalServerError, "oops")
		})
		r.GET("/slow", func(c *gin.Context) {
			time.Sleep(200 * time.Millisecond)
			response.Success(c, http.StatusOK, nil)
		})
	})
	client := upstream.New(srv.URL, srv.Client())

	t.Run("backend message is kept", func(t *testing.T) {
		err := client.Post(context.Background(), "/conflict", nil, nil)
		var upErr *upstream.Error
		assert.True(t, errors.As(err, &upErr))
		assert.Equal(t, http.StatusConflict, upErr.Status)
		assert.Equal(t, "Already clocked in", upstream.Message(err, "fallback"))
		assert.Equal(t, http.StatusConflict, apperror.ToHTTP(err).Status)
	})

	t.Run("missing message uses fallback", func(t *testing.T) {
		err := client.Post(context.Background(), "/bare", nil, nil)
		assert.Error(t, err)
		assert.Equal(t, "Failed to clock in", upstream.Message(err, "Failed to clock in"))
		appErr := upstream.AsAppError(err, "Failed to clock in")
		assert.Equal(t, "Failed to clock in", appErr.Message)
		assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
	})

	t.Run("deadline is a timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := client.Get(ctx, "/slow", nil, nil)
		assert.True(t, apperror.Is(err, apperror.CodeUpstreamTimeout))
	})

	t.Run("unreachable", func(t *testing.T) {
		dead := upstream.New("http://127.0.0.1:1", nil)
		err := dead.Get(context.Background(), "/x", nil, nil)
		assert.True(t, apperror.Is(err, apperror.CodeServiceUnavailable))
	})
}

func TestClient_LogsCarryRequestMetadata(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dead := upstream.New("http://127.0.0.1:1", nil, zap.New(core))

	ctx := contextutil.WithRequestID(context.Background(), "rid-9")
	ctx = contextutil.WithUserID(ctx, "u-9")
	_ = dead.Get(ctx, "/attendance/today-status", nil, nil)

	entries := logs.FilterMessage("upstream request failed").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "rid-9", fields["request_id"])
		assert.Equal(t, "u-9", fields["user_id"])
		assert.Equal(t, "/attendance/today-status", fields["path"])
	}
}
