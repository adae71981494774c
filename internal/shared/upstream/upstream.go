// Package upstream is the REST plumbing shared by the clients that talk to
// the HRIS backend. Requests forward the caller's bearer token and request id;
// responses are read through the standard ok/data/error envelope.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/contextutil"
	"digiwave-dashboard/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBody = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, httpClient *http.Client, logger ...*zap.Logger) *Client {
	l := zap.L().Named("upstream")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("upstream")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  l,
	}
}

// Get issues a GET and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body. Every POST carries a fresh
// Idempotency-Key so the backend can drop transport-level retries.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if tok := contextutil.GetAccessToken(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(ctx, method, path, err)
	}
	defer resp.Body.Close()

	var env response.RawEnvelope
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&env)
	if errors.Is(decodeErr, io.EOF) && resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	if resp.StatusCode >= http.StatusBadRequest || (decodeErr == nil && !env.Ok) {
		return c.statusError(ctx, method, path, resp.StatusCode, env.Error)
	}
	if decodeErr != nil {
		return apperror.Wrap(decodeErr, apperror.CodeUpstreamError, "Unexpected response from server", http.StatusBadGateway)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperror.Wrap(err, apperror.CodeUpstreamError, "Unexpected response from server", http.StatusBadGateway)
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, method, path string, err error) error {
	c.logger.With(contextutil.ExtractMetadata(ctx).Fields()...).Warn("upstream request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(err, apperror.CodeUpstreamTimeout, "Request timed out", http.StatusGatewayTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperror.Wrap(err, apperror.CodeServiceUnavailable, "Server is unreachable", http.StatusServiceUnavailable)
}

// statusError keeps the backend's own message (which may be empty) so
// callers can choose their fallback text.
func (c *Client) statusError(ctx context.Context, method, path string, status int, body *response.ErrorBody) error {
	code := apperror.CodeUpstreamError
	message := ""
	if body != nil {
		if body.Code != "" {
			code = body.Code
		}
		message = body.Message
	}
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		status = http.StatusBadGateway
	}

	c.logger.With(contextutil.ExtractMetadata(ctx).Fields()...).Debug("upstream rejected request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("message", message),
	)
	return &Error{Status: status, AppError: apperror.New(code, message, status)}
}

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	*apperror.AppError
}

func (e *Error) Unwrap() error { return e.AppError }

// Message returns the backend-provided message carried by err, or fallback.
func Message(err error, fallback string) string {
	var upErr *Error
	if errors.As(err, &upErr) && upErr.AppError != nil && strings.TrimSpace(upErr.Message) != "" {
		return upErr.Message
	}
	return fallback
}

// AsAppError turns err into an AppError whose message is never empty.
func AsAppError(err error, fallback string) *apperror.AppError {
	var upErr *Error
	if errors.As(err, &upErr) && upErr.AppError != nil {
		return upErr.AppError.WithMessage(Message(err, fallback))
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Wrap(err, apperror.CodeInternalError, fallback, http.StatusInternalServerError)
}
