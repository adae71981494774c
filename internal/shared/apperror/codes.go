package apperror

// Request errors, returned before anything reaches the backend.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeTooMany      = "TOO_MANY_REQUESTS"
)

// Attendance rule violations. These are local warnings; the action is
// never forwarded.
const (
	CodeInvalidState = "INVALID_STATE"
	CodeNotEligible  = "NOT_ELIGIBLE"
)

// Failures on our side or the backend's.
const (
	CodeInternalError      = "INTERNAL_ERROR"
	CodeUpstreamError      = "UPSTREAM_ERROR"
	CodeUpstreamTimeout    = "UPSTREAM_TIMEOUT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
