package attendanceerrors

import (
	"errors"
	"net/http"

	"digiwave-dashboard/internal/shared/apperror"
)

var (
	ErrMissingIdentity = apperror.New(
		apperror.CodeUnauthorized,
		"user identity not found in token",
		http.StatusUnauthorized,
	)
	ErrSessionNotMounted = apperror.New(
		apperror.CodeNotFound,
		"attendance session is not mounted",
		http.StatusNotFound,
	)
	ErrStatusNotLoaded = apperror.New(
		apperror.CodeServiceUnavailable,
		"attendance status is not loaded yet",
		http.StatusServiceUnavailable,
	)
	ErrMobileBlocked = apperror.New(
		apperror.CodeForbidden,
		"Attendance actions are only available on desktop devices. Please use a desktop or laptop computer.",
		http.StatusForbidden,
	)
	ErrOutsideShift = apperror.New(
		apperror.CodeNotEligible,
		"outside shift hours",
		http.StatusUnprocessableEntity,
	)
	ErrLeaveRestricted = apperror.New(
		apperror.CodeNotEligible,
		"restricted by approved leave",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"action is not allowed in the current attendance state",
		http.StatusConflict,
	)
	ErrActionInFlight = apperror.New(
		apperror.CodeConflict,
		"another attendance action is in progress",
		http.StatusConflict,
	)
	ErrActionCancelled = apperror.New(
		apperror.CodeConflict,
		"action cancelled",
		http.StatusConflict,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
)

// ErrConfirmationUnavailable is returned by a Confirmer whose dialog could not
// be shown. It never reaches the page.
var ErrConfirmationUnavailable = errors.New("confirmation dialog unavailable")
