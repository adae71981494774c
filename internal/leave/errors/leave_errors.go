package leaveerrors

import (
	"net/http"

	"digiwave-dashboard/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrLeaveLookupFailed = apperror.New(
		apperror.CodeServiceUnavailable,
		"leave information is temporarily unavailable",
		http.StatusServiceUnavailable,
	)
)
