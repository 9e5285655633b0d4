package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/target/eventhub/internal/errors"
)

// statusForError maps an application error to an HTTP status and error code.
// fallback is the error code used for unclassified failures.
func statusForError(err error, fallback string) (int, string) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, "validation_failed"
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, "not_found"
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized, "authentication_required"
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden, "insufficient_permissions"
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		return http.StatusConflict, "conflict"
	case apperrors.ErrCodeUnavailable:
		return http.StatusBadGateway, "backend_unavailable"
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, fallback
}

// writeServiceError writes err as a JSON error response.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	code, errCode := statusForError(err, fallback)
	WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: err})
}
