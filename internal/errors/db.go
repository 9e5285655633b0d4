package errors

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column from "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError maps database errors to AppError instances:
//   - pgx.ErrNoRows → NotFound
//   - unique violations → Conflict
//   - foreign key violations → ForeignKey
//   - check and NOT NULL violations → Validation
//   - invalid JSON input → Validation
//   - connection failures → Unavailable
//   - context deadline/cancel → Timeout/Canceled
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "Record not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &AppError{Code: ErrCodeUnavailable, Message: "The record store is unavailable.", Cause: err}
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		field := pgErr.ColumnName
		if field == "" {
			if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
				field = m[1]
			}
		}
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists. Please choose a different one.",
			Field:   field,
			Cause:   pgErr,
		}
	case pgerrcode.ForeignKeyViolation:
		return &AppError{
			Code:    ErrCodeForeignKey,
			Message: "Cannot complete operation because this record is in use.",
			Cause:   pgErr,
		}
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		msg := "Invalid data. Please check your input."
		if pgErr.ColumnName != "" {
			msg = "This field has an invalid value."
		}
		return &AppError{Code: ErrCodeValidation, Message: msg, Field: pgErr.ColumnName, Cause: pgErr}
	case pgerrcode.InvalidTextRepresentation, pgerrcode.InvalidParameterValue:
		return &AppError{Code: ErrCodeValidation, Message: "Invalid value for record field.", Cause: pgErr}
	case pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
		return &AppError{Code: ErrCodeUnavailable, Message: "The record store is unavailable.", Cause: pgErr}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}
