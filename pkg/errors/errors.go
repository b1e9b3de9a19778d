package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeRoomInUse         = "ROOM_IN_USE"
	CodeBackupUnavailable = "BACKUP_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
	CodeBadRequest        = "BAD_REQUEST"
	CodeTimeout           = "TIMEOUT"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
	CodeInvalidInput      = "INVALID_INPUT"
)

// AppError is the structured error every operation returns on rejection:
// a machine-readable code, a human-readable message, and optional details.
// All codes here are recoverable at the caller boundary; nothing in the
// core is fatal to the process.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidTransition rejects a status change that is not an edge of the
// lifecycle table. It always names the current and requested states.
func InvalidTransition(current, requested string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot transition reservation from %s to %s", current, requested),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"current":   current,
			"requested": requested,
		},
	}
}

// RoomInUse rejects a room deletion blocked by referencing reservations.
func RoomInUse(roomID string, openReservations int64) *AppError {
	return &AppError{
		Code:       CodeRoomInUse,
		Message:    "room has reservations referencing it and cannot be deleted",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"room_id":           roomID,
			"open_reservations": openReservations,
		},
	}
}

// BackupUnavailable rejects a download of a backup that has not succeeded.
func BackupUnavailable(status string) *AppError {
	return &AppError{
		Code:       CodeBackupUnavailable,
		Message:    fmt.Sprintf("backup is not downloadable in status %s", status),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"status": status,
		},
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
