package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST   ErrCode = "REQUEST_FAILED"
	BAD_REQUEST      ErrCode = "FAILED_TO_DECODE"
	INVALID_INPUT    ErrCode = "INVALID_INPUT"
	UNAUTHORIZED     ErrCode = "UNAUTHORIZED"
	FORBIDDEN        ErrCode = "FORBIDDEN"
	NOT_FOUND        ErrCode = "NOT_FOUND"
	LOCKED           ErrCode = "LOCKED"
	CONFLICT         ErrCode = "CONFLICT"
	ALREADY_BOOKED   ErrCode = "ALREADY_BOOKED"
	SUBJECT_MISMATCH ErrCode = "SUBJECT_MISMATCH"
	ALREADY_CLAIMED  ErrCode = "ALREADY_CLAIMED"
	SLOT_BOOKED      ErrCode = "SLOT_BOOKED"
	ALREADY_EXISTS   ErrCode = "ALREADY_EXISTS"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrLocked       = errors.New("resource is locked")
	ErrConflict     = errors.New("conflict")

	ErrAlreadyBooked   = fmt.Errorf("%w: slot is already booked", ErrConflict)
	ErrSubjectMismatch = fmt.Errorf("%w: tutor does not teach this subject", ErrConflict)
	ErrAlreadyClaimed  = fmt.Errorf("%w: question already claimed or answered", ErrConflict)
	ErrSlotBooked      = fmt.Errorf("%w: cannot delete a booked slot", ErrConflict)
	ErrAlreadyExists   = fmt.Errorf("%w: resource already exists", ErrConflict)
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// Fail writes the error envelope that matches err's class and returns the status it used.
// Conflict subclasses are checked before the generic conflict.
func Fail(w http.ResponseWriter, r *http.Request, err error, fallback string) int {
	status, code, msg := classify(err, fallback)

	w.WriteHeader(status)
	render.JSON(w, r, Error(string(code), msg))

	return status
}

func classify(err error, fallback string) (int, ErrCode, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, INVALID_INPUT, "invalid input"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, UNAUTHORIZED, "not authenticated"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, FORBIDDEN, "not authorized"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, NOT_FOUND, "resource not found"
	case errors.Is(err, ErrLocked):
		return http.StatusLocked, LOCKED, "resource is locked"
	case errors.Is(err, ErrAlreadyBooked):
		return http.StatusConflict, ALREADY_BOOKED, "this time slot is already booked"
	case errors.Is(err, ErrSubjectMismatch):
		return http.StatusConflict, SUBJECT_MISMATCH, "this tutor does not teach the requested subject"
	case errors.Is(err, ErrAlreadyClaimed):
		return http.StatusConflict, ALREADY_CLAIMED, "already claimed or answered"
	case errors.Is(err, ErrSlotBooked):
		return http.StatusConflict, SLOT_BOOKED, "cannot delete booked slot"
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict, ALREADY_EXISTS, "resource already exists"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, CONFLICT, "conflict"
	default:
		return http.StatusInternalServerError, FAILED_REQUEST, fallback
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is required", err.Field()))
		case "min":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at least %s long", err.Field(), err.Param()))
		case "max":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at most %s long", err.Field(), err.Param()))
		case "subject":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is not a valid subject", err.Field()))
		case "hhmm":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must use HH:MM format", err.Field()))
		default:
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is invalid", err.Field()))
		}
	}

	return Error(string(INVALID_INPUT), strings.Join(errMsg, ", "))
}
