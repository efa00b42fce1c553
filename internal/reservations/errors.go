package reservations

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable rejection code.
type Code string

const (
	CodeBookNotAvailable  Code = "BOOK_NOT_AVAILABLE"
	CodeBookingConflict   Code = "BOOKING_CONFLICT"
	CodeClosedDay         Code = "CLOSED_DAY"
	CodeInvalidDate       Code = "INVALID_DATE"
	CodeDailyLimitReached Code = "DAILY_LIMIT_REACHED"
	CodeSlotLimitReached  Code = "SLOT_LIMIT_REACHED"

	CodeNotFound          Code = "RESERVATION_NOT_FOUND"
	CodeInvalidTransition Code = "INVALID_STATUS_TRANSITION"
	CodeValidation        Code = "VALIDATION_ERROR"
)

// Error is a business-rule rejection. It is never retried.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the rejection code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
