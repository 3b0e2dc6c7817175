package booking

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers. Handlers map these onto HTTP statuses
// so user-facing messages can be rendered from structured results.
const (
	CodeInvalidInterval     = "invalidInterval"
	CodeSlotUnavailable     = "slotUnavailable"
	CodeNotFound            = "notFound"
	CodeSlotInUse           = "slotInUse"
	CodeIllegalTransition   = "illegalTransition"
	CodeBookingNotCompleted = "bookingNotCompleted"
	CodeDuplicateFeedback   = "duplicateFeedback"
	CodePaymentGateway      = "paymentGatewayError"
)

// Error is a coded service error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the service error code from err, or "" when err does
// not carry one.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given service error code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
