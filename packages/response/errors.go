package response

import "fmt"

// Business error codes.
const (
	// Fail is the catch-all failure.
	Fail ResponseCode = 0
	// ParseError means the request could not be bound.
	ParseError ResponseCode = 1
	// InvalidParameter means a field failed validation.
	InvalidParameter ResponseCode = 2
	// Conflict means a unique identifier is already taken.
	Conflict ResponseCode = 3
	// InvalidRole means the role is not one of admin/doctor/staff/user.
	InvalidRole ResponseCode = 4
	// Persistence means the database refused the operation.
	Persistence ResponseCode = 5
	// SessionExpired means the pending state is gone from the session.
	SessionExpired ResponseCode = 6
	// OtpExpired means the one-time code outlived its validity window.
	OtpExpired ResponseCode = 7
	// MailDelivery means the mail could not be handed to SMTP.
	MailDelivery ResponseCode = 8
	Unauthorized ResponseCode = 9
	Forbidden    ResponseCode = 10
	NotFound     ResponseCode = 11
)

type BusinessError struct {
	Code ResponseCode
	Msg  string
	Err  error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

type ErrorOption func(*BusinessError)

func WithErrorCode(code ResponseCode) ErrorOption {
	return func(be *BusinessError) {
		be.Code = code
	}
}

func WithErrorMessage(msg string) ErrorOption {
	return func(be *BusinessError) {
		be.Msg = msg
	}
}

func WithError(err error) ErrorOption {
	return func(be *BusinessError) {
		be.Err = err
	}
}

func NewBusinessError(opts ...ErrorOption) *BusinessError {
	err := &BusinessError{
		Code: Fail,
		Msg:  "business error",
		Err:  nil,
	}
	for _, opt := range opts {
		opt(err)
	}
	return err
}

// Invalid is shorthand for a validation failure shown back to the user.
func Invalid(msg string) *BusinessError {
	return NewBusinessError(WithErrorCode(InvalidParameter), WithErrorMessage(msg))
}
