// Kunhua Huang 2026

package protocol

import (
	"errors"
	"fmt"
)

type ErrorCode int32

const (
	ErrorCodeOK ErrorCode = iota
	ErrorCodeArgument
	ErrorCodeAddress
	ErrorCodeTransportSetup
	ErrorCodeSend
	ErrorCodeReceive
	ErrorCodeMalformedFrame
	ErrorCodeFrameTooLarge
	ErrorCodeInvalidKey
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeOK:
		return "OK"
	case ErrorCodeArgument:
		return "ArgumentError"
	case ErrorCodeAddress:
		return "AddressError"
	case ErrorCodeTransportSetup:
		return "TransportSetupError"
	case ErrorCodeSend:
		return "SendError"
	case ErrorCodeReceive:
		return "ReceiveError"
	case ErrorCodeMalformedFrame:
		return "MalformedFrame"
	case ErrorCodeFrameTooLarge:
		return "FrameTooLarge"
	case ErrorCodeInvalidKey:
		return "InvalidKey"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int32(c))
	}
}

// Error is the single error type crossing package boundaries. Two errors are
// considered equal by errors.Is when their codes match, so callers compare
// against the sentinels below regardless of the details attached.
type Error struct {
	Code    ErrorCode
	Message string
	Details string
	Err     error
}

var (
	ErrArgument       = NewError(ErrorCodeArgument, "invalid arguments")
	ErrAddress        = NewError(ErrorCodeAddress, "invalid address")
	ErrTransportSetup = NewError(ErrorCodeTransportSetup, "transport setup failed")
	ErrSend           = NewError(ErrorCodeSend, "send failed")
	ErrReceive        = NewError(ErrorCodeReceive, "receive failed")
	ErrMalformedFrame = NewError(ErrorCodeMalformedFrame, "malformed frame")
	ErrFrameTooLarge  = NewError(ErrorCodeFrameTooLarge, "frame too large")
	ErrInvalidKey     = NewError(ErrorCodeInvalidKey, "invalid key")
)

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap returns an error of the given code carrying formatted details and an
// optional cause.
func Wrap(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: defaultMessage(code),
		Details: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the code of the first *Error in err's chain.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrorCodeOK
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrorCode(-1)
}

// Fatal reports whether err belongs to the startup categories that end the
// process: arguments, address validation and transport setup.
func Fatal(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeArgument, ErrorCodeAddress, ErrorCodeTransportSetup:
		return true
	}
	return false
}

func defaultMessage(code ErrorCode) string {
	switch code {
	case ErrorCodeArgument:
		return ErrArgument.Message
	case ErrorCodeAddress:
		return ErrAddress.Message
	case ErrorCodeTransportSetup:
		return ErrTransportSetup.Message
	case ErrorCodeSend:
		return ErrSend.Message
	case ErrorCodeReceive:
		return ErrReceive.Message
	case ErrorCodeMalformedFrame:
		return ErrMalformedFrame.Message
	case ErrorCodeFrameTooLarge:
		return ErrFrameTooLarge.Message
	case ErrorCodeInvalidKey:
		return ErrInvalidKey.Message
	}
	return "unknown error"
}
