// Package errors defines the coded error kinds produced while relaying a
// recording and maps them to HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the relay pipeline.
const (
	CodeUnknown       = "UNKNOWN"
	CodeInput         = "INPUT"
	CodeMethod        = "METHOD"
	CodeConfig        = "CONFIG"
	CodeUpstreamText  = "UPSTREAM_TEXT"
	CodeUpstreamAudio = "UPSTREAM_AUDIO"
	CodeTransport     = "TRANSPORT"
)

// ApplicationError is the interface that all relay errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error is the shared implementation behind every kind.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// HTTPStatus maps an error to the status returned to the caller.
func HTTPStatus(err error) int {
	switch Code(err) {
	case CodeInput:
		return http.StatusBadRequest
	case CodeMethod:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// InputError reports a request missing required fields or carrying
// malformed ones.
type InputError struct {
	base Error
}

func (e *InputError) Error() string { return e.base.Error() }
func (e *InputError) Code() string  { return e.base.Code() }
func (e *InputError) Unwrap() error { return e.base.Unwrap() }

func NewInputError(message string, cause error) error {
	return &InputError{base: Error{code: CodeInput, message: message, err: cause}}
}

// MethodError reports a disallowed HTTP method.
type MethodError struct {
	base Error
}

func (e *MethodError) Error() string { return e.base.Error() }
func (e *MethodError) Code() string  { return e.base.Code() }
func (e *MethodError) Unwrap() error { return e.base.Unwrap() }

func NewMethodError(message string) error {
	return &MethodError{base: Error{code: CodeMethod, message: message}}
}

// ConfigError reports missing credentials or other server misconfiguration.
type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string { return e.base.Error() }
func (e *ConfigError) Code() string  { return e.base.Code() }
func (e *ConfigError) Unwrap() error { return e.base.Unwrap() }

func NewConfigError(message string, cause error) error {
	return &ConfigError{base: Error{code: CodeConfig, message: message, err: cause}}
}

// UpstreamTextError reports that the platform rejected the text message.
// No audio has been sent when this is returned.
type UpstreamTextError struct {
	base Error
}

func (e *UpstreamTextError) Error() string { return e.base.Error() }
func (e *UpstreamTextError) Code() string  { return e.base.Code() }
func (e *UpstreamTextError) Unwrap() error { return e.base.Unwrap() }

func NewUpstreamTextError(message string, cause error) error {
	return &UpstreamTextError{base: Error{code: CodeUpstreamText, message: message, err: cause}}
}

// UpstreamAudioError reports that the platform rejected the audio upload
// after the text message was already delivered.
type UpstreamAudioError struct {
	base Error
}

func (e *UpstreamAudioError) Error() string { return e.base.Error() }
func (e *UpstreamAudioError) Code() string  { return e.base.Code() }
func (e *UpstreamAudioError) Unwrap() error { return e.base.Unwrap() }

func NewUpstreamAudioError(message string, cause error) error {
	return &UpstreamAudioError{base: Error{code: CodeUpstreamAudio, message: message, err: cause}}
}

// TransportError reports a network level failure at either step.
type TransportError struct {
	base Error
}

func (e *TransportError) Error() string { return e.base.Error() }
func (e *TransportError) Code() string  { return e.base.Code() }
func (e *TransportError) Unwrap() error { return e.base.Unwrap() }

func NewTransportError(message string, cause error) error {
	return &TransportError{base: Error{code: CodeTransport, message: message, err: cause}}
}
