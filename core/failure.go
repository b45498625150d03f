package core

import (
	"errors"
	"fmt"
	"strconv"
)

// FailureKind classifies every error produced at the API boundary.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureNetwork
	FailureHTTP
	FailureParse
	FailureTimeout
	FailureValidation
)

func (k FailureKind) String() string {
	switch k {
	case FailureNetwork:
		return "network"
	case FailureHTTP:
		return "http"
	case FailureParse:
		return "parse"
	case FailureTimeout:
		return "timeout"
	case FailureValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Failure is the single error type handed to display code. It is built once,
// where the banking API is called, and read everywhere else.
type Failure struct {
	Kind FailureKind

	// Code is the HTTP status for FailureHTTP, zero otherwise.
	Code int

	// Message is the "message" field of a JSON error body, or the message of
	// a validation failure.
	Message string

	// Data is the raw body when the server answered with something that is
	// not a JSON message.
	Data string

	// Detail describes transport level problems.
	Detail string

	Err error
}

func (f *Failure) Error() string {
	switch {
	case f.Message != "":
		return fmt.Sprintf("%s failure (%s): %s", f.Kind, f.statusLabel(), f.Message)
	case f.Detail != "":
		return fmt.Sprintf("%s failure (%s): %s", f.Kind, f.statusLabel(), f.Detail)
	default:
		return fmt.Sprintf("%s failure (%s)", f.Kind, f.statusLabel())
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) statusLabel() string {
	status, ok := f.Status()
	if !ok {
		return "no status"
	}
	return status
}

// Status returns the status shown to users. HTTP failures report their code,
// transport failures a symbolic status.
func (f *Failure) Status() (string, bool) {
	switch f.Kind {
	case FailureHTTP:
		return strconv.Itoa(f.Code), true
	case FailureNetwork:
		return "FETCH_ERROR", true
	case FailureParse:
		return "PARSING_ERROR", true
	case FailureTimeout:
		return "TIMEOUT_ERROR", true
	case FailureValidation:
		return "CUSTOM_ERROR", true
	default:
		return "", false
	}
}

func (f *Failure) IsUnauthorized() bool {
	return f.Kind == FailureHTTP && f.Code == 401
}

func NewValidationFailure(message string) *Failure {
	return &Failure{Kind: FailureValidation, Message: message}
}

func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// StatusOf extracts a displayable status from any error.
func StatusOf(err error) (string, bool) {
	f, ok := AsFailure(err)
	if !ok {
		return "", false
	}
	return f.Status()
}

// Describe builds the panel level message for a failed fetch of resource.
func Describe(err error, resource string) string {
	if err == nil {
		return fmt.Sprintf("An unknown error occurred while fetching %s.", resource)
	}
	f, ok := AsFailure(err)
	if !ok {
		return fmt.Sprintf("Error: %s", err.Error())
	}
	status, hasStatus := f.Status()
	switch {
	case f.Kind == FailureHTTP:
		msg := fmt.Sprintf("Error fetching %s. Status: %s.", resource, status)
		if f.Message != "" {
			msg += fmt.Sprintf(" Message: %s", f.Message)
		} else if f.Data != "" {
			msg += fmt.Sprintf(" Data: %s", f.Data)
		}
		return msg
	case hasStatus && f.Detail != "":
		return fmt.Sprintf("Error fetching %s. Status: %s. Details: %s", resource, status, f.Detail)
	case f.Message != "":
		return fmt.Sprintf("Error: %s", f.Message)
	default:
		return fmt.Sprintf("An unexpected error structure was encountered while fetching %s. Details: %s", resource, f.Error())
	}
}

// Feedback builds the one line message shown next to a form after a failed
// submit.
func Feedback(err error) string {
	if err == nil {
		return ""
	}
	f, ok := AsFailure(err)
	if !ok {
		return err.Error()
	}
	switch {
	case f.Message != "":
		return f.Message
	case f.Detail != "":
		return f.Detail
	default:
		return "An unexpected error occurred."
	}
}
