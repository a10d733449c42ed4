package osa

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode categorizes script execution failures.
type ErrorCode string

const (
	// ErrCodeValidation marks a malformed filter spec, caught before
	// any script is generated. It never reaches the subprocess.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"

	// ErrCodeTimeout marks a subprocess that exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeProcess marks a spawn failure, abnormal exit, or
	// cancellation before completion.
	ErrCodeProcess ErrorCode = "PROCESS_FAILED"

	// ErrCodeMalformedOutput marks interpreter output that did not
	// parse as the JSON envelope. The raw text is preserved for
	// diagnostics.
	ErrCodeMalformedOutput ErrorCode = "MALFORMED_OUTPUT"

	// ErrCodeScriptReported marks a structured error reported from
	// inside the interpreter: the envelope parsed fine but carried an
	// error marker instead of a payload.
	ErrCodeScriptReported ErrorCode = "SCRIPT_REPORTED"
)

// ScriptError is the failure side of a Result.
//
// Errors cross the engine boundary as values, never as panics: every
// public entry point above the engine returns a Result. Retry policy
// lives in the caller; nothing here retries.
type ScriptError struct {
	Code    ErrorCode
	Message string
	// Context carries secondary diagnostics: stderr for process
	// failures, the inner script's context marker for reported errors.
	Context string
	// Raw preserves unparseable interpreter output.
	Raw string
}

func (e *ScriptError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTimeout reports whether err is a ScriptError with ErrCodeTimeout.
func IsTimeout(err error) bool {
	var se *ScriptError
	return errors.As(err, &se) && se.Code == ErrCodeTimeout
}

// IsValidation reports whether err is a ScriptError with
// ErrCodeValidation.
func IsValidation(err error) bool {
	var se *ScriptError
	return errors.As(err, &se) && se.Code == ErrCodeValidation
}

// Result is the discriminated outcome of a script execution: either a
// JSON payload or a ScriptError, never both.
type Result struct {
	Data json.RawMessage
	Err  *ScriptError
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Err == nil
}

// Success wraps a payload in a successful Result.
func Success(data json.RawMessage) Result {
	return Result{Data: data}
}

// Failure wraps a ScriptError in a failed Result.
func Failure(err *ScriptError) Result {
	return Result{Err: err}
}

// ValidationFailure builds a failed Result for a pre-generation
// validation error.
func ValidationFailure(err error) Result {
	return Failure(&ScriptError{Code: ErrCodeValidation, Message: err.Error()})
}
