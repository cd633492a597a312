package qdrant

import (
	"fmt"
	"net/http"
)

type OperationErrorCode string

const (
	OperationErrorValidation      OperationErrorCode = "validation_failed"
	OperationErrorEncodeFailed    OperationErrorCode = "encode_failed"
	OperationErrorDecodeFailed    OperationErrorCode = "decode_failed"
	OperationErrorTransportFailed OperationErrorCode = "transport_failed"
	OperationErrorTimeout         OperationErrorCode = "timeout"
	OperationErrorRequestFailed   OperationErrorCode = "request_failed"
	OperationErrorSchemaMismatch  OperationErrorCode = "schema_mismatch"
)

// OperationError is returned by every Client call that fails. StatusCode is zero when the
// request never produced an HTTP response.
type OperationError struct {
	Code       OperationErrorCode
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "qdrant operation failed"
	}
	head := fmt.Sprintf("qdrant %s failed (code=%s", e.Operation, e.Code)
	if e.StatusCode != 0 {
		head += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	head += ")"
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", head, e.Message, e.Cause)
	case e.Message != "":
		return head + ": " + e.Message
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", head, e.Cause)
	}
	return head
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Retryable reports whether repeating the same request may succeed.
func (e *OperationError) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Code {
	case OperationErrorTimeout, OperationErrorTransportFailed:
		return true
	case OperationErrorRequestFailed:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	return false
}

func opErr(op string, code OperationErrorCode, msg string, cause error) error {
	return &OperationError{
		Code:      code,
		Operation: op,
		Message:   msg,
		Cause:     cause,
	}
}
