// Package errors provides standardized error handling for the complaint pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEventParseFailed  ErrorCode = "EVENT_PARSE_FAILED"
	ErrCodeEventInvalid      ErrorCode = "EVENT_VALIDATION_FAILED"
	ErrCodeSequenceExhausted ErrorCode = "SEQUENCE_EXHAUSTED"
	ErrCodeLedgerIOFailed    ErrorCode = "LEDGER_IO_FAILED"
	ErrCodeLedgerLockFailed  ErrorCode = "LEDGER_LOCK_FAILED"
	ErrCodePDFRenderFailed   ErrorCode = "PDF_RENDER_FAILED"
	ErrCodeMailSendFailed    ErrorCode = "MAIL_SEND_FAILED"
	ErrCodeUploadFailed      ErrorCode = "UPLOAD_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Err
}

// NewEventParseFailedError creates a non-retryable event parsing error.
func NewEventParseFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventParseFailed,
		Message:   "Failed to parse submission event",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewEventInvalidError creates a non-retryable payload validation error.
func NewEventInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventInvalid,
		Message:   "Submission payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSequenceExhaustedError creates a non-retryable identifier allocation error.
func NewSequenceExhaustedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSequenceExhausted,
		Message:   "Complaint identifier sequence exhausted for year",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewLedgerIOFailedError creates a retryable ledger read/write error.
func NewLedgerIOFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerIOFailed,
		Message:   "Ledger file could not be written",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewLedgerLockFailedError creates a retryable lock acquisition error.
func NewLedgerLockFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerLockFailed,
		Message:   "Ledger lock could not be acquired",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewPDFRenderFailedError creates a non-retryable report rendering error.
func NewPDFRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePDFRenderFailed,
		Message:   "Complaint report PDF could not be rendered",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewMailSendFailedError creates a retryable mail delivery error.
func NewMailSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMailSendFailed,
		Message:   "Complaint report email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewUploadFailedError creates a retryable storage upload error.
func NewUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   "Complaint report upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}
