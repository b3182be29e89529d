package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures surfaced by the core.
type ErrorCode string

const (
	// ErrCodeStorageUnavailable indicates the persistent store cannot be opened or used.
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// ErrCodeRitualNotFound indicates an operation referenced an unknown ritual id.
	ErrCodeRitualNotFound ErrorCode = "RITUAL_NOT_FOUND"

	// ErrCodeInvalidTransferFormat indicates an import file failed validation.
	ErrCodeInvalidTransferFormat ErrorCode = "INVALID_TRANSFER_FORMAT"

	// ErrCodeMalformedResponseKey indicates a flattened response key could not be parsed.
	ErrCodeMalformedResponseKey ErrorCode = "MALFORMED_RESPONSE_KEY"

	// ErrCodeInvalidRitual indicates a ritual failed Validate before persistence.
	ErrCodeInvalidRitual ErrorCode = "INVALID_RITUAL"
)

// Error carries a code plus enough context for a caller to build a
// user-facing message.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID is the ritual id or response key involved, if any.
	ID string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ID != "" {
		msg = fmt.Sprintf("%s (id=%s)", msg, e.ID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var me *Error
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsStorageUnavailable reports whether err is a storage-unavailable error.
func IsStorageUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeStorageUnavailable
}

// IsRitualNotFound reports whether err is a ritual-not-found error.
func IsRitualNotFound(err error) bool {
	return CodeOf(err) == ErrCodeRitualNotFound
}

// IsInvalidTransferFormat reports whether err is an invalid-transfer-format error.
func IsInvalidTransferFormat(err error) bool {
	return CodeOf(err) == ErrCodeInvalidTransferFormat
}

// IsMalformedResponseKey reports whether err is a malformed-response-key error.
func IsMalformedResponseKey(err error) bool {
	return CodeOf(err) == ErrCodeMalformedResponseKey
}

// IsInvalidRitual reports whether err is an invalid-ritual error.
func IsInvalidRitual(err error) bool {
	return CodeOf(err) == ErrCodeInvalidRitual
}

// NewStorageUnavailableError wraps a backend failure.
func NewStorageUnavailableError(message string, err error) *Error {
	return &Error{Code: ErrCodeStorageUnavailable, Message: message, Err: err}
}

// NewRitualNotFoundError reports an unknown ritual id.
func NewRitualNotFoundError(id string) *Error {
	return &Error{Code: ErrCodeRitualNotFound, Message: "ritual not found", ID: id}
}

// NewInvalidTransferFormatError reports a rejected import file.
func NewInvalidTransferFormatError(message string, err error) *Error {
	return &Error{Code: ErrCodeInvalidTransferFormat, Message: message, Err: err}
}

// NewMalformedResponseKeyError reports an unparseable flattened response key.
func NewMalformedResponseKeyError(key string) *Error {
	return &Error{Code: ErrCodeMalformedResponseKey, Message: "cannot parse response key", ID: key}
}

// NewInvalidRitualError reports a ritual that cannot be persisted.
func NewInvalidRitualError(id, message string) *Error {
	return &Error{Code: ErrCodeInvalidRitual, Message: message, ID: id}
}
