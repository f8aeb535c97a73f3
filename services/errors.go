package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuditWrite = errors.New("audit log write failed")
	ErrForbidden  = errors.New("forbidden")
)

// Error carries a client-facing message together with its kind, one of the
// sentinels above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// auditWriteError keeps the store error for logging while reporting an
// audit-write failure to the caller.
type auditWriteError struct {
	cause error
}

func (e *auditWriteError) Error() string {
	return "audit log write failed: " + e.cause.Error()
}

func (e *auditWriteError) Is(target error) bool {
	return target == ErrAuditWrite
}

func (e *auditWriteError) Unwrap() error {
	return e.cause
}

// RequestMeta describes where a privileged request came from.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// isDuplicateKey reports a unique index violation. Drivers without an error
// translator (the pure-Go sqlite one) only expose it in the message.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
