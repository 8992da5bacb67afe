package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUnavailable      ErrorCode = "UNAVAILABLE"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodeInternal         ErrorCode = "INTERNAL"
	CodeCanceled         ErrorCode = "CANCELED"
	CodeDeadlineExceeded ErrorCode = "DEADLINE_EXCEEDED"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrToolNotFound     = errors.New("tool not found")
	ErrResourceNotFound = errors.New("resource not found")
)

// Error is the single failure shape returned by the tool and resource core.
type Error struct {
	Code      ErrorCode
	Op        string
	Message   string
	Cause     error
	Retryable bool
	Meta      map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is lets errors.Is(err, ErrValidation) match any INVALID_ARGUMENT error.
func (e *Error) Is(target error) bool {
	return e != nil && target == ErrValidation && e.Code == CodeInvalidArgument
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:      existing.Code,
			Op:        op,
			Message:   existing.Message,
			Cause:     existing.Cause,
			Retryable: existing.Retryable,
			Meta:      existing.Meta,
		}
	}
	return E(code, op, "", err)
}

// WithMeta returns a copy of e carrying an extra metadata entry.
func (e *Error) WithMeta(key, value string) *Error {
	if e == nil {
		return nil
	}
	next := *e
	next.Meta = make(map[string]string, len(e.Meta)+1)
	for k, v := range e.Meta {
		next.Meta[k] = v
	}
	next.Meta[key] = value
	return &next
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrValidation):
		return CodeInvalidArgument, true
	case errors.Is(err, ErrToolNotFound), errors.Is(err, ErrResourceNotFound):
		return CodeNotFound, true
	default:
		return "", false
	}
}

// MissingField reports a required argument absent for the selected operation.
func MissingField(tool, operation, field string) *Error {
	return E(CodeInvalidArgument, tool,
		fmt.Sprintf("%s is required for operation %q", field, operation), nil).
		WithMeta("field", field).
		WithMeta("operation", operation)
}

// InvalidSegment reports a URI path segment that is not a valid identifier.
func InvalidSegment(uri, segment string) *Error {
	return E(CodeInvalidArgument, "read resource",
		fmt.Sprintf("invalid identifier segment %q in %s", segment, uri), nil).
		WithMeta("uri", uri).
		WithMeta("segment", segment)
}

func ToolNotFound(id string) *Error {
	return E(CodeNotFound, "call tool", fmt.Sprintf("tool %q not found", id), ErrToolNotFound).
		WithMeta("tool", id)
}

func ResourceNotFound(uri string) *Error {
	return E(CodeNotFound, "read resource", fmt.Sprintf("resource %s not found", uri), ErrResourceNotFound).
		WithMeta("uri", uri)
}

// FromPanic coerces a recovered value into an Error. Non-error values keep
// their string form as the message.
func FromPanic(op string, recovered any) *Error {
	if err, ok := recovered.(error); ok {
		return Wrap(CodeInternal, op, err)
	}
	return E(CodeInternal, op, fmt.Sprint(recovered), nil)
}
