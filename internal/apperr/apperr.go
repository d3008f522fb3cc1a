package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary. Codes are i18n lookup keys,
// never user-facing copy.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindConflict
	KindNotFound
	KindUpstream
	KindInternal
)

type Error struct {
	Kind        Kind
	Code        string
	Message     string
	FieldErrors map[string]string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to its HTTP status. Validation errors default to 400;
// the auth endpoints override to 422 via the handler.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Validation(code string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: code, FieldErrors: fields}
}

func Unauthorized(code string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code}
}

func Conflict(code string) *Error {
	return &Error{Kind: KindConflict, Code: code}
}

func NotFound(code string) *Error {
	return &Error{Kind: KindNotFound, Code: code}
}

func Upstream(code string, err error) *Error {
	return &Error{Kind: KindUpstream, Code: code, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Err: err}
}

// As extracts an *Error, or wraps err as internal when it is anything else.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Error codes resolved by clients against their locale bundles.
const (
	CodeValidation        = "VALIDATION_FAILED"
	CodeInvalidCreds      = "INVALID_CREDENTIALS"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodePseudoTaken       = "PSEUDO_TAKEN"
	CodeEmailTaken        = "EMAIL_TAKEN"
	CodeReviewExists      = "REVIEW_EXISTS"
	CodeSelfFollow        = "SELF_FOLLOW"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	CodeUpstreamFailure   = "UPSTREAM_FAILURE"
	CodeInternal          = "INTERNAL_ERROR"
)
