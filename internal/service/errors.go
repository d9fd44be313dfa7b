package service

import (
	"errors"
	"fmt"
	"skillchain/internal/rbac"

	"gorm.io/gorm"
)

// Kind classifies a service failure; the HTTP layer maps each kind to a status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is returned by every service operation that fails for a reason the caller can act on.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind and code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Error codes shared with API responses.
const (
	CodeInvalidRequest     = "ERR_INVALID_REQUEST"
	CodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	CodeUserDisabled       = "ERR_USER_DISABLED"
	CodeForbidden          = "ERR_FORBIDDEN"
	CodeNotFound           = "ERR_NOT_FOUND"
	CodeEmailExists        = "ERR_EMAIL_EXISTS"
	CodeInvalidRole        = "ERR_INVALID_ROLE"
	CodeMissingFactory     = "ERR_MISSING_FACTORY"
	CodeDuplicateSKU       = "ERR_DUPLICATE_SKU"
	CodeAlreadyReviewed    = "ERR_ALREADY_REVIEWED"
	CodePendingRequest     = "ERR_PENDING_REQUEST"
	CodeUnsupportedType    = "ERR_UNSUPPORTED_TYPE"
	CodeFileTooLarge       = "ERR_FILE_TOO_LARGE"
	CodeDuplicateSlug      = "ERR_DUPLICATE_SLUG"
	CodeAlreadyEnrolled    = "ERR_ALREADY_ENROLLED"
	CodeCannotDeleteSelf   = "ERR_CANNOT_DELETE_SELF"
	CodeUpstream           = "ERR_INTERNAL_ERROR"
)

var (
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Code: CodeInvalidCredentials, Message: "invalid email or password"}
	ErrUserDisabled       = &Error{Kind: KindForbidden, Code: CodeUserDisabled, Message: "user is disabled"}
	ErrForbidden          = &Error{Kind: KindForbidden, Code: CodeForbidden, Message: "insufficient permissions"}
	ErrNotFound           = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "not found"}
	ErrDuplicateEmail     = &Error{Kind: KindConflict, Code: CodeEmailExists, Message: "email already registered"}
	ErrInvalidRole        = &Error{Kind: KindValidation, Code: CodeInvalidRole, Message: "invalid role"}
	ErrMissingFactory     = &Error{Kind: KindValidation, Code: CodeMissingFactory, Message: "factory id is required for this role"}
	ErrDuplicateSKU       = &Error{Kind: KindConflict, Code: CodeDuplicateSKU, Message: "product with this SKU already exists"}
	ErrAlreadyReviewed    = &Error{Kind: KindConflict, Code: CodeAlreadyReviewed, Message: "request already reviewed"}
	ErrPendingRequest     = &Error{Kind: KindConflict, Code: CodePendingRequest, Message: "a pending request already exists for this email"}
	ErrUnsupportedType    = &Error{Kind: KindValidation, Code: CodeUnsupportedType, Message: "file type not allowed"}
	ErrFileTooLarge       = &Error{Kind: KindValidation, Code: CodeFileTooLarge, Message: "file too large"}
	ErrDuplicateSlug      = &Error{Kind: KindConflict, Code: CodeDuplicateSlug, Message: "slug already exists"}
	ErrAlreadyEnrolled    = &Error{Kind: KindConflict, Code: CodeAlreadyEnrolled, Message: "already enrolled in this course"}
	ErrCannotDeleteSelf   = &Error{Kind: KindValidation, Code: CodeCannotDeleteSelf, Message: "cannot delete your own account"}
)

// withMessage copies a sentinel with a more specific message.
func (e *Error) withMessage(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: what + " not found"}
}

func upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Code: CodeUpstream, Message: message, Err: err}
}

// KindOf reports the kind of err, or zero when err is not a service error.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return 0
}

// lookupError converts a repository read failure into NotFound or Upstream.
func lookupError(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return upstream("failed to load "+what, err)
}

// scopeError hides records outside the caller's factory behind the same NotFound a
// missing record produces.
func scopeError(what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rbac.ErrOutOfScope):
		return notFound(what)
	case errors.Is(err, rbac.ErrForbidden):
		return ErrForbidden
	default:
		return err
	}
}

func authorize(subject rbac.Subject, capability rbac.Capability) error {
	if err := rbac.Authorize(subject, capability); err != nil {
		return ErrForbidden
	}
	return nil
}
