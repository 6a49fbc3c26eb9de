package errs

import (
	"net/http"
	"strings"
	"unicode"
)

// Domain error codes shared by services and handlers.
const (
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvitationExpired   = "INVITATION_EXPIRED"
	CodeInvitationAccepted  = "INVITATION_ALREADY_ACCEPTED"
	CodeInvitationMismatch  = "INVITATION_EMAIL_MISMATCH"
	CodeAlreadyFamilyMember = "FAMILY_MEMBER_ALREADY_EXISTS"
	CodeOwnerCannotLeave    = "FAMILY_OWNER_CANNOT_LEAVE"
	CodeUnknownReport       = "REPORT_NOT_FOUND"
)

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusUnauthorized)),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusForbidden)),
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code defaults to "BAD_REQUEST" when nil; errors carries field-level details.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewTooManyRequestsError creates a 429 HTTPError used by the rate limiter.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)),
		Message:  message,
		Status:   http.StatusTooManyRequests,
		Override: true,
	}
}

// NewInternalServerError creates a 500 HTTPError with the generic status text.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError converts a generic validation error into a 400 Bad Request HTTPError.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}

// NotFound is a shorthand for an overridable 404 on a named entity.
// CamelCase names are split: "BudgetGoal" gives BUDGET_GOAL_NOT_FOUND.
func NotFound(entity string) *HTTPError {
	name := splitCamel(entity)
	code := MakeUpperCaseWithUnderscores(name) + "_NOT_FOUND"
	return NewNotFoundError(name+" not found", true, &code)
}

func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Unauthorized is a 401 with a domain code.
func Unauthorized(code, message string) *HTTPError {
	err := NewUnauthorizedError(message, true)
	err.Code = code
	return err
}

// BadRequest is a shorthand for an overridable 400 with a domain code.
func BadRequest(code, message string) *HTTPError {
	return NewBadRequestError(message, true, &code, nil, nil)
}

// FieldInvalid is a shorthand for a 400 on a single field.
func FieldInvalid(field, message string) *HTTPError {
	return NewBadRequestError("Validation failed", true, nil, []FieldError{{Field: field, Error: message}}, nil)
}
