package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	tests := map[string]string{
		"Bad Request":           "BAD_REQUEST",
		"Internal Server Error": "INTERNAL_SERVER_ERROR",
		"savings goal":          "SAVINGS_GOAL",
	}
	for in, want := range tests {
		if got := MakeUpperCaseWithUnderscores(in); got != want {
			t.Errorf("MakeUpperCaseWithUnderscores(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHTTPErrorIsMatchesWrapped(t *testing.T) {
	err := fmt.Errorf("load budget: %w", NotFound("budget"))

	if !errors.Is(err, &HTTPError{}) {
		t.Fatal("expected wrapped HTTPError to match")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatal("expected errors.As to find HTTPError")
	}
	if httpErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", httpErr.Status)
	}
	if httpErr.Code != "BUDGET_NOT_FOUND" {
		t.Errorf("code = %q, want BUDGET_NOT_FOUND", httpErr.Code)
	}
}

func TestNewBadRequestErrorDefaultsCode(t *testing.T) {
	err := NewBadRequestError("bad", false, nil, nil, nil)
	if err.Code != "BAD_REQUEST" {
		t.Errorf("code = %q, want BAD_REQUEST", err.Code)
	}

	code := CodeInvitationExpired
	err = NewBadRequestError("expired", true, &code, nil, nil)
	if err.Code != CodeInvitationExpired {
		t.Errorf("code = %q, want %q", err.Code, CodeInvitationExpired)
	}
}

func TestWithMessageCopies(t *testing.T) {
	base := NewForbiddenError("forbidden", true)
	copied := base.WithMessage("only the family owner can do this")

	if base.Message != "forbidden" {
		t.Error("WithMessage must not mutate the original")
	}
	if copied.Status != http.StatusForbidden || copied.Message != "only the family owner can do this" {
		t.Errorf("unexpected copy: %+v", copied)
	}
}

func TestFieldInvalid(t *testing.T) {
	err := FieldInvalid("amount", "must be greater than 0")
	if len(err.Errors) != 1 || err.Errors[0].Field != "amount" {
		t.Fatalf("unexpected field errors: %+v", err.Errors)
	}
}

func TestNotFoundSplitsCamelCase(t *testing.T) {
	err := NotFound("SavingsGoal")
	if err.Code != "SAVINGS_GOAL_NOT_FOUND" {
		t.Errorf("code = %q", err.Code)
	}
	if err.Message != "Savings Goal not found" {
		t.Errorf("message = %q", err.Message)
	}
}
