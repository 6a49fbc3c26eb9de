package model

import (
	"strings"
	"unicode"

	"github.com/deppfellow/budgetbud/internal/validation"
	"github.com/google/uuid"
)

// checkPassword returns a message when password breaks a rule tags cannot express.
func checkPassword(password string) string {
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		return "must not be entirely numeric"
	}
	return ""
}

type RegisterPayload struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

func (p *RegisterPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if msg := checkPassword(p.Password); msg != "" {
		return validation.CustomValidationErrors{{Field: "password", Message: msg}}
	}
	return nil
}

type LoginPayload struct {
	// Username accepts either the username or the e-mail address.
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (p *LoginPayload) Validate() error {
	return validation.Struct(p)
}

// RefreshPayload carries the refresh token for clients that do not keep the
// cookie. The cookie wins when both are present.
type RefreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"max=2048"`
}

func (p *RefreshPayload) Validate() error {
	return validation.Struct(p)
}

// EmptyPayload is used by endpoints without input.
type EmptyPayload struct{}

func (p *EmptyPayload) Validate() error {
	return nil
}

// IDPayload carries the :id path parameter.
type IDPayload struct {
	ID uuid.UUID `param:"id" json:"-" validate:"required"`
}

func (p *IDPayload) Validate() error {
	return validation.Struct(p)
}

type UpdateUserPayload struct {
	ID              uuid.UUID `param:"id" json:"-" validate:"required"`
	Username        *string   `json:"username" validate:"omitempty,min=1,max=150"`
	Email           *string   `json:"email" validate:"omitempty,email,max=254"`
	FirstName       *string   `json:"first_name" validate:"omitempty,max=150"`
	LastName        *string   `json:"last_name" validate:"omitempty,max=150"`
	Password        *string   `json:"password" validate:"omitempty,min=8,max=128"`
	CurrentPassword *string   `json:"current_password" validate:"required_with=Password"`
}

func (p *UpdateUserPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.Password != nil {
		if msg := checkPassword(*p.Password); msg != "" {
			return validation.CustomValidationErrors{{Field: "password", Message: msg}}
		}
	}
	return nil
}
