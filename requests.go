package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// MinPasswordLength is the minimum accepted password length for signup and
// password reset.
const MinPasswordLength = 6

// SignupRequest carries the fields needed to register a new account.
type SignupRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	SourceIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// Validate implements validation.Validatable.
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 0)),
	)
}

// LoginRequest carries credentials plus the caller's network identity used
// by the throttle and the activity log.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	SourceIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// Validate implements validation.Validatable.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.SourceIP, validation.Required),
	)
}

// LogoutRequest identifies the refresh session to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	SourceIP     string `json:"-"`
	UserAgent    string `json:"-"`
}

// Validate implements validation.Validatable.
func (r LogoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate implements validation.Validatable.
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// ForgotPasswordRequest starts the reset flow for an email address.
type ForgotPasswordRequest struct {
	Email     string `json:"email"`
	SourceIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// Validate implements validation.Validatable.
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetPasswordRequest consumes a reset token and sets a new password.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
	SourceIP    string `json:"-"`
	UserAgent   string `json:"-"`
}

// Validate implements validation.Validatable.
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func invalidRequest(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, "invalid request").
		WithTextCode(TextCodeValidation)
}
