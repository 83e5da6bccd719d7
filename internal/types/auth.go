package types

import (
	"github.com/go-playground/validator/v10"
)

// LoginRequest represents the analyst login request.
type LoginRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
}

// LoginResponse carries the bearer token issued on login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
