package api

import (
	"fmt"
	"strings"
)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxUsernameLength int
	MaxBodyLength     int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxUsernameLength: 64,
		MaxBodyLength:     10_000,
	}
}

// ValidateRegister checks a RegisterRequest for validity. It returns an
// *APIError describing the first validation failure, or nil if the request
// is valid.
func ValidateRegister(req *RegisterRequest, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(req.Username) == "" {
		return NewInvalidRequestError("username", "username is required")
	}
	if cfg.MaxUsernameLength > 0 && len(req.Username) > cfg.MaxUsernameLength {
		return NewInvalidRequestError("username",
			fmt.Sprintf("username exceeds maximum of %d characters", cfg.MaxUsernameLength))
	}
	if strings.ContainsAny(req.Username, " \t\n/") {
		return NewInvalidRequestError("username", "username must not contain whitespace or '/'")
	}
	if req.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return NewInvalidRequestError("first_name", "first_name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		return NewInvalidRequestError("last_name", "last_name is required")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return NewInvalidRequestError("phone", "phone is required")
	}
	return nil
}

// ValidateCreateMessage checks a CreateMessageRequest for validity.
func ValidateCreateMessage(req *CreateMessageRequest, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(req.ToUsername) == "" {
		return NewInvalidRequestError("to_username", "to_username is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		return NewInvalidRequestError("body", "body is required")
	}
	if cfg.MaxBodyLength > 0 && len(req.Body) > cfg.MaxBodyLength {
		return NewInvalidRequestError("body",
			fmt.Sprintf("body exceeds maximum of %d characters", cfg.MaxBodyLength))
	}
	return nil
}
