package api

import "testing"

func TestAPIError_Error(t *testing.T) {
	e := NewInvalidRequestError("username", "username is required")
	want := "invalid_request: username is required (param: username)"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	e2 := NewNotFoundError("message 42 not found")
	want2 := "not_found: message 42 not found"
	if e2.Error() != want2 {
		t.Errorf("Error() = %q, want %q", e2.Error(), want2)
	}
}

func TestUniformDenialMessages(t *testing.T) {
	// The credential and authorization errors must not vary with the cause;
	// callers construct them without arguments so there is nothing to leak.
	if got := NewInvalidCredentialsError().Message; got != "invalid username or password" {
		t.Errorf("invalid credentials message = %q", got)
	}
	if got := NewUnauthorizedError().Message; got != "unauthorized" {
		t.Errorf("unauthorized message = %q", got)
	}
}

func TestErrorConstructorTypes(t *testing.T) {
	cases := []struct {
		err  *APIError
		want ErrorType
	}{
		{NewInvalidRequestError("x", "m"), ErrorTypeInvalidRequest},
		{NewInvalidCredentialsError(), ErrorTypeInvalidCredentials},
		{NewUnauthorizedError(), ErrorTypeUnauthorized},
		{NewNotFoundError("m"), ErrorTypeNotFound},
		{NewConflictError("m"), ErrorTypeConflict},
		{NewServerError("m"), ErrorTypeServerError},
	}
	for _, c := range cases {
		if c.err.Type != c.want {
			t.Errorf("constructor produced type %q, want %q", c.err.Type, c.want)
		}
	}
}
