// Package auth implements the authentication and authorization core of
// the messagely service.
//
// Authentication is a chain of authenticators voting on each request
// (Yes, No, or Abstain). The middleware attaches the winning identity to
// the request context and otherwise lets the request continue anonymously;
// it never terminates a request itself. Authorization is a set of small
// guard predicates over (identity, resource) evaluated by handlers before
// the operation runs. Guards short-circuit before any mutation.
//
// Not-authenticated and authenticated-but-forbidden share the single
// ErrUnauthorized sentinel. Guards wrap it with an internal reason that
// is logged but never surfaced, so responses cannot leak whether the
// target resource exists.
package auth
