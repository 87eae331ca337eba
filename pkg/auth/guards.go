package auth

import (
	"fmt"

	"github.com/messagely/messagely/pkg/observability"
)

// RequireAuthenticated passes when any identity is attached.
func RequireAuthenticated(id *Identity) error {
	if id == nil {
		return deny("authenticated", "no principal")
	}
	return nil
}

// RequireOwner passes when the identity matches the named resource owner.
// The denial is identical whether the owner exists or not, so probing a
// username through a guarded route reveals nothing.
func RequireOwner(id *Identity, resourceUsername string) error {
	if id == nil {
		return deny("owner", "no principal")
	}
	if id.Username != resourceUsername {
		return deny("owner", "principal is not the resource owner")
	}
	return nil
}

// RequireMessageParty passes when the identity is the sender or the
// recipient of a message. Callers fetch the message first; an unknown
// message ID is storage.ErrNotFound and never reaches this guard.
func RequireMessageParty(id *Identity, fromUsername, toUsername string) error {
	if id == nil {
		return deny("message_party", "no principal")
	}
	if id.Username != fromUsername && id.Username != toUsername {
		return deny("message_party", "principal is neither sender nor recipient")
	}
	return nil
}

// deny builds the uniform denial error. The reason is carried for
// logging only; the error unwraps to ErrUnauthorized and the transport
// layer maps every denial to the same response.
func deny(guard, reason string) error {
	observability.GuardDenialsTotal.WithLabelValues(guard).Inc()
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}
