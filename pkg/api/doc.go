// Package api defines the wire-level types of the messagely service:
// user and message records, request/response payloads, the structured
// error taxonomy, and request validation.
//
// Types in this package carry JSON tags matching the public API. The
// password hash on User is deliberately excluded from serialization.
package api
