// Package transport serves the messagely API over HTTP. It routes
// requests, decodes and validates payloads, runs the authorization
// guards, and maps domain errors to JSON error responses.
//
// The layering rule: handlers in this package decide WHO may do
// something (via pkg/auth guards) and translate between HTTP and the
// services in pkg/users and pkg/messages, which decide WHAT happens.
package transport
