package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/messagely/messagely/pkg/api"
	"github.com/messagely/messagely/pkg/auth"
	"github.com/messagely/messagely/pkg/auth/token"
	"github.com/messagely/messagely/pkg/messages"
	"github.com/messagely/messagely/pkg/users"
)

// DefaultMaxBodySize bounds request payloads. Message bodies are capped
// well below this by validation; the transport limit guards the decoder.
const DefaultMaxBodySize int64 = 1 << 20 // 1 MB

// Handler routes the messagely API. Each route runs its authorization
// guards before touching a service, so a denied request never reaches
// storage writes.
type Handler struct {
	users       *users.Service
	messages    *messages.Service
	tokens      *token.Service
	maxBodySize int64
	mux         *http.ServeMux
}

// NewHandler creates the API handler with all routes registered.
func NewHandler(userSvc *users.Service, messageSvc *messages.Service, tokens *token.Service) *Handler {
	h := &Handler{
		users:       userSvc,
		messages:    messageSvc,
		tokens:      tokens,
		maxBodySize: DefaultMaxBodySize,
		mux:         http.NewServeMux(),
	}

	h.mux.HandleFunc("POST /auth/register", h.handleRegister)
	h.mux.HandleFunc("POST /auth/login", h.handleLogin)
	h.mux.HandleFunc("GET /users", h.handleListUsers)
	h.mux.HandleFunc("GET /users/{username}", h.handleGetUser)
	h.mux.HandleFunc("GET /users/{username}/to", h.handleInbox)
	h.mux.HandleFunc("GET /users/{username}/from", h.handleOutbox)
	h.mux.HandleFunc("POST /messages", h.handleCreateMessage)
	h.mux.HandleFunc("GET /messages/{id}", h.handleGetMessage)
	h.mux.HandleFunc("POST /messages/{id}/read", h.handleMarkRead)

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleRegister handles POST /auth/register.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		WriteError(w, err)
		return
	}

	signed, err := h.tokens.Issue(&auth.Identity{Username: user.Username})
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.RegisterResponse{
		Token: signed,
		User:  user.Summary(),
	})
}

// handleLogin handles POST /auth/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	id, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	signed, err := h.tokens.Issue(id)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.TokenResponse{Token: signed})
}

// handleListUsers handles GET /users.
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAuthenticated(id); err != nil {
		WriteError(w, err)
		return
	}

	all, err := h.users.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	summaries := make([]api.UserSummary, 0, len(all))
	for _, u := range all {
		summaries = append(summaries, u.Summary())
	}
	writeJSON(w, http.StatusOK, api.UserListResponse{Users: summaries})
}

// handleGetUser handles GET /users/{username}. Only the account owner
// may view the detail; the guard runs before the lookup so a denial
// reveals nothing about whether the username exists.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireOwner(id, username); err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UserResponse{User: user})
}

// handleInbox handles GET /users/{username}/to: messages received by
// the user, each with the sender's profile.
func (h *Handler) handleInbox(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireOwner(id, username); err != nil {
		WriteError(w, err)
		return
	}

	msgs, err := h.messages.SentTo(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	items := make([]api.InboxMessage, 0, len(msgs))
	for _, m := range msgs {
		from, err := h.users.Get(r.Context(), m.FromUsername)
		if err != nil {
			WriteError(w, fmt.Errorf("resolving sender %q: %w", m.FromUsername, err))
			return
		}
		items = append(items, api.InboxMessage{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: from.Summary(),
		})
	}
	writeJSON(w, http.StatusOK, api.InboxResponse{Messages: items})
}

// handleOutbox handles GET /users/{username}/from: messages sent by the
// user, each with the recipient's profile.
func (h *Handler) handleOutbox(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireOwner(id, username); err != nil {
		WriteError(w, err)
		return
	}

	msgs, err := h.messages.SentBy(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	items := make([]api.OutboxMessage, 0, len(msgs))
	for _, m := range msgs {
		to, err := h.users.Get(r.Context(), m.ToUsername)
		if err != nil {
			WriteError(w, fmt.Errorf("resolving recipient %q: %w", m.ToUsername, err))
			return
		}
		items = append(items, api.OutboxMessage{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: to.Summary(),
		})
	}
	writeJSON(w, http.StatusOK, api.OutboxResponse{Messages: items})
}

// handleCreateMessage handles POST /messages. The sender is always the
// authenticated principal; the payload cannot speak for anyone else.
func (h *Handler) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAuthenticated(id); err != nil {
		WriteError(w, err)
		return
	}

	var req api.CreateMessageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.messages.Create(r.Context(), id.Username, &req)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: msg})
}

// handleGetMessage handles GET /messages/{id}. Visible only to the two
// parties of the message.
func (h *Handler) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAuthenticated(id); err != nil {
		WriteError(w, err)
		return
	}

	msgID, ok := parseMessageID(w, r)
	if !ok {
		return
	}

	msg, err := h.messages.Get(r.Context(), msgID)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := auth.RequireMessageParty(id, msg.FromUsername, msg.ToUsername); err != nil {
		WriteError(w, err)
		return
	}

	from, err := h.users.Get(r.Context(), msg.FromUsername)
	if err != nil {
		WriteError(w, fmt.Errorf("resolving sender %q: %w", msg.FromUsername, err))
		return
	}
	to, err := h.users.Get(r.Context(), msg.ToUsername)
	if err != nil {
		WriteError(w, fmt.Errorf("resolving recipient %q: %w", msg.ToUsername, err))
		return
	}

	writeJSON(w, http.StatusOK, api.MessageDetailResponse{
		Message: &api.MessageDetail{
			ID:       msg.ID,
			Body:     msg.Body,
			SentAt:   msg.SentAt,
			ReadAt:   msg.ReadAt,
			FromUser: from.Summary(),
			ToUser:   to.Summary(),
		},
	})
}

// handleMarkRead handles POST /messages/{id}/read. Only the recipient
// may mark a message read; the sender sees the receipt through the
// message detail.
func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAuthenticated(id); err != nil {
		WriteError(w, err)
		return
	}

	msgID, ok := parseMessageID(w, r)
	if !ok {
		return
	}

	msg, err := h.messages.Get(r.Context(), msgID)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := auth.RequireOwner(id, msg.ToUsername); err != nil {
		WriteError(w, err)
		return
	}

	updated, err := h.messages.MarkRead(r.Context(), msgID)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.ReadReceiptResponse{
		Message: api.ReadReceipt{ID: updated.ID, ReadAt: *updated.ReadAt},
	})
}

// decodeJSON decodes the request body into dst, writing the error
// response itself on failure. Returns false when the caller should stop.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", h.maxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// parseMessageID extracts and validates the {id} path segment, writing
// the error response itself on failure.
func parseMessageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		WriteAPIError(w, api.NewInvalidRequestError("id", "malformed message ID"))
		return 0, false
	}
	return id, true
}

// writeJSON writes a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
