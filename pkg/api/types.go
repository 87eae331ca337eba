package api

import "time"

// User is a registered account. PasswordHash is never serialized; it is
// populated only by the storage layer and consumed by the credential
// verifier.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	JoinAt       time.Time `json:"join_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Summary returns the public profile fields of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// UserSummary is the public profile shape embedded in listings and
// message payloads.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Message is a stored message row. SentAt is set at creation and never
// changes. ReadAt is nil until the message is marked read, and immutable
// once set.
type Message struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// RegisterResponse carries the token and profile of a new account.
type RegisterResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// UserResponse wraps a single user detail.
type UserResponse struct {
	User *User `json:"user"`
}

// UserListResponse wraps the user directory listing.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
}

// CreateMessageRequest is the payload for POST /messages. The sender is
// taken from the authenticated principal, never from the body.
type CreateMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// MessageResponse wraps a newly created message.
type MessageResponse struct {
	Message *Message `json:"message"`
}

// MessageDetail is a message enriched with both party profiles, returned
// by GET /messages/{id}.
type MessageDetail struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
	ToUser   UserSummary `json:"to_user"`
}

// MessageDetailResponse wraps a message detail.
type MessageDetailResponse struct {
	Message *MessageDetail `json:"message"`
}

// InboxMessage is a received message with the sender's profile, returned
// by GET /users/{username}/to.
type InboxMessage struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
}

// OutboxMessage is a sent message with the recipient's profile, returned
// by GET /users/{username}/from.
type OutboxMessage struct {
	ID     int64       `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
	ToUser UserSummary `json:"to_user"`
}

// InboxResponse wraps a received-message listing.
type InboxResponse struct {
	Messages []InboxMessage `json:"messages"`
}

// OutboxResponse wraps a sent-message listing.
type OutboxResponse struct {
	Messages []OutboxMessage `json:"messages"`
}

// ReadReceipt is the payload returned after marking a message read.
type ReadReceipt struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

// ReadReceiptResponse wraps a read receipt.
type ReadReceiptResponse struct {
	Message ReadReceipt `json:"message"`
}
