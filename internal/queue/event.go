// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into mail.
package queue

// ConfirmationCodeEvent is published every time a user requests a
// confirmation code.  It carries the plain code because the mail is the
// only place it is ever revealed; storage keeps a hash.
type ConfirmationCodeEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Code        string `json:"confirmation_code"`
	RequestedAt string `json:"requested_at"`
}
