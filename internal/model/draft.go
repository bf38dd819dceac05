package model

import "time"

// ComposeDraft is an in-progress, unsent composition bound to one
// account. It is destroyed on send or explicit discard, never partially
// sent.
type ComposeDraft struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`

	To  []string `json:"to"`
	Cc  []string `json:"cc,omitempty"`
	Bcc []string `json:"bcc,omitempty"`

	Subject  string `json:"subject"`
	Body     string `json:"body"`
	BodyHTML string `json:"body_html,omitempty"`

	// Threading headers, set for replies and forwards.
	InReplyTo  string   `json:"in_reply_to,omitempty"`
	References []string `json:"references,omitempty"`

	IsDraft   bool      `json:"is_draft"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
