package model

import "time"

// Contact is a single mail participant.
type Contact struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Display returns the contact's name, falling back to the address.
func (c Contact) Display() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Address
}

// Attachment describes a file attached to a message. Content is not
// held in memory; the data source serves it on demand.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
}

// Message is a single email owned by exactly one account and residing
// in exactly one lifecycle folder at a time. Starred/important/all are
// views derived from flags, not folders a message moves into.
type Message struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	AccountID string `json:"account_id"`
	Folder    Folder `json:"folder"`

	From Contact   `json:"from"`
	To   []Contact `json:"to"`
	Cc   []Contact `json:"cc,omitempty"`
	Bcc  []Contact `json:"bcc,omitempty"`

	Subject  string `json:"subject"`
	Body     string `json:"body"`
	BodyHTML string `json:"body_html,omitempty"`
	Preview  string `json:"preview,omitempty"`

	Date time.Time `json:"date"`
	Size int64     `json:"size,omitempty"`

	IsRead      bool `json:"is_read"`
	IsStarred   bool `json:"is_starred"`
	IsFlagged   bool `json:"is_flagged"`
	IsImportant bool `json:"is_important"`
	IsDraft     bool `json:"is_draft"`
	IsDeleted   bool `json:"is_deleted"`

	HasAttachments bool         `json:"has_attachments"`
	Attachments    []Attachment `json:"attachments,omitempty"`

	LabelIDs []string `json:"label_ids,omitempty"`

	ThreadID   string   `json:"thread_id,omitempty"`
	InReplyTo  string   `json:"in_reply_to,omitempty"`
	References []string `json:"references,omitempty"`
}
