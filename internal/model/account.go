package model

import "time"

// Provider identifies the mail service behind an account.
type Provider string

// Known providers. Custom covers anything configured by hand.
const (
	ProviderGmail   Provider = "gmail"
	ProviderOutlook Provider = "outlook"
	ProviderYahoo   Provider = "yahoo"
	ProviderICloud  Provider = "icloud"
	ProviderCustom  Provider = "custom"
)

// Account is one configured mailbox identity with its own message,
// folder, and label space.
type Account struct {
	ID        string   `json:"id"`
	Address   string   `json:"address"`
	Name      string   `json:"name"`
	Provider  Provider `json:"provider"`
	IsDefault bool     `json:"is_default"`
	IsActive  bool     `json:"is_active"`
	Color     string   `json:"color,omitempty"`
	Signature string   `json:"signature,omitempty"`

	SyncIntervalSec int       `json:"sync_interval_sec,omitempty"`
	LastSyncTime    time.Time `json:"last_sync_time,omitempty"`

	// UnreadCount and TotalCount are derived from the message set and
	// refreshed by the store; they are never authoritative.
	UnreadCount int `json:"unread_count"`
	TotalCount  int `json:"total_count"`
}
