package model

import "time"

// SyncStatus is the per-account record of the most recent sync run.
// One record per account, overwritten in place.
type SyncStatus struct {
	AccountID string `json:"account_id"`
	Folder    Folder `json:"folder"`

	IsSyncing bool `json:"is_syncing"`
	Progress  int  `json:"progress"` // 0-100

	LastSyncTime time.Time `json:"last_sync_time,omitempty"`
	Error        string    `json:"error,omitempty"`

	NewMessages     int `json:"new_messages"`
	UpdatedMessages int `json:"updated_messages"`
	DeletedMessages int `json:"deleted_messages"`
}
