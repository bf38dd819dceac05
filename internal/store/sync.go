package store

import (
	"context"
	"time"

	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/source"
)

// SyncDelta summarizes what one sync pass changed.
type SyncDelta struct {
	New     int
	Updated int
	Deleted int
}

// BeginSync marks an account as syncing with progress reset to zero.
func (s *Store) BeginSync(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncStatus[accountID] = model.SyncStatus{
		AccountID: accountID,
		IsSyncing: true,
	}
}

// SetSyncProgress records sync progress for an account, clamped to
// 0-100. Progress on an account that is not syncing is dropped.
func (s *Store) SetSyncProgress(accountID string, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.syncStatus[accountID]
	if !ok || !st.IsSyncing {
		return
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	st.Progress = progress
	s.syncStatus[accountID] = st
}

// FailSync ends an account's sync with an error. The cached messages
// keep their pre-sync state.
func (s *Store) FailSync(accountID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.syncStatus[accountID]
	st.AccountID = accountID
	st.IsSyncing = false
	st.Error = err.Error()
	s.syncStatus[accountID] = st
	s.lastErr = err
	s.log.Error("sync failed", "account_id", accountID, "error", err)
}

// CancelSync ends an account's sync without completing it. No reload
// happens and no error is recorded.
func (s *Store) CancelSync(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.syncStatus[accountID]
	st.AccountID = accountID
	st.IsSyncing = false
	st.Error = ""
	s.syncStatus[accountID] = st
	s.log.Info("sync cancelled", "account_id", accountID)
}

// CompleteSync ends an account's sync successfully, recording the delta
// and stamping the account and store sync times.
func (s *Store) CompleteSync(accountID string, delta SyncDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.syncStatus[accountID] = model.SyncStatus{
		AccountID:       accountID,
		Progress:        100,
		LastSyncTime:    now,
		NewMessages:     delta.New,
		UpdatedMessages: delta.Updated,
		DeletedMessages: delta.Deleted,
	}
	s.lastSyncTime = now

	for i := range s.accounts {
		if s.accounts[i].ID == accountID {
			s.accounts[i].LastSyncTime = now
			break
		}
	}

	s.log.Info("sync complete", "account_id", accountID,
		"new", delta.New, "updated", delta.Updated, "deleted", delta.Deleted)
}

// SyncRefresh reconciles the cached message set for one account against
// the data source and returns what changed. New source messages are
// added, messages the source no longer has are removed, and messages
// present on both sides keep their local copy except that a source-side
// folder move is adopted and counted as an update.
func (s *Store) SyncRefresh(ctx context.Context, accountID string) (SyncDelta, error) {
	if r, ok := s.src.(source.Refresher); ok {
		if err := r.Refresh(ctx, accountID); err != nil {
			return SyncDelta{}, err
		}
	}

	msgs, err := s.src.Messages(ctx, accountID, model.FolderAll)
	if err != nil {
		return SyncDelta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var delta SyncDelta
	seen := make(map[string]bool, len(msgs))
	for i := range msgs {
		m := msgs[i]
		seen[m.ID] = true
		local, ok := s.msgs[m.ID]
		if !ok {
			s.accountMsgs[accountID] = append(s.accountMsgs[accountID], m.ID)
			s.msgs[m.ID] = &m
			delta.New++
			continue
		}
		if local.Folder != m.Folder {
			local.Folder = m.Folder
			local.IsDeleted = m.Folder == model.FolderTrash
			delta.Updated++
		}
	}

	for _, id := range s.accountMsgs[accountID] {
		if !seen[id] {
			delta.Deleted++
		}
	}
	if delta.Deleted > 0 {
		kept := s.accountMsgs[accountID][:0]
		for _, id := range s.accountMsgs[accountID] {
			if seen[id] {
				kept = append(kept, id)
				continue
			}
			delete(s.msgs, id)
			s.sel.Remove(id)
		}
		s.accountMsgs[accountID] = kept
	}

	s.recountFoldersLocked(accountID)
	s.refreshVisibleLocked()
	return delta, nil
}

// SyncStatus returns the sync state of one account.
func (s *Store) SyncStatus(accountID string) (model.SyncStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.syncStatus[accountID]
	return st, ok
}

// SyncStatuses returns the sync state of every account that has one.
func (s *Store) SyncStatuses() map[string]model.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.SyncStatus, len(s.syncStatus))
	for k, v := range s.syncStatus {
		out[k] = v
	}
	return out
}

// IsAnySyncing reports whether any account sync is in flight. The UI
// uses it for the global sync indicator.
func (s *Store) IsAnySyncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.syncStatus {
		if st.IsSyncing {
			return true
		}
	}
	return false
}

// LastSyncTime returns the completion time of the most recent
// successful sync across all accounts.
func (s *Store) LastSyncTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSyncTime
}
