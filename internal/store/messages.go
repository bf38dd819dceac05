package store

import (
	"context"

	"github.com/postium/postium/internal/model"
)

// LoadMessages replaces the cached message set for an account+folder
// with fresh data from the source and recomputes the visible list with
// the current search/filter/sort. Empty accountID or folder fall back
// to the current ones. With no account selected the call is a warn-level
// no-op.
func (s *Store) LoadMessages(ctx context.Context, accountID string, folder model.Folder) error {
	s.mu.Lock()
	if accountID == "" {
		accountID = s.currentAccountID
	}
	if folder == "" {
		folder = s.currentFolder
	}
	if accountID == "" {
		s.mu.Unlock()
		s.log.Warn("load with no account selected")
		return nil
	}
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	s.log.Info("loading messages", "account_id", accountID, "folder", folder)

	msgs, err := s.src.Messages(ctx, accountID, folder)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		s.log.Error("loading messages failed", "account_id", accountID, "folder", folder, "error", err)
		return err
	}

	s.upsertLocked(msgs)
	s.recountFoldersLocked(accountID)
	s.refreshVisibleLocked()

	s.log.Info("loaded messages", "account_id", accountID, "folder", folder, "count", len(msgs))
	return nil
}

// mutateMessagesLocked applies fn to every message whose id is in ids.
// Unknown ids are skipped so a bulk operation never aborts mid-batch.
// It returns the set of touched account ids.
func (s *Store) mutateMessagesLocked(ids []string, fn func(*model.Message)) map[string]bool {
	touched := make(map[string]bool)
	for _, id := range ids {
		m, ok := s.msgs[id]
		if !ok {
			continue
		}
		fn(m)
		touched[m.AccountID] = true
	}
	return touched
}

// finishMutationLocked recomputes folder counts for the touched
// accounts and refreshes the visible projection.
func (s *Store) finishMutationLocked(touched map[string]bool) {
	for accountID := range touched {
		s.recountFoldersLocked(accountID)
	}
	s.refreshVisibleLocked()
}

// ToggleRead flips the read flag on every listed message. Applying the
// same id set twice restores the original state.
func (s *Store) ToggleRead(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("toggling read", "count", len(ids))
	touched := s.mutateMessagesLocked(ids, func(m *model.Message) { m.IsRead = !m.IsRead })
	s.finishMutationLocked(touched)
}

// MarkRead sets the read flag on every listed message. Already-read
// messages are unaffected, so repeating the call is a no-op.
func (s *Store) MarkRead(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("marking read", "count", len(ids))
	touched := s.mutateMessagesLocked(ids, func(m *model.Message) { m.IsRead = true })
	s.finishMutationLocked(touched)
}

// MarkUnread clears the read flag on every listed message.
func (s *Store) MarkUnread(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("marking unread", "count", len(ids))
	touched := s.mutateMessagesLocked(ids, func(m *model.Message) { m.IsRead = false })
	s.finishMutationLocked(touched)
}

// ToggleStar flips the starred flag on every listed message.
func (s *Store) ToggleStar(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("toggling star", "count", len(ids))
	touched := s.mutateMessagesLocked(ids, func(m *model.Message) { m.IsStarred = !m.IsStarred })
	s.finishMutationLocked(touched)
}

// ToggleFlag flips the flagged marker on every listed message.
func (s *Store) ToggleFlag(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("toggling flag", "count", len(ids))
	touched := s.mutateMessagesLocked(ids, func(m *model.Message) { m.IsFlagged = !m.IsFlagged })
	s.finishMutationLocked(touched)
}

// ToggleImportant flips the important flag on every listed message.
func (s *Store) ToggleImportant(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("toggling important", "count", len(ids))
	touched := s.mutateMessagesLocked(ids, func(m *model.Message) { m.IsImportant = !m.IsImportant })
	s.finishMutationLocked(touched)
}

// MoveToFolder moves the listed messages into a lifecycle folder.
// Virtual views are not movable targets; such a call is a warn-level
// no-op. Moving into trash is the soft-delete path.
func (s *Store) MoveToFolder(ids []string, folder model.Folder) {
	if folder.IsVirtual() {
		s.log.Warn("move into virtual view rejected", "folder", folder)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("moving messages", "count", len(ids), "folder", folder)
	touched := s.mutateMessagesLocked(ids, func(m *model.Message) {
		m.Folder = folder
		m.IsDeleted = folder == model.FolderTrash
	})
	s.finishMutationLocked(touched)
}

// Delete soft-deletes the listed messages by moving them to trash.
func (s *Store) Delete(ids []string) {
	s.MoveToFolder(ids, model.FolderTrash)
}

// Archive moves the listed messages to the archive folder.
func (s *Store) Archive(ids []string) {
	s.MoveToFolder(ids, model.FolderArchive)
}

// MarkSpam moves the listed messages to the spam folder.
func (s *Store) MarkSpam(ids []string) {
	s.MoveToFolder(ids, model.FolderSpam)
}

// PermanentlyDelete removes the listed messages from the store
// irrecoverably. Subsequent lookups fail.
func (s *Store) PermanentlyDelete(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("permanently deleting messages", "count", len(ids))

	touched := make(map[string]bool)
	for _, id := range ids {
		if m, ok := s.msgs[id]; ok {
			touched[m.AccountID] = true
			s.removeLocked(id)
		}
	}
	s.finishMutationLocked(touched)
}
