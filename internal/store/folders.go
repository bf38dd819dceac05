package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/postium/postium/internal/model"
)

// SelectFolder changes the displayed folder and reloads it for every
// active account. The selection is scoped to a folder, so switching
// clears it.
func (s *Store) SelectFolder(ctx context.Context, folder model.Folder) error {
	s.mu.Lock()
	if folder == s.currentFolder {
		s.mu.Unlock()
		return nil
	}
	s.currentFolder = folder
	s.sel.Clear()
	s.refreshVisibleLocked()

	var active []string
	for _, a := range s.accounts {
		if s.activeAccounts[a.ID] {
			active = append(active, a.ID)
		}
	}
	s.mu.Unlock()

	s.log.Info("selecting folder", "folder", folder, "accounts", len(active))

	var firstErr error
	for _, id := range active {
		if err := s.LoadMessages(ctx, id, folder); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Folders returns a copy of an account's folder tree.
func (s *Store) Folders(accountID string) []model.FolderInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FolderInfo, len(s.folders[accountID]))
	copy(out, s.folders[accountID])
	return out
}

// RefreshFolders reloads the folder metadata for an account from the
// data source and recomputes counts from the cached message set.
func (s *Store) RefreshFolders(ctx context.Context, accountID string) error {
	folders, err := s.src.Folders(ctx, accountID)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[accountID] = folders
	s.recountFoldersLocked(accountID)
	return nil
}

// CreateFolder adds a custom folder under an account, optionally nested
// below a parent, and returns it.
func (s *Store) CreateFolder(accountID, name, parentID string) model.FolderInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := model.FolderInfo{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Name:      name,
		Type:      model.Folder(name),
		ParentID:  parentID,
	}
	s.folders[accountID] = append(s.folders[accountID], f)
	s.log.Info("created folder", "account_id", accountID, "name", name)
	return f
}

// RenameFolder renames a custom folder. System folders keep their names.
func (s *Store) RenameFolder(accountID, folderID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.folders[accountID] {
		f := &s.folders[accountID][i]
		if f.ID != folderID {
			continue
		}
		if f.IsSystem {
			s.log.Warn("rename of system folder rejected", "folder_id", folderID)
			return
		}
		f.Name = name
		return
	}
	s.log.Warn("rename of unknown folder", "folder_id", folderID)
}

// DeleteFolder removes a custom folder. Messages in it move to archive
// rather than disappearing. System folders cannot be deleted.
func (s *Store) DeleteFolder(accountID, folderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.folders[accountID]
	idx := -1
	for i := range list {
		if list[i].ID == folderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Warn("delete of unknown folder", "folder_id", folderID)
		return
	}
	if list[idx].IsSystem {
		s.log.Warn("delete of system folder rejected", "folder_id", folderID)
		return
	}

	folderType := list[idx].Type
	s.folders[accountID] = append(list[:idx], list[idx+1:]...)

	for _, id := range s.accountMsgs[accountID] {
		if m := s.msgs[id]; m != nil && m.Folder == folderType {
			m.Folder = model.FolderArchive
		}
	}
	s.recountFoldersLocked(accountID)
	s.refreshVisibleLocked()
}

// recountFoldersLocked recomputes folder and account counts for one
// account from the cached message set. Trash counts its own contents;
// every other folder counts only non-deleted messages. Virtual views
// count by flag across all folders.
func (s *Store) recountFoldersLocked(accountID string) {
	type tally struct{ total, unread int }
	byFolder := make(map[model.Folder]tally)
	var accUnread, accTotal int

	for _, id := range s.accountMsgs[accountID] {
		m := s.msgs[id]
		if m == nil {
			continue
		}
		accTotal++
		if !m.IsRead {
			accUnread++
		}

		bump := func(f model.Folder) {
			t := byFolder[f]
			t.total++
			if !m.IsRead {
				t.unread++
			}
			byFolder[f] = t
		}

		bump(m.Folder)
		if m.IsStarred && !m.IsDeleted {
			bump(model.FolderStarred)
		}
		if m.IsImportant && !m.IsDeleted {
			bump(model.FolderImportant)
		}
		bump(model.FolderAll)
	}

	for i := range s.folders[accountID] {
		f := &s.folders[accountID][i]
		t := byFolder[f.Type]
		f.Count = t.total
		f.UnreadCount = t.unread
	}

	for i := range s.accounts {
		if s.accounts[i].ID == accountID {
			s.accounts[i].UnreadCount = accUnread
			s.accounts[i].TotalCount = accTotal
			break
		}
	}
}
