package model

// Folder tags the bucket (or view) a message list is drawn from.
// Lifecycle folders are mutually exclusive; the virtual folders select
// across lifecycle folders by flag. Anything else is a custom folder.
type Folder string

const (
	FolderInbox   Folder = "inbox"
	FolderSent    Folder = "sent"
	FolderDrafts  Folder = "drafts"
	FolderTrash   Folder = "trash"
	FolderSpam    Folder = "spam"
	FolderArchive Folder = "archive"

	// Virtual cross-folder views.
	FolderStarred   Folder = "starred"
	FolderImportant Folder = "important"
	FolderAll       Folder = "all"
)

// IsVirtual reports whether f is a flag-derived view rather than a
// bucket messages can be moved into.
func (f Folder) IsVirtual() bool {
	switch f {
	case FolderStarred, FolderImportant, FolderAll:
		return true
	}
	return false
}

// SystemFolders lists the built-in folders in display order.
func SystemFolders() []Folder {
	return []Folder{
		FolderInbox, FolderStarred, FolderImportant, FolderSent,
		FolderDrafts, FolderSpam, FolderTrash, FolderAll,
	}
}

// FolderInfo is the folder metadata entity. Count and UnreadCount are
// caches recomputed from the canonical message set after every mutation
// that changes folder membership or read state.
type FolderInfo struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Type      Folder `json:"type"`
	ParentID  string `json:"parent_id,omitempty"`
	IsSystem  bool   `json:"is_system"`

	Count       int `json:"count"`
	UnreadCount int `json:"unread_count"`

	Children []FolderInfo `json:"children,omitempty"`
}
