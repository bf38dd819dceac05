package store

import (
	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/query"
)

// SetSearchTerm updates the search term and recomputes the visible
// list. An empty term disables search.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if term == s.searchTerm {
		return
	}
	s.searchTerm = term
	s.refreshVisibleLocked()
}

// SearchTerm returns the active search term.
func (s *Store) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

// SetFilter replaces the active filter and recomputes the visible list.
func (s *Store) SetFilter(f query.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.refreshVisibleLocked()
}

// Filter returns the active filter.
func (s *Store) Filter() query.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetSort replaces the active sort and recomputes the visible list.
func (s *Store) SetSort(sort query.Sort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = sort
	s.refreshVisibleLocked()
}

// Sort returns the active sort.
func (s *Store) Sort() query.Sort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// ClearFilters drops the search term and filter and restores the
// default sort.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = ""
	s.filter = query.Filter{}
	s.sort = query.DefaultSort()
	s.refreshVisibleLocked()
}

// SelectMessage makes the message with the given id current without
// touching its flags. Unknown ids are ignored.
func (s *Store) SelectMessage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		s.log.Warn("select of unknown message", "message_id", id)
		return
	}
	s.sel.Select(*m)
}

// OpenMessage makes the message current and, if it was unread, marks it
// read. Opening an already-read message changes nothing but the
// selection.
func (s *Store) OpenMessage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		s.log.Warn("open of unknown message", "message_id", id)
		return
	}
	if !m.IsRead {
		m.IsRead = true
		s.recountFoldersLocked(m.AccountID)
		s.refreshVisibleLocked()
	}
	s.sel.Select(*m)
}

// SelectThread makes the message current and selects every message in
// its thread within the same account. A message without a thread id is
// a thread of one.
func (s *Store) SelectThread(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.msgs[id]
	if !ok {
		s.log.Warn("thread select of unknown message", "message_id", id)
		return
	}
	if head.ThreadID == "" {
		s.sel.Select(*head)
		return
	}

	var threadIDs []string
	for _, mid := range s.accountMsgs[head.AccountID] {
		if m := s.msgs[mid]; m != nil && m.ThreadID == head.ThreadID {
			threadIDs = append(threadIDs, mid)
		}
	}
	s.sel.SelectThread(*head, threadIDs)
}

// ToggleSelection flips membership of one id in the selection set.
func (s *Store) ToggleSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Toggle(id)
}

// SelectAllVisible selects exactly the messages in the current visible
// list, so an active filter bounds the selection.
func (s *Store) SelectAllVisible() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SelectAll()
}

// ClearSelection drops the selection set and the current message.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
}

// CurrentMessage returns the message shown in the detail view, if any.
func (s *Store) CurrentMessage() (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Current()
}

// SelectedIDs returns the selected message ids in deterministic order.
func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Selected()
}

// IsSelected reports whether the given id is in the selection set.
func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.IsSelected(id)
}

// SelectionCount returns the number of selected messages.
func (s *Store) SelectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Count()
}
