// Package selection maintains the set of selected message ids and the
// single current message used by the detail view. It is scoped to the
// account+folder currently displayed; the store clears it on every
// folder or account switch.
package selection

import (
	"sort"

	"github.com/postium/postium/internal/model"
)

// Manager holds the selection state. It is not safe for concurrent use
// on its own; the store serializes access to it.
type Manager struct {
	current    *model.Message
	selected   map[string]struct{}
	selectable []string // visible ids in presentation order, for select-all
}

// NewManager returns an empty selection.
func NewManager() *Manager {
	return &Manager{selected: make(map[string]struct{})}
}

// Select makes msg the current message and replaces the selection set
// with just its id.
func (m *Manager) Select(msg model.Message) {
	c := msg
	m.current = &c
	m.selected = map[string]struct{}{msg.ID: {}}
}

// SelectThread makes head the current message and replaces the
// selection set with every message id in the thread.
func (m *Manager) SelectThread(head model.Message, threadIDs []string) {
	c := head
	m.current = &c
	m.selected = make(map[string]struct{}, len(threadIDs))
	for _, id := range threadIDs {
		m.selected[id] = struct{}{}
	}
}

// Toggle flips membership of a single id without touching the rest of
// the selection or the current message.
func (m *Manager) Toggle(id string) {
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return
	}
	m.selected[id] = struct{}{}
}

// SetVisible records the ids currently visible post-filter. SelectAll
// operates on exactly this set.
func (m *Manager) SetVisible(ids []string) {
	m.selectable = append(m.selectable[:0], ids...)
}

// SelectAll replaces the selection with every visible id.
func (m *Manager) SelectAll() {
	m.selected = make(map[string]struct{}, len(m.selectable))
	for _, id := range m.selectable {
		m.selected[id] = struct{}{}
	}
}

// Clear drops both the current message and the selection set.
func (m *Manager) Clear() {
	m.current = nil
	m.selected = make(map[string]struct{})
}

// Remove drops id from the selection and clears the current message if
// it points at id. Used when a message is permanently deleted.
func (m *Manager) Remove(id string) {
	delete(m.selected, id)
	if m.current != nil && m.current.ID == id {
		m.current = nil
	}
}

// Current returns the current message, if any.
func (m *Manager) Current() (model.Message, bool) {
	if m.current == nil {
		return model.Message{}, false
	}
	return *m.current, true
}

// SetCurrent refreshes the cached copy of the current message after a
// store mutation touched it.
func (m *Manager) SetCurrent(msg model.Message) {
	c := msg
	m.current = &c
}

// IsSelected reports membership of id in the selection set.
func (m *Manager) IsSelected(id string) bool {
	_, ok := m.selected[id]
	return ok
}

// Selected returns the selected ids in a deterministic order.
func (m *Manager) Selected() []string {
	ids := make([]string, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of selected ids.
func (m *Manager) Count() int {
	return len(m.selected)
}
