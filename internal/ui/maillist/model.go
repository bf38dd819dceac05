package maillist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/postium/postium/internal/keys"
	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/query"
	"github.com/postium/postium/internal/store"
	"github.com/postium/postium/internal/theme"
)

// RefreshMsg asks the list to re-read the visible messages from the
// store after a mutation.
type RefreshMsg struct{}

// OpenedMsg is sent when the user opens a message for the detail view.
type OpenedMsg struct {
	MessageID string
}

// sortModes defines the sort fields cycled by the sort key.
var sortModes = []query.SortField{
	query.SortByDate,
	query.SortBySender,
	query.SortBySubject,
	query.SortBySize,
	query.SortByImportance,
}

// Model is the message list view component.
type Model struct {
	list        list.Model
	store       *store.Store
	keys        *keys.KeyMap
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new message list model.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	delegate := ItemDelegate{isSelected: s.IsSelected}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search mail..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial message list.
func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshMsg:
		msgs := m.store.Visible()
		items := make([]list.Item, len(msgs))
		for i, mm := range msgs {
			items[i] = MessageItem{Message: mm}
		}
		m.list.Title = folderTitle(m.store.CurrentFolder())
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.store.SetSearchTerm(m.searchInput.Value())
		return m, m.Refresh()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.store.SetSearchTerm("")
		return m, m.Refresh()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		item, ok := m.list.SelectedItem().(MessageItem)
		if !ok {
			return m, nil
		}
		m.store.OpenMessage(item.Message.ID)
		id := item.Message.ID
		return m, tea.Batch(m.Refresh(), func() tea.Msg {
			return OpenedMsg{MessageID: id}
		})

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.ToggleSelect):
		if item, ok := m.list.SelectedItem().(MessageItem); ok {
			m.store.ToggleSelection(item.Message.ID)
		}
		return m, m.Refresh()

	case key.Matches(msg, m.keys.SelectAll):
		m.store.SelectAllVisible()
		return m, m.Refresh()

	case key.Matches(msg, m.keys.ToggleRead):
		m.store.ToggleRead(m.actionTargets())
		return m, m.Refresh()

	case key.Matches(msg, m.keys.ToggleStar):
		m.store.ToggleStar(m.actionTargets())
		return m, m.Refresh()

	case key.Matches(msg, m.keys.ToggleFlag):
		m.store.ToggleFlag(m.actionTargets())
		return m, m.Refresh()

	case key.Matches(msg, m.keys.Delete):
		if m.store.CurrentFolder() == model.FolderTrash {
			m.store.PermanentlyDelete(m.actionTargets())
		} else {
			m.store.Delete(m.actionTargets())
		}
		return m, m.Refresh()

	case key.Matches(msg, m.keys.Archive):
		m.store.Archive(m.actionTargets())
		return m, m.Refresh()

	case key.Matches(msg, m.keys.Spam):
		m.store.MarkSpam(m.actionTargets())
		return m, m.Refresh()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		m.store.SetSort(query.Sort{By: sortModes[m.sortIndex], Desc: true})
		return m, m.Refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// actionTargets returns the ids a bulk action applies to: the
// multi-select set when non-empty, otherwise the focused row.
func (m Model) actionTargets() []string {
	if ids := m.store.SelectedIDs(); len(ids) > 0 {
		return ids
	}
	if item, ok := m.list.SelectedItem().(MessageItem); ok {
		return []string{item.Message.ID}
	}
	return nil
}

// Focused returns the message under the cursor, if any.
func (m Model) Focused() (model.Message, bool) {
	item, ok := m.list.SelectedItem().(MessageItem)
	if !ok {
		return model.Message{}, false
	}
	return item.Message, true
}

// View renders the message list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no messages match.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.store.SearchTerm() != "" || !m.store.Filter().IsZero() {
		return style.Render("No matching messages.\nTry adjusting your filters.")
	}

	return style.Render("Folder is empty.\n\nPress r to sync.")
}

// InSearch reports whether the search input currently owns the
// keyboard.
func (m Model) InSearch() bool {
	return m.searchMode
}

// Refresh returns a tea.Cmd that re-reads the visible list.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

func folderTitle(f model.Folder) string {
	switch f {
	case model.FolderAll:
		return "All Mail"
	}
	s := string(f)
	if s == "" {
		return "Mail"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
