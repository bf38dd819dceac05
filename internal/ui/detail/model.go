package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/postium/postium/internal/keys"
	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/store"
	"github.com/postium/postium/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// ComposeMsg asks the parent to open a compose draft seeded from the
// displayed message.
type ComposeMsg struct {
	Mode      string // "reply", "reply_all", "forward"
	MessageID string
}

// Model is the message detail view component.
type Model struct {
	msg      *model.Message
	viewport viewport.Model
	store    *store.Store
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(s *store.Store, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		store:    s,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(keyMsg, m.keys.Reply):
			if m.msg != nil {
				id := m.msg.ID
				return m, func() tea.Msg {
					return ComposeMsg{Mode: "reply", MessageID: id}
				}
			}

		case key.Matches(keyMsg, m.keys.ReplyAll):
			if m.msg != nil {
				id := m.msg.ID
				return m, func() tea.Msg {
					return ComposeMsg{Mode: "reply_all", MessageID: id}
				}
			}

		case key.Matches(keyMsg, m.keys.Forward):
			if m.msg != nil {
				id := m.msg.ID
				return m, func() tea.Msg {
					return ComposeMsg{Mode: "forward", MessageID: id}
				}
			}

		case key.Matches(keyMsg, m.keys.ToggleStar):
			if m.msg != nil {
				m.store.ToggleStar([]string{m.msg.ID})
				m.Reload()
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.ToggleRead):
			if m.msg != nil {
				m.store.ToggleRead([]string{m.msg.ID})
				m.Reload()
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.msg == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No message selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.msg == nil {
		return ""
	}

	msg := m.msg
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(msg.Subject))

	folderBadge := theme.FolderStyle(string(msg.Folder)).Render(string(msg.Folder))
	flagLine := theme.FlagIndicators(msg.IsStarred, msg.IsFlagged, msg.HasAttachments)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, folderBadge, "  ", flagLine))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("From:"),
		valStyle.Render(msg.From.Display()),
	))
	if len(msg.To) > 0 {
		sections = append(sections, fmt.Sprintf(
			"%s    %s",
			metaStyle.Render("To:"),
			valStyle.Render(contactLine(msg.To)),
		))
	}
	if len(msg.Cc) > 0 {
		sections = append(sections, fmt.Sprintf(
			"%s    %s",
			metaStyle.Render("Cc:"),
			valStyle.Render(contactLine(msg.Cc)),
		))
	}
	if !msg.Date.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s  %s",
			metaStyle.Render("Date:"),
			valStyle.Render(msg.Date.Format("2006-01-02 15:04")),
		))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	body := msg.Body
	if body == "" {
		body = msg.Preview
	}
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No content")
	}
	sections = append(sections, body)

	if len(msg.Attachments) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")

		attHeaderStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite)
		sections = append(sections, attHeaderStyle.Render(
			fmt.Sprintf("Attachments (%d)", len(msg.Attachments)),
		))
		sections = append(sections, "")

		nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue)
		sizeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
		for _, a := range msg.Attachments {
			sections = append(sections, fmt.Sprintf(
				"%s  %s",
				nameStyle.Render(a.Filename),
				sizeStyle.Render(humanSize(a.Size)),
			))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetMessage updates the message being displayed and re-renders.
func (m *Model) SetMessage(msg model.Message) {
	m.msg = &msg
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Reload re-reads the displayed message from the store so flag changes
// show immediately.
func (m *Model) Reload() {
	if m.msg == nil {
		return
	}
	if cur, ok := m.store.Message(m.msg.ID); ok {
		m.SetMessage(cur)
	}
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

func contactLine(contacts []model.Contact) string {
	parts := make([]string, len(contacts))
	for i, c := range contacts {
		parts[i] = c.Display()
	}
	return strings.Join(parts, ", ")
}

// humanSize formats a byte count for the attachment list.
func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
