package composeform

import (
	"fmt"
	"net/mail"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/theme"
)

// SendMsg is dispatched when the user submits the form for sending.
type SendMsg struct {
	DraftID string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
}

// SaveDraftMsg is dispatched when the user closes the form keeping the
// draft for later.
type SaveDraftMsg struct {
	DraftID string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
}

// CancelMsg is dispatched when the user discards the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	to      string
	cc      string
	bcc     string
	subject string
	body    string
	action  string
}

const (
	actionSend = "send"
	actionSave = "save"
	actionDrop = "discard"
)

// Model is the Bubble Tea model for the compose form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	draftID string
	width   int
	height  int
}

// New creates a new compose form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{action: actionSend},
		width:  width,
		height: height,
	}
}

// Start initializes the form from an open draft.
func (m *Model) Start(draft model.ComposeDraft) tea.Cmd {
	m.draftID = draft.ID
	m.fb.to = strings.Join(draft.To, ", ")
	m.fb.cc = strings.Join(draft.Cc, ", ")
	m.fb.bcc = strings.Join(draft.Bcc, ", ")
	m.fb.subject = draft.Subject
	m.fb.body = draft.Body
	m.fb.action = actionSend
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the compose form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the compose form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Compose") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("To").
				Placeholder("alice@example.com, ben@example.com").
				Value(&m.fb.to).
				Validate(validateAddresses(true)),
			huh.NewInput().
				Title("Cc").
				Value(&m.fb.cc).
				Validate(validateAddresses(false)),
			huh.NewInput().
				Title("Bcc").
				Value(&m.fb.bcc).
				Validate(validateAddresses(false)),
			huh.NewInput().
				Title("Subject").
				Value(&m.fb.subject),
			huh.NewText().
				Title("Body").
				Value(&m.fb.body),
			huh.NewSelect[string]().
				Title("Action").
				Options(
					huh.NewOption("Send", actionSend),
					huh.NewOption("Save draft", actionSave),
					huh.NewOption("Discard", actionDrop),
				).
				Value(&m.fb.action),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	switch m.fb.action {
	case actionDrop:
		return func() tea.Msg { return CancelMsg{} }

	case actionSave:
		msg := SaveDraftMsg{
			DraftID: m.draftID,
			To:      splitAddresses(m.fb.to),
			Cc:      splitAddresses(m.fb.cc),
			Bcc:     splitAddresses(m.fb.bcc),
			Subject: m.fb.subject,
			Body:    m.fb.body,
		}
		return func() tea.Msg { return msg }

	default:
		msg := SendMsg{
			DraftID: m.draftID,
			To:      splitAddresses(m.fb.to),
			Cc:      splitAddresses(m.fb.cc),
			Bcc:     splitAddresses(m.fb.bcc),
			Subject: m.fb.subject,
			Body:    m.fb.body,
		}
		return func() tea.Msg { return msg }
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// splitAddresses parses a comma-separated address line.
func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validateAddresses(required bool) func(string) error {
	return func(s string) error {
		addrs := splitAddresses(s)
		if len(addrs) == 0 {
			if required {
				return fmt.Errorf("at least one recipient is required")
			}
			return nil
		}
		for _, a := range addrs {
			if _, err := mail.ParseAddress(a); err != nil {
				return fmt.Errorf("invalid address %q", a)
			}
		}
		return nil
	}
}
