// Package accountform is the add-account flow: connection settings go
// to the config file, the password goes to the system keyring.
package accountform

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/postium/postium/internal/credential"
	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/theme"
)

// SavedMsg signals an account was configured and its password stored.
type SavedMsg struct {
	Account model.AccountConfig
}

// CancelMsg signals the user backed out of the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	address      string
	name         string
	provider     string
	imapHost     string
	imapPort     string
	imapSecurity string
	smtpHost     string
	smtpPort     string
	password     string
	isDefault    bool
}

// Model is the Bubble Tea model for the account form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new account form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{provider: string(model.ProviderCustom), imapSecurity: "tls"},
		width:  width,
		height: height,
	}
}

// Start initializes a blank form.
func (m *Model) Start() tea.Cmd {
	*m.fb = formBindings{
		provider:     string(model.ProviderCustom),
		imapSecurity: "tls",
		imapPort:     "993",
		smtpPort:     "587",
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the account form.
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

// View renders the account form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Add Account") + "\n" + m.form.View()

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
				Title("Email address").
				Placeholder("you@example.com").
				Value(&m.fb.address).
				Validate(validateAddress),
			huh.NewInput().
				Title("Display name").
				Value(&m.fb.name),
			huh.NewSelect[string]().
				Title("Provider").
				Options(
					huh.NewOption("Gmail", string(model.ProviderGmail)),
					huh.NewOption("Outlook", string(model.ProviderOutlook)),
					huh.NewOption("Yahoo", string(model.ProviderYahoo)),
					huh.NewOption("iCloud", string(model.ProviderICloud)),
					huh.NewOption("Custom", string(model.ProviderCustom)),
				).
				Value(&m.fb.provider),
			huh.NewInput().
				Title("IMAP host").
				Placeholder("imap.example.com").
				Value(&m.fb.imapHost).
				Validate(validateRequired("IMAP host")),
			huh.NewInput().
				Title("IMAP port").
				Value(&m.fb.imapPort).
				Validate(validatePort),
			huh.NewSelect[string]().
				Title("IMAP security").
				Options(
					huh.NewOption("TLS", "tls"),
					huh.NewOption("STARTTLS", "starttls"),
				).
				Value(&m.fb.imapSecurity),
			huh.NewInput().
				Title("SMTP host").
				Placeholder("smtp.example.com").
				Value(&m.fb.smtpHost).
				Validate(validateRequired("SMTP host")),
			huh.NewInput().
				Title("SMTP port").
				Value(&m.fb.smtpPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
			huh.NewConfirm().
				Title("Default account?").
				Value(&m.fb.isDefault),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	return func() tea.Msg {
		if err := credential.Set(credential.IMAPKey(fb.address), fb.password); err != nil {
			return CancelMsg{}
		}

		imapPort, _ := strconv.Atoi(fb.imapPort)
		smtpPort, _ := strconv.Atoi(fb.smtpPort)

		return SavedMsg{Account: model.AccountConfig{
			Address:         fb.address,
			Name:            fb.name,
			Provider:        fb.provider,
			IMAPHost:        fb.imapHost,
			IMAPPort:        imapPort,
			IMAPSecurity:    fb.imapSecurity,
			SMTPHost:        fb.smtpHost,
			SMTPPort:        smtpPort,
			IsDefault:       fb.isDefault,
			SyncIntervalSec: 300,
		}}
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateAddress(s string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("invalid port")
	}
	return nil
}
