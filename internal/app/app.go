// Package app is the root Bubble Tea model: it routes messages between
// the store, the sync coordinator, the compose manager, and the views.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/postium/postium/internal/compose"
	"github.com/postium/postium/internal/keys"
	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/prefs"
	"github.com/postium/postium/internal/store"
	"github.com/postium/postium/internal/syncer"
	"github.com/postium/postium/internal/ui"
	"github.com/postium/postium/internal/ui/accountform"
	"github.com/postium/postium/internal/ui/composeform"
	"github.com/postium/postium/internal/ui/detail"
	helpview "github.com/postium/postium/internal/ui/help"
	"github.com/postium/postium/internal/ui/maillist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewCompose
	ViewAccountForm
	ViewHelp
)

// sendResultMsg carries the outcome of a background draft send.
type sendResultMsg struct {
	draftID string
	err     error
}

// folderChangedMsg is sent after a folder switch finished loading.
type folderChangedMsg struct {
	err error
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the state layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout

	store   *store.Store
	drafts  *compose.Manager
	syncer  *syncer.Coordinator
	prefsDB *prefs.DB
	cfg     *model.AppConfig
	keys    *keys.KeyMap
	log     *slog.Logger

	mailList    maillist.Model
	detail      detail.Model
	composeView composeform.Model
	accountView accountform.Model
	helpView    helpview.Model

	folderIndex int
	ready       bool
	statusText  string
}

// New creates the root application model.
func New(
	s *store.Store,
	drafts *compose.Manager,
	sc *syncer.Coordinator,
	prefsDB *prefs.DB,
	cfg *model.AppConfig,
	log *slog.Logger,
) Model {
	k := keys.DefaultKeyMap()
	if log == nil {
		log = slog.Default()
	}

	return Model{
		currentView: ViewList,
		store:       s,
		drafts:      drafts,
		syncer:      sc,
		prefsDB:     prefsDB,
		cfg:         cfg,
		keys:        k,
		log:         log,
		mailList:    maillist.New(s, k, 80, 24),
		detail:      detail.New(s, k, 80, 24),
		composeView: composeform.New(80, 24),
		accountView: accountform.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
	}
}

// Init loads the initial message list and subscribes to sync events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.mailList.Init(),
		m.syncer.WaitForEvent(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		if m.prefsDB != nil {
			saved := m.prefsDB.LoadLayout()
			m.layout.SidebarWidth = saved.SidebarWidth
			m.layout.ListWidth = saved.ListWidth
		}
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.mailList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.composeView.SetSize(contentWidth, contentHeight)
		m.accountView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case syncer.StartedMsg, syncer.ProgressMsg:
		return m, m.syncer.WaitForEvent()

	case syncer.DoneMsg:
		m.statusText = fmt.Sprintf("synced: %d new, %d updated, %d deleted",
			msg.Delta.New, msg.Delta.Updated, msg.Delta.Deleted)
		return m, tea.Batch(m.mailList.Refresh(), m.syncer.WaitForEvent())

	case syncer.FailedMsg:
		m.statusText = "sync failed: " + msg.Err.Error()
		return m, m.syncer.WaitForEvent()

	case syncer.CancelledMsg:
		m.statusText = "sync cancelled"
		return m, m.syncer.WaitForEvent()

	case syncer.AllDoneMsg:
		return m, tea.Batch(m.mailList.Refresh(), m.syncer.WaitForEvent())

	case folderChangedMsg:
		if msg.err != nil {
			m.statusText = "load failed: " + msg.err.Error()
		}
		return m, m.mailList.Refresh()

	case maillist.OpenedMsg:
		if cur, ok := m.store.Message(msg.MessageID); ok {
			m.previousView = m.currentView
			m.currentView = ViewDetail
			m.detail.SetMessage(cur)
		}
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, m.mailList.Refresh()

	case detail.ComposeMsg:
		return m.openComposeFrom(msg)

	case composeform.SendMsg:
		m.currentView = ViewList
		return m, m.sendDraft(msg)

	case composeform.SaveDraftMsg:
		m.currentView = ViewList
		m.applyDraftEdits(msg.DraftID, msg.To, msg.Cc, msg.Bcc, msg.Subject, msg.Body)
		if err := m.drafts.Save(msg.DraftID); err == nil {
			m.statusText = "draft saved"
		}
		return m, m.mailList.Refresh()

	case composeform.CancelMsg:
		m.currentView = ViewList
		if d, ok := m.drafts.Active(); ok {
			m.drafts.Discard(d.ID)
		}
		return m, m.mailList.Refresh()

	case sendResultMsg:
		if msg.err != nil {
			m.statusText = "send failed: " + msg.err.Error()
			// The draft survives a failed send; reopen it for retry.
			if d, ok := m.drafts.Get(msg.draftID); ok {
				m.previousView = m.currentView
				m.currentView = ViewCompose
				return m, m.composeView.Start(d)
			}
			return m, nil
		}
		m.statusText = "message sent"
		return m, m.mailList.Refresh()

	case accountform.SavedMsg:
		m.currentView = ViewList
		return m, m.addAccount(msg.Account)

	case accountform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of the focused
// view. Form views swallow everything except quit.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return true, m, m.shutdown()
	}

	// Let forms consume their own keys.
	if m.currentView == ViewCompose || m.currentView == ViewAccountForm {
		return false, m, nil
	}
	// Search mode owns the keyboard too.
	if m.currentView == ViewList && m.mailList.InSearch() {
		return false, m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewList {
			return true, m, m.shutdown()
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}

	case key.Matches(msg, m.keys.Sync):
		if m.currentView == ViewList {
			if acct, ok := m.store.CurrentAccount(); ok {
				if err := m.syncer.Sync(acct.ID); err != nil {
					m.statusText = "sync already running"
				}
			}
			return true, m, nil
		}

	case key.Matches(msg, m.keys.SyncAll):
		if m.currentView == ViewList {
			var ids []string
			for _, a := range m.store.ActiveAccounts() {
				ids = append(ids, a.ID)
			}
			m.syncer.SyncAll(ids)
			return true, m, nil
		}

	case key.Matches(msg, m.keys.Compose):
		if m.currentView == ViewList {
			if acct, ok := m.store.CurrentAccount(); ok {
				d := m.drafts.Compose(acct.ID)
				m.previousView = m.currentView
				m.currentView = ViewCompose
				return true, m, m.composeView.Start(d)
			}
		}

	case key.Matches(msg, m.keys.NextFolder):
		if m.currentView == ViewList {
			folders := model.SystemFolders()
			m.folderIndex = (m.folderIndex + 1) % len(folders)
			return true, m, m.selectFolder(folders[m.folderIndex])
		}

	case key.Matches(msg, m.keys.NextAccount):
		if m.currentView == ViewList {
			return true, m, m.cycleAccount()
		}

	case key.Matches(msg, m.keys.AddAccount):
		if m.currentView == ViewList {
			m.previousView = m.currentView
			m.currentView = ViewAccountForm
			return true, m, m.accountView.Start()
		}
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.mailList, cmd = m.mailList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCompose:
		m.composeView, cmd = m.composeView.Update(msg)
	case ViewAccountForm:
		m.accountView, cmd = m.accountView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Postium Mail"
	if acct, ok := m.store.CurrentAccount(); ok {
		title = fmt.Sprintf("Postium Mail · %s", acct.Address)
	}
	header := m.layout.RenderHeader(title, m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.mailList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewCompose:
		return m.composeView.View()
	case ViewAccountForm:
		return m.accountView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the combined sync state.
func (m Model) syncStatus() string {
	statuses := m.store.SyncStatuses()

	syncing := 0
	var minProgress int
	for _, st := range statuses {
		if st.IsSyncing {
			if syncing == 0 || st.Progress < minProgress {
				minProgress = st.Progress
			}
			syncing++
		}
	}

	if syncing > 0 {
		return fmt.Sprintf("syncing %d%% (%d)", minProgress, syncing)
	}
	if last := m.store.LastSyncTime(); !last.IsZero() {
		return "synced " + last.Format("15:04")
	}
	return "idle"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusText != "" && m.currentView == ViewList {
		return m.statusText
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | a reply | A reply all | f forward | s star | j/k scroll"
	case ViewCompose:
		return "enter submit | esc cancel"
	case ViewAccountForm:
		return "enter submit | esc cancel"
	default:
		n := m.store.SelectionCount()
		if n > 1 {
			return fmt.Sprintf("%d selected | u read | s star | d trash | e archive | esc clear", n)
		}
		return "q quit | ? help | / search | r sync | c compose | tab folder | ` account"
	}
}

// openComposeFrom seeds a draft from the displayed message.
func (m Model) openComposeFrom(msg detail.ComposeMsg) (tea.Model, tea.Cmd) {
	src, ok := m.store.Message(msg.MessageID)
	if !ok {
		return m, nil
	}
	acct, ok := m.store.CurrentAccount()
	if !ok {
		return m, nil
	}

	var d model.ComposeDraft
	switch msg.Mode {
	case "reply":
		d = m.drafts.Reply(acct.ID, src)
	case "reply_all":
		d = m.drafts.ReplyAll(acct.ID, src)
	case "forward":
		d = m.drafts.Forward(acct.ID, src)
	default:
		return m, nil
	}

	m.previousView = m.currentView
	m.currentView = ViewCompose
	return m, m.composeView.Start(d)
}

// sendDraft applies the form edits and transmits in the background.
func (m *Model) sendDraft(msg composeform.SendMsg) tea.Cmd {
	m.applyDraftEdits(msg.DraftID, msg.To, msg.Cc, msg.Bcc, msg.Subject, msg.Body)

	drafts := m.drafts
	id := msg.DraftID
	return func() tea.Msg {
		err := drafts.Send(context.Background(), id)
		return sendResultMsg{draftID: id, err: err}
	}
}

func (m *Model) applyDraftEdits(id string, to, cc, bcc []string, subject, body string) {
	_ = m.drafts.Update(id, compose.DraftUpdate{
		To:      &to,
		Cc:      &cc,
		Bcc:     &bcc,
		Subject: &subject,
		Body:    &body,
	})
}

// selectFolder switches folders in the background, then refreshes.
func (m Model) selectFolder(f model.Folder) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.SelectFolder(context.Background(), f)
		return folderChangedMsg{err: err}
	}
}

// cycleAccount switches to the next account in configuration order.
func (m Model) cycleAccount() tea.Cmd {
	accounts := m.store.Accounts()
	if len(accounts) < 2 {
		return nil
	}
	cur, _ := m.store.CurrentAccount()
	next := accounts[0]
	for i, a := range accounts {
		if a.ID == cur.ID {
			next = accounts[(i+1)%len(accounts)]
			break
		}
	}

	s := m.store
	id := next.ID
	return func() tea.Msg {
		err := s.SwitchAccount(context.Background(), id)
		return folderChangedMsg{err: err}
	}
}

// addAccount persists the new account config and loads its data.
func (m Model) addAccount(ac model.AccountConfig) tea.Cmd {
	s := m.store
	cfg := m.cfg
	log := m.log
	return func() tea.Msg {
		cfg.Accounts = append(cfg.Accounts, ac)
		if err := model.SaveConfig(model.DefaultConfigPath(), cfg); err != nil {
			log.Error("saving config", "error", err)
		}

		err := s.AddAccount(context.Background(), model.Account{
			ID:              ac.Address,
			Address:         ac.Address,
			Name:            ac.Name,
			Provider:        model.Provider(ac.Provider),
			IsDefault:       ac.IsDefault,
			IsActive:        true,
			SyncIntervalSec: ac.SyncIntervalSec,
		})
		return folderChangedMsg{err: err}
	}
}

// shutdown stops running syncs, saves the layout, and quits.
func (m Model) shutdown() tea.Cmd {
	m.syncer.StopAll()
	if m.prefsDB != nil {
		sort := m.store.Sort()
		_ = m.prefsDB.SaveLayout(prefs.PaneLayout{
			SidebarWidth: m.layout.SidebarWidth,
			ListWidth:    m.layout.ListWidth,
			ShowPreview:  true,
			SortBy:       string(sort.By),
			SortDesc:     sort.Desc,
		})
	}
	return tea.Quit
}
