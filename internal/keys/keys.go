package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Open / back / quit
	Open key.Binding
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Sync
	Sync    key.Binding
	SyncAll key.Binding

	// Folder and account switching
	NextFolder  key.Binding
	NextAccount key.Binding

	// Message actions
	ToggleRead  key.Binding
	ToggleStar  key.Binding
	ToggleFlag  key.Binding
	Delete      key.Binding
	Archive     key.Binding
	Spam        key.Binding

	// Selection
	ToggleSelect key.Binding
	SelectAll    key.Binding

	// Compose
	Compose  key.Binding
	Reply    key.Binding
	ReplyAll key.Binding
	Forward  key.Binding

	// Accounts
	AddAccount key.Binding

	// Sort
	CycleSort key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open message"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Sync: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "sync account"),
		),
		SyncAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "sync all"),
		),
		NextFolder: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next folder"),
		),
		NextAccount: key.NewBinding(
			key.WithKeys("`"),
			key.WithHelp("`", "next account"),
		),
		ToggleRead: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "toggle read"),
		),
		ToggleStar: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle star"),
		),
		ToggleFlag: key.NewBinding(
			key.WithKeys("!"),
			key.WithHelp("!", "toggle flag"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "trash"),
		),
		Archive: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "archive"),
		),
		Spam: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark spam"),
		),
		ToggleSelect: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),
		Compose: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "compose"),
		),
		Reply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "reply"),
		),
		ReplyAll: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "reply all"),
		),
		Forward: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "forward"),
		),
		AddAccount: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "add account"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle sort"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Open, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back, k.Quit},
		{k.Search, k.Help, k.Sync, k.SyncAll, k.CycleSort},
		{k.NextFolder, k.NextAccount, k.AddAccount, k.ToggleSelect, k.SelectAll},
		{k.ToggleRead, k.ToggleStar, k.ToggleFlag, k.Delete, k.Archive, k.Spam},
		{k.Compose, k.Reply, k.ReplyAll, k.Forward},
	}
}
