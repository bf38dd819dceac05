// Package store holds the canonical in-memory state of the mail
// client: accounts, messages, folders, labels, sync status, and the
// derived visible list. Every mutation goes through a named method on
// Store, and the store's mutex is the single serialization point — no
// two mutations interleave their effects on shared entities.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/query"
	"github.com/postium/postium/internal/selection"
	"github.com/postium/postium/internal/source"
)

// ErrNoAccount is returned by operations that need a current account
// when none is selected. Callers treat it as a benign no-op condition.
var ErrNoAccount = errors.New("no account selected")

// Store is the entity store. Messages live in an arena keyed by their
// globally unique id; a per-account ordered id list tracks ownership
// and preserves source order for stable sorting.
type Store struct {
	mu  sync.Mutex
	src source.DataSource
	log *slog.Logger

	accounts         []model.Account
	activeAccounts   map[string]bool
	currentAccountID string

	msgs        map[string]*model.Message
	accountMsgs map[string][]string // ordered owned ids

	folders map[string][]model.FolderInfo
	labels  map[string][]model.Label

	currentFolder model.Folder
	searchTerm    string
	filter        query.Filter
	sort          query.Sort

	visible []model.Message
	loading bool
	lastErr error

	syncStatus   map[string]model.SyncStatus
	lastSyncTime time.Time

	sel *selection.Manager
}

// New creates an empty store backed by the given data source.
func New(src source.DataSource, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		src:            src,
		log:            log,
		activeAccounts: make(map[string]bool),
		msgs:           make(map[string]*model.Message),
		accountMsgs:    make(map[string][]string),
		folders:        make(map[string][]model.FolderInfo),
		labels:         make(map[string][]model.Label),
		currentFolder:  model.FolderInbox,
		sort:           query.DefaultSort(),
		syncStatus:     make(map[string]model.SyncStatus),
		sel:            selection.NewManager(),
	}
}

// Initialize loads accounts, folder metadata, and every account's
// message set from the data source. The default account (or the first
// one) becomes current with its inbox displayed.
func (s *Store) Initialize(ctx context.Context) error {
	s.log.Info("initializing store")

	accounts, err := s.src.Accounts(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Error("loading accounts", "error", err)
		return err
	}

	s.mu.Lock()
	s.accounts = accounts
	for _, a := range s.accounts {
		s.activeAccounts[a.ID] = a.IsActive
		if a.IsDefault && s.currentAccountID == "" {
			s.currentAccountID = a.ID
		}
	}
	if s.currentAccountID == "" && len(s.accounts) > 0 {
		s.currentAccountID = s.accounts[0].ID
	}
	s.mu.Unlock()

	for _, a := range accounts {
		if err := s.loadAccountData(ctx, a.ID); err != nil {
			s.log.Error("loading account data", "account_id", a.ID, "error", err)
		}
	}

	s.mu.Lock()
	for _, a := range s.accounts {
		s.recountFoldersLocked(a.ID)
	}
	s.refreshVisibleLocked()
	s.mu.Unlock()

	s.log.Info("store initialized", "accounts", len(accounts))
	return nil
}

// loadAccountData pulls the folder list and full message set for one
// account into the arena.
func (s *Store) loadAccountData(ctx context.Context, accountID string) error {
	folders, err := s.src.Folders(ctx, accountID)
	if err != nil {
		return err
	}
	msgs, err := s.src.Messages(ctx, accountID, model.FolderAll)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[accountID] = folders
	s.upsertLocked(msgs)
	return nil
}

// upsertLocked inserts or replaces messages in the arena, preserving
// the position of existing ids in the per-account order.
func (s *Store) upsertLocked(msgs []model.Message) {
	for i := range msgs {
		m := msgs[i]
		if _, ok := s.msgs[m.ID]; !ok {
			s.accountMsgs[m.AccountID] = append(s.accountMsgs[m.AccountID], m.ID)
		}
		s.msgs[m.ID] = &m
	}
}

// removeLocked deletes a message from the arena and its account index.
func (s *Store) removeLocked(id string) {
	m, ok := s.msgs[id]
	if !ok {
		return
	}
	delete(s.msgs, id)
	order := s.accountMsgs[m.AccountID]
	for i, mid := range order {
		if mid == id {
			s.accountMsgs[m.AccountID] = append(order[:i], order[i+1:]...)
			break
		}
	}
	s.sel.Remove(id)
}

// messagesOfLocked returns value copies of an account's messages in
// arena order.
func (s *Store) messagesOfLocked(accountID string) []model.Message {
	order := s.accountMsgs[accountID]
	out := make([]model.Message, 0, len(order))
	for _, id := range order {
		if m, ok := s.msgs[id]; ok {
			out = append(out, *m)
		}
	}
	return out
}

// refreshVisibleLocked recomputes the visible list projection for the
// current account+folder and hands the visible ids to the selection
// manager. It also refreshes the cached copy of the current message so
// the detail view never observes stale flags.
func (s *Store) refreshVisibleLocked() {
	if s.currentAccountID == "" {
		s.visible = nil
		s.sel.SetVisible(nil)
		return
	}

	msgs := s.messagesOfLocked(s.currentAccountID)
	s.visible = query.Visible(msgs, s.currentFolder, s.searchTerm, s.filter, s.sort)

	ids := make([]string, len(s.visible))
	for i, m := range s.visible {
		ids[i] = m.ID
	}
	s.sel.SetVisible(ids)

	if cur, ok := s.sel.Current(); ok {
		if m, ok := s.msgs[cur.ID]; ok {
			s.sel.SetCurrent(*m)
		}
	}
}

// Visible returns a copy of the current visible message list.
func (s *Store) Visible() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.visible))
	copy(out, s.visible)
	return out
}

// Message returns a copy of the message with the given id.
func (s *Store) Message(id string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return model.Message{}, false
	}
	return *m, true
}

// MessagesForAccount returns value copies of an account's messages.
func (s *Store) MessagesForAccount(accountID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesOfLocked(accountID)
}

// CurrentFolder returns the folder currently displayed.
func (s *Store) CurrentFolder() model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFolder
}

// IsLoading reports whether a load is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the most recent store-level failure, if any.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
