package store

import (
	"context"

	"github.com/postium/postium/internal/model"
)

// Accounts returns a copy of all configured accounts.
func (s *Store) Accounts() []model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// ActiveAccounts returns the accounts currently marked active.
func (s *Store) ActiveAccounts() []model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Account
	for _, a := range s.accounts {
		if s.activeAccounts[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// CurrentAccount returns the account currently displayed.
func (s *Store) CurrentAccount() (model.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountLocked(s.currentAccountID)
}

func (s *Store) accountLocked(id string) (model.Account, bool) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return model.Account{}, false
}

// AddAccount registers a new account and loads its folder metadata and
// messages from the data source. The account becomes current if it is
// the first one or flagged as default.
func (s *Store) AddAccount(ctx context.Context, account model.Account) error {
	s.log.Info("adding account", "address", account.Address)

	s.mu.Lock()
	s.accounts = append(s.accounts, account)
	s.activeAccounts[account.ID] = true
	if s.currentAccountID == "" || account.IsDefault {
		s.currentAccountID = account.ID
	}
	s.mu.Unlock()

	if err := s.loadAccountData(ctx, account.ID); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Error("loading new account", "account_id", account.ID, "error", err)
		return err
	}

	s.mu.Lock()
	s.recountFoldersLocked(account.ID)
	s.refreshVisibleLocked()
	s.mu.Unlock()
	return nil
}

// RemoveAccount drops an account and everything it owns. If it was
// current, current falls back to the first remaining account or none.
func (s *Store) RemoveAccount(accountID string) {
	s.log.Info("removing account", "account_id", accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.accounts {
		if a.ID == accountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Warn("remove of unknown account", "account_id", accountID)
		return
	}

	s.accounts = append(s.accounts[:idx], s.accounts[idx+1:]...)
	delete(s.activeAccounts, accountID)
	delete(s.folders, accountID)
	delete(s.labels, accountID)
	delete(s.syncStatus, accountID)

	for _, id := range s.accountMsgs[accountID] {
		delete(s.msgs, id)
		s.sel.Remove(id)
	}
	delete(s.accountMsgs, accountID)

	if s.currentAccountID == accountID {
		s.currentAccountID = ""
		if len(s.accounts) > 0 {
			s.currentAccountID = s.accounts[0].ID
		}
		s.sel.Clear()
	}
	s.refreshVisibleLocked()
}

// SetCurrentAccount switches the displayed account. Switching clears
// the selection.
func (s *Store) SetCurrentAccount(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accountLocked(accountID); !ok {
		s.log.Warn("switch to unknown account", "account_id", accountID)
		return
	}
	if s.currentAccountID == accountID {
		return
	}
	s.currentAccountID = accountID
	s.sel.Clear()
	s.refreshVisibleLocked()
}

// SwitchAccount makes accountID current and reloads the displayed
// folder for it from the data source.
func (s *Store) SwitchAccount(ctx context.Context, accountID string) error {
	s.SetCurrentAccount(accountID)
	return s.LoadMessages(ctx, accountID, "")
}

// ToggleAccountActive flips the active flag used by sync fan-out and
// multi-account folder loads.
func (s *Store) ToggleAccountActive(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeAccounts[accountID] = !s.activeAccounts[accountID]
	for i := range s.accounts {
		if s.accounts[i].ID == accountID {
			s.accounts[i].IsActive = s.activeAccounts[accountID]
		}
	}
}
