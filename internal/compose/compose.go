// Package compose manages the draft lifecycle: creating blank, reply,
// reply-all, and forward drafts, editing them, and handing finished
// drafts to a transmitter. A draft survives a failed send so nothing
// typed is ever lost.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postium/postium/internal/model"
)

// ErrDraftNotFound is returned when an operation names a draft id the
// manager does not hold.
var ErrDraftNotFound = errors.New("draft not found")

// Transmitter delivers a finished draft. The SMTP client implements it
// in production; tests swap in a recorder.
type Transmitter interface {
	Transmit(ctx context.Context, accountID string, draft model.ComposeDraft) error
}

// Manager owns all open drafts and the id of the one being edited.
type Manager struct {
	mu       sync.Mutex
	drafts   map[string]*model.ComposeDraft
	order    []string
	activeID string
	tx       Transmitter
	log      *slog.Logger
}

// NewManager returns an empty draft manager sending through tx.
func NewManager(tx Transmitter, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		drafts: make(map[string]*model.ComposeDraft),
		tx:     tx,
		log:    log,
	}
}

// Compose opens a blank draft for an account and makes it active.
func (m *Manager) Compose(accountID string) model.ComposeDraft {
	d := m.newDraft(accountID)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(d)
	return *d
}

// Reply opens a draft addressed to the sender of msg with the subject
// prefixed "Re: " and the reply chain headers set.
func (m *Manager) Reply(accountID string, msg model.Message) model.ComposeDraft {
	d := m.newDraft(accountID)
	d.To = []string{msg.From.Address}
	d.Subject = "Re: " + msg.Subject
	d.InReplyTo = msg.MessageID
	d.References = appendReference(msg.References, msg.MessageID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(d)
	return *d
}

// ReplyAll opens a reply draft addressed to the sender plus every To
// and Cc recipient, folded into one recipient list and deduplicated in
// first-seen order. The replying account's own address is kept; the
// user prunes it if they do not want a self-copy.
func (m *Manager) ReplyAll(accountID string, msg model.Message) model.ComposeDraft {
	d := m.newDraft(accountID)
	d.Subject = "Re: " + msg.Subject
	d.InReplyTo = msg.MessageID
	d.References = appendReference(msg.References, msg.MessageID)

	seen := make(map[string]bool)
	add := func(c model.Contact) {
		if c.Address == "" || seen[c.Address] {
			return
		}
		seen[c.Address] = true
		d.To = append(d.To, c.Address)
	}

	add(msg.From)
	for _, c := range msg.To {
		add(c)
	}
	for _, c := range msg.Cc {
		add(c)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(d)
	return *d
}

// Forward opens a draft carrying the original message quoted in the
// body with a "Fwd: " subject and no recipients.
func (m *Manager) Forward(accountID string, msg model.Message) model.ComposeDraft {
	d := m.newDraft(accountID)
	d.Subject = "Fwd: " + msg.Subject
	d.Body = forwardBody(msg)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(d)
	return *d
}

func (m *Manager) newDraft(accountID string) *model.ComposeDraft {
	now := time.Now()
	return &model.ComposeDraft{
		ID:        uuid.New().String(),
		AccountID: accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// insert registers a draft and makes it active. Caller holds the lock.
func (m *Manager) insert(d *model.ComposeDraft) {
	m.drafts[d.ID] = d
	m.order = append(m.order, d.ID)
	m.activeID = d.ID
	m.log.Info("opened draft", "draft_id", d.ID, "account_id", d.AccountID)
}

// DraftUpdate carries edits to apply to a draft. Nil fields leave the
// current value in place.
type DraftUpdate struct {
	To      *[]string
	Cc      *[]string
	Bcc     *[]string
	Subject *string
	Body    *string
}

// Update applies edits to a draft and bumps its UpdatedAt.
func (m *Manager) Update(id string, upd DraftUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[id]
	if !ok {
		return fmt.Errorf("updating draft %s: %w", id, ErrDraftNotFound)
	}
	if upd.To != nil {
		d.To = *upd.To
	}
	if upd.Cc != nil {
		d.Cc = *upd.Cc
	}
	if upd.Bcc != nil {
		d.Bcc = *upd.Bcc
	}
	if upd.Subject != nil {
		d.Subject = *upd.Subject
	}
	if upd.Body != nil {
		d.Body = *upd.Body
	}
	d.UpdatedAt = time.Now()
	return nil
}

// Save marks a draft as persisted. Saving twice is harmless.
func (m *Manager) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[id]
	if !ok {
		return fmt.Errorf("saving draft %s: %w", id, ErrDraftNotFound)
	}
	d.IsDraft = true
	d.UpdatedAt = time.Now()
	m.log.Info("saved draft", "draft_id", id)
	return nil
}

// Send transmits a draft and, only if transmission succeeds, removes
// it. On failure the draft stays open with its content intact so the
// user can retry.
func (m *Manager) Send(ctx context.Context, id string) error {
	m.mu.Lock()
	d, ok := m.drafts[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("sending draft %s: %w", id, ErrDraftNotFound)
	}
	snapshot := *d
	m.mu.Unlock()

	if err := m.tx.Transmit(ctx, snapshot.AccountID, snapshot); err != nil {
		m.log.Error("sending draft", "draft_id", id, "error", err)
		return fmt.Errorf("sending draft %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
	m.log.Info("sent draft", "draft_id", id, "subject", snapshot.Subject)
	return nil
}

// Discard removes a draft without sending it.
func (m *Manager) Discard(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return
	}
	m.remove(id)
	m.log.Info("discarded draft", "draft_id", id)
}

// remove drops a draft from the manager. Caller holds the lock.
func (m *Manager) remove(id string) {
	delete(m.drafts, id)
	for i, did := range m.order {
		if did == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.activeID == id {
		m.activeID = ""
	}
}

// SetActive changes which draft is being edited.
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return fmt.Errorf("activating draft %s: %w", id, ErrDraftNotFound)
	}
	m.activeID = id
	return nil
}

// Active returns the draft currently being edited, if any.
func (m *Manager) Active() (model.ComposeDraft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[m.activeID]
	if !ok {
		return model.ComposeDraft{}, false
	}
	return *d, true
}

// Get returns a copy of one draft.
func (m *Manager) Get(id string) (model.ComposeDraft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return model.ComposeDraft{}, false
	}
	return *d, true
}

// List returns copies of all open drafts in creation order.
func (m *Manager) List() []model.ComposeDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ComposeDraft, 0, len(m.order))
	for _, id := range m.order {
		if d, ok := m.drafts[id]; ok {
			out = append(out, *d)
		}
	}
	return out
}

// Count returns the number of open drafts.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}

func appendReference(refs []string, messageID string) []string {
	if messageID == "" {
		return refs
	}
	out := make([]string, 0, len(refs)+1)
	out = append(out, refs...)
	return append(out, messageID)
}
