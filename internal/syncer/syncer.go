// Package syncer coordinates background synchronization of accounts
// against the data source. Each account moves through a small state
// machine (idle, syncing, error) with progress reported in discrete
// steps; a second sync request for an account already syncing is
// rejected rather than queued.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/postium/postium/internal/store"
)

// State is the sync state of one account.
type State int

const (
	StateIdle State = iota
	StateSyncing
	StateError
)

// String returns the state name for logs and the status bar.
func (s State) String() string {
	switch s {
	case StateSyncing:
		return "syncing"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// ErrSyncInProgress is returned when a sync is requested for an account
// that is already syncing.
var ErrSyncInProgress = errors.New("sync already in progress")

// syncTimeout bounds a single account sync end to end.
const syncTimeout = 60 * time.Second

// StartedMsg is a tea.Msg sent when an account sync begins.
type StartedMsg struct {
	AccountID string
}

// ProgressMsg is a tea.Msg carrying a progress step for a running sync.
type ProgressMsg struct {
	AccountID string
	Progress  int
}

// DoneMsg is a tea.Msg sent when an account sync completes, carrying
// what changed.
type DoneMsg struct {
	AccountID string
	Delta     store.SyncDelta
}

// FailedMsg is a tea.Msg sent when an account sync fails.
type FailedMsg struct {
	AccountID string
	Err       error
}

// CancelledMsg is a tea.Msg sent when an account sync is stopped before
// completion. No reload follows a cancellation.
type CancelledMsg struct {
	AccountID string
}

// AllDoneMsg is a tea.Msg sent once every account in a sync-all pass
// has finished, in whatever state.
type AllDoneMsg struct{}

// Coordinator runs account syncs against the store and reports their
// lifecycle on an event channel consumed by the UI.
type Coordinator struct {
	store *store.Store
	log   *slog.Logger

	mu     sync.Mutex
	states map[string]State
	stops  map[string]chan struct{}

	events chan tea.Msg

	// stepDelay and steps shape the simulated progress ramp. Tests
	// shrink stepDelay to keep runs fast.
	stepDelay time.Duration
	steps     int
}

// New creates a coordinator driving syncs against s.
func New(s *store.Store, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		store:     s,
		log:       log,
		states:    make(map[string]State),
		stops:     make(map[string]chan struct{}),
		events:    make(chan tea.Msg, 64),
		stepDelay: 100 * time.Millisecond,
		steps:     9,
	}
}

// SetStepDelay overrides the delay between progress steps.
func (c *Coordinator) SetStepDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stepDelay = d
}

// State returns the sync state of one account.
func (c *Coordinator) State(accountID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[accountID]
}

// IsSyncing reports whether any account sync is in flight. The UI uses
// it for the global sync indicator.
func (c *Coordinator) IsSyncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, st := range c.states {
		if st == StateSyncing {
			return true
		}
	}
	return false
}

// Sync starts a background sync for one account. It returns
// ErrSyncInProgress if that account is already syncing; other accounts
// are unaffected.
func (c *Coordinator) Sync(accountID string) error {
	c.mu.Lock()
	if c.states[accountID] == StateSyncing {
		c.mu.Unlock()
		c.log.Warn("sync rejected, already running", "account_id", accountID)
		return ErrSyncInProgress
	}
	stop := make(chan struct{})
	c.states[accountID] = StateSyncing
	c.stops[accountID] = stop
	c.mu.Unlock()

	go c.run(accountID, stop, nil)
	return nil
}

// SyncAll starts a sync for every listed account and emits AllDoneMsg
// once they have all finished. Accounts already syncing are skipped.
func (c *Coordinator) SyncAll(accountIDs []string) {
	var wg sync.WaitGroup

	for _, id := range accountIDs {
		c.mu.Lock()
		if c.states[id] == StateSyncing {
			c.mu.Unlock()
			continue
		}
		stop := make(chan struct{})
		c.states[id] = StateSyncing
		c.stops[id] = stop
		c.mu.Unlock()

		wg.Add(1)
		go c.run(id, stop, &wg)
	}

	go func() {
		wg.Wait()
		c.send(AllDoneMsg{})
	}()
}

// Stop cancels a running sync for one account. The store keeps
// whatever state it had; no reload follows.
func (c *Coordinator) Stop(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.states[accountID] != StateSyncing {
		return
	}
	if stop, ok := c.stops[accountID]; ok {
		close(stop)
		delete(c.stops, accountID)
	}
}

// StopAll cancels every running sync.
func (c *Coordinator) StopAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, stop := range c.stops {
		if c.states[id] == StateSyncing {
			close(stop)
		}
		delete(c.stops, id)
	}
}

// run executes one account sync: a stepped progress ramp, then the
// actual refresh against the data source.
func (c *Coordinator) run(accountID string, stop <-chan struct{}, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}

	c.mu.Lock()
	delay := c.stepDelay
	steps := c.steps
	c.mu.Unlock()

	c.store.BeginSync(accountID)
	c.send(StartedMsg{AccountID: accountID})
	c.log.Info("sync started", "account_id", accountID)

	for i := 1; i <= steps; i++ {
		select {
		case <-stop:
			c.finish(accountID, StateIdle)
			c.store.CancelSync(accountID)
			c.send(CancelledMsg{AccountID: accountID})
			return
		case <-time.After(delay):
		}
		progress := i * 100 / (steps + 1)
		c.store.SetSyncProgress(accountID, progress)
		c.send(ProgressMsg{AccountID: accountID, Progress: progress})
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	delta, err := c.store.SyncRefresh(ctx, accountID)
	if err != nil {
		c.finish(accountID, StateError)
		c.store.FailSync(accountID, err)
		c.send(FailedMsg{AccountID: accountID, Err: err})
		return
	}

	select {
	case <-stop:
		c.finish(accountID, StateIdle)
		c.store.CancelSync(accountID)
		c.send(CancelledMsg{AccountID: accountID})
		return
	default:
	}

	c.finish(accountID, StateIdle)
	c.store.CompleteSync(accountID, delta)
	c.send(DoneMsg{AccountID: accountID, Delta: delta})
}

// finish records the terminal state of a run and drops its stop channel.
func (c *Coordinator) finish(accountID string, st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[accountID] = st
	delete(c.stops, accountID)
}

// send delivers an event without blocking; a full channel drops the
// event rather than stalling a sync goroutine.
func (c *Coordinator) send(msg tea.Msg) {
	select {
	case c.events <- msg:
	default:
	}
}

// WaitForEvent returns a tea.Cmd that delivers the next sync event to
// the Bubble Tea runtime. The caller re-issues it after each event to
// keep listening.
func (c *Coordinator) WaitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-c.events
		if !ok {
			return nil
		}
		return msg
	}
}
