package syncer_test

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postium/postium/internal/syncer"
	"github.com/postium/postium/tests/testutil"
)

// nextEvent pulls one event off the coordinator with a timeout so a
// broken coordinator fails the test instead of hanging it.
func nextEvent(t *testing.T, c *syncer.Coordinator) tea.Msg {
	t.Helper()

	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- c.WaitForEvent()()
	}()

	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sync event")
		return nil
	}
}

// waitFor drains events until one matches, failing after a bounded
// number of events.
func waitFor(t *testing.T, c *syncer.Coordinator, match func(tea.Msg) bool) tea.Msg {
	t.Helper()
	for i := 0; i < 200; i++ {
		msg := nextEvent(t, c)
		if match(msg) {
			return msg
		}
	}
	t.Fatal("expected sync event never arrived")
	return nil
}

func TestSyncEmitsLifecycleEvents(t *testing.T) {
	s := testutil.NewTestStore(t)
	c := syncer.New(s, testutil.DiscardLogger())
	c.SetStepDelay(time.Millisecond)
	cur, _ := s.CurrentAccount()

	require.NoError(t, c.Sync(cur.ID))

	started := nextEvent(t, c)
	sm, ok := started.(syncer.StartedMsg)
	require.True(t, ok, "first event is StartedMsg, got %T", started)
	assert.Equal(t, cur.ID, sm.AccountID)

	var sawProgress bool
	done := waitFor(t, c, func(msg tea.Msg) bool {
		if p, ok := msg.(syncer.ProgressMsg); ok {
			assert.GreaterOrEqual(t, p.Progress, 0)
			assert.LessOrEqual(t, p.Progress, 100)
			sawProgress = true
		}
		_, ok := msg.(syncer.DoneMsg)
		return ok
	})

	assert.True(t, sawProgress)
	dm := done.(syncer.DoneMsg)
	assert.Equal(t, cur.ID, dm.AccountID)
	assert.GreaterOrEqual(t, dm.Delta.New, 0)
	assert.Equal(t, syncer.StateIdle, c.State(cur.ID))
	assert.False(t, s.LastSyncTime().IsZero())
}

func TestSyncRejectsConcurrentRequest(t *testing.T) {
	s := testutil.NewTestStore(t)
	c := syncer.New(s, testutil.DiscardLogger())
	c.SetStepDelay(50 * time.Millisecond)
	cur, _ := s.CurrentAccount()

	require.NoError(t, c.Sync(cur.ID))
	assert.Equal(t, syncer.StateSyncing, c.State(cur.ID))
	assert.True(t, c.IsSyncing())

	err := c.Sync(cur.ID)
	assert.ErrorIs(t, err, syncer.ErrSyncInProgress)

	c.Stop(cur.ID)
	waitFor(t, c, func(msg tea.Msg) bool {
		_, ok := msg.(syncer.CancelledMsg)
		return ok
	})
}

func TestStopLeavesStateUntouched(t *testing.T) {
	s := testutil.NewTestStore(t)
	c := syncer.New(s, testutil.DiscardLogger())
	c.SetStepDelay(50 * time.Millisecond)
	cur, _ := s.CurrentAccount()
	before := len(s.MessagesForAccount(cur.ID))

	require.NoError(t, c.Sync(cur.ID))
	c.Stop(cur.ID)

	waitFor(t, c, func(msg tea.Msg) bool {
		_, ok := msg.(syncer.CancelledMsg)
		return ok
	})

	assert.Equal(t, syncer.StateIdle, c.State(cur.ID))
	assert.Len(t, s.MessagesForAccount(cur.ID), before, "cancelled sync does not reload")
	st, _ := s.SyncStatus(cur.ID)
	assert.False(t, st.IsSyncing)
	assert.Empty(t, st.Error)
}

func TestSyncAllFansOut(t *testing.T) {
	s := testutil.NewTestStore(t)
	c := syncer.New(s, testutil.DiscardLogger())
	c.SetStepDelay(time.Millisecond)

	var ids []string
	for _, a := range s.Accounts() {
		ids = append(ids, a.ID)
	}
	require.GreaterOrEqual(t, len(ids), 2)

	c.SyncAll(ids)

	done := make(map[string]bool)
	waitFor(t, c, func(msg tea.Msg) bool {
		if d, ok := msg.(syncer.DoneMsg); ok {
			done[d.AccountID] = true
		}
		_, ok := msg.(syncer.AllDoneMsg)
		return ok
	})

	assert.Len(t, done, len(ids), "every account finished")
	for _, id := range ids {
		assert.Equal(t, syncer.StateIdle, c.State(id))
	}
	assert.False(t, c.IsSyncing())
}

func TestStopAll(t *testing.T) {
	s := testutil.NewTestStore(t)
	c := syncer.New(s, testutil.DiscardLogger())
	c.SetStepDelay(50 * time.Millisecond)

	var ids []string
	for _, a := range s.Accounts() {
		ids = append(ids, a.ID)
	}
	c.SyncAll(ids)
	c.StopAll()

	finished := make(map[string]bool)
	waitFor(t, c, func(msg tea.Msg) bool {
		switch m := msg.(type) {
		case syncer.CancelledMsg:
			finished[m.AccountID] = true
		case syncer.DoneMsg:
			// A sync that raced past the stop still counts as finished.
			finished[m.AccountID] = true
		}
		return len(finished) == len(ids)
	})
	assert.False(t, c.IsSyncing())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "idle", syncer.StateIdle.String())
	assert.Equal(t, "syncing", syncer.StateSyncing.String())
	assert.Equal(t, "error", syncer.StateError.String())
}
