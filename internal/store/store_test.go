package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/query"
	"github.com/postium/postium/internal/source/synth"
	"github.com/postium/postium/internal/store"
	"github.com/postium/postium/tests/testutil"
)

func TestInitialize(t *testing.T) {
	s := testutil.NewTestStore(t)

	accounts := s.Accounts()
	require.NotEmpty(t, accounts)

	cur, ok := s.CurrentAccount()
	require.True(t, ok)
	assert.Equal(t, accounts[0].ID, cur.ID, "default account becomes current")

	assert.Equal(t, model.FolderInbox, s.CurrentFolder())
	visible := s.Visible()
	require.NotEmpty(t, visible)
	for _, m := range visible {
		assert.Equal(t, model.FolderInbox, m.Folder)
		assert.Equal(t, cur.ID, m.AccountID)
	}
}

func TestLoadMessagesWithoutAccountIsNoOp(t *testing.T) {
	s := store.New(synth.New(testutil.Seed), testutil.DiscardLogger())

	// No Initialize, so there is no current account to fall back to.
	err := s.LoadMessages(context.Background(), "", "")
	assert.NoError(t, err)
	assert.Empty(t, s.Visible())
}

func TestToggleReadTwiceRestores(t *testing.T) {
	s := testutil.NewTestStore(t)
	m := s.Visible()[0]

	s.ToggleRead([]string{m.ID})
	got, ok := s.Message(m.ID)
	require.True(t, ok)
	assert.Equal(t, !m.IsRead, got.IsRead)

	s.ToggleRead([]string{m.ID})
	got, _ = s.Message(m.ID)
	assert.Equal(t, m.IsRead, got.IsRead)
}

func TestMarkReadUpdatesCounts(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()

	var unreadIDs []string
	for _, m := range s.Visible() {
		if !m.IsRead {
			unreadIDs = append(unreadIDs, m.ID)
		}
	}
	require.NotEmpty(t, unreadIDs)

	s.MarkRead(unreadIDs)

	for _, id := range unreadIDs {
		got, _ := s.Message(id)
		assert.True(t, got.IsRead)
	}
	for _, f := range s.Folders(cur.ID) {
		if f.Type == model.FolderInbox {
			assert.Zero(t, f.UnreadCount)
		}
	}
}

func TestUnknownIDsAreSkipped(t *testing.T) {
	s := testutil.NewTestStore(t)
	before := s.Visible()

	s.ToggleStar([]string{"not-a-message"})
	s.MarkRead([]string{"not-a-message"})

	assert.Equal(t, before, s.Visible())
}

func TestDeleteMovesToTrash(t *testing.T) {
	s := testutil.NewTestStore(t)
	m := s.Visible()[0]

	s.Delete([]string{m.ID})

	got, ok := s.Message(m.ID)
	require.True(t, ok, "soft delete keeps the message")
	assert.Equal(t, model.FolderTrash, got.Folder)
	assert.True(t, got.IsDeleted)

	for _, v := range s.Visible() {
		assert.NotEqual(t, m.ID, v.ID, "deleted message left the inbox view")
	}
}

func TestPermanentlyDelete(t *testing.T) {
	s := testutil.NewTestStore(t)
	m := s.Visible()[0]

	s.PermanentlyDelete([]string{m.ID})

	_, ok := s.Message(m.ID)
	assert.False(t, ok)
}

func TestArchiveAndSpam(t *testing.T) {
	s := testutil.NewTestStore(t)
	a := s.Visible()[0]
	b := s.Visible()[1]

	s.Archive([]string{a.ID})
	s.MarkSpam([]string{b.ID})

	got, _ := s.Message(a.ID)
	assert.Equal(t, model.FolderArchive, got.Folder)
	assert.False(t, got.IsDeleted)

	got, _ = s.Message(b.ID)
	assert.Equal(t, model.FolderSpam, got.Folder)
}

func TestMoveToVirtualFolderIsRejected(t *testing.T) {
	s := testutil.NewTestStore(t)
	m := s.Visible()[0]

	s.MoveToFolder([]string{m.ID}, model.FolderStarred)

	got, _ := s.Message(m.ID)
	assert.Equal(t, model.FolderInbox, got.Folder)
}

func TestSelectFolder(t *testing.T) {
	s := testutil.NewTestStore(t)
	s.ToggleSelection(s.Visible()[0].ID)

	err := s.SelectFolder(context.Background(), model.FolderTrash)
	require.NoError(t, err)

	assert.Equal(t, model.FolderTrash, s.CurrentFolder())
	assert.Zero(t, s.SelectionCount(), "folder switch clears the selection")
	for _, m := range s.Visible() {
		assert.Equal(t, model.FolderTrash, m.Folder)
		assert.True(t, m.IsDeleted)
	}
}

func TestStarredViewSpansFolders(t *testing.T) {
	s := testutil.NewTestStore(t)

	require.NoError(t, s.SelectFolder(context.Background(), model.FolderStarred))
	for _, m := range s.Visible() {
		assert.True(t, m.IsStarred)
	}
}

func TestOpenMessageMarksRead(t *testing.T) {
	s := testutil.NewTestStore(t)

	var target model.Message
	for _, m := range s.Visible() {
		if !m.IsRead {
			target = m
			break
		}
	}
	require.NotEmpty(t, target.ID)

	s.OpenMessage(target.ID)

	got, _ := s.Message(target.ID)
	assert.True(t, got.IsRead)

	cur, ok := s.CurrentMessage()
	require.True(t, ok)
	assert.Equal(t, target.ID, cur.ID)
	assert.True(t, cur.IsRead, "current copy reflects the read flag")
}

func TestSelectMessageDoesNotMarkRead(t *testing.T) {
	s := testutil.NewTestStore(t)

	var target model.Message
	for _, m := range s.Visible() {
		if !m.IsRead {
			target = m
			break
		}
	}
	require.NotEmpty(t, target.ID)

	s.SelectMessage(target.ID)

	got, _ := s.Message(target.ID)
	assert.False(t, got.IsRead)
}

func TestSelectAllVisibleAfterFilter(t *testing.T) {
	s := testutil.NewTestStore(t)
	unread := false
	s.SetFilter(query.Filter{Read: &unread})

	s.SelectAllVisible()

	ids := s.SelectedIDs()
	require.NotEmpty(t, ids)
	assert.Len(t, ids, len(s.Visible()))
	for _, id := range ids {
		m, _ := s.Message(id)
		assert.False(t, m.IsRead, "select-all grabs only the filtered set")
	}
}

func TestSearchNarrowsVisible(t *testing.T) {
	s := testutil.NewTestStore(t)
	term := s.Visible()[0].Subject[:4]

	s.SetSearchTerm(term)

	require.NotEmpty(t, s.Visible())
	s.SetSearchTerm("")
	s.ClearFilters()
	assert.Equal(t, query.DefaultSort(), s.Sort())
}

func TestSortControlsVisibleOrder(t *testing.T) {
	s := testutil.NewTestStore(t)

	s.SetSort(query.Sort{By: query.SortBySize})
	visible := s.Visible()
	for i := 1; i < len(visible); i++ {
		assert.LessOrEqual(t, visible[i-1].Size, visible[i].Size)
	}
}

func TestLabelLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()
	m := s.Visible()[0]

	l := s.CreateLabel(cur.ID, "work", "#ff0000")
	s.AddLabelToMessages([]string{m.ID}, l.ID)

	got, _ := s.Message(m.ID)
	assert.Contains(t, got.LabelIDs, l.ID)

	// Adding twice does not duplicate.
	s.AddLabelToMessages([]string{m.ID}, l.ID)
	got, _ = s.Message(m.ID)
	assert.Len(t, got.LabelIDs, 1)

	s.DeleteLabel(cur.ID, l.ID)
	got, _ = s.Message(m.ID)
	assert.NotContains(t, got.LabelIDs, l.ID)
	assert.Empty(t, s.Labels(cur.ID))
}

func TestSwitchAccountClearsSelection(t *testing.T) {
	s := testutil.NewTestStore(t)
	accounts := s.Accounts()
	if len(accounts) < 2 {
		t.Skip("needs a second account")
	}
	s.ToggleSelection(s.Visible()[0].ID)

	require.NoError(t, s.SwitchAccount(context.Background(), accounts[1].ID))

	cur, _ := s.CurrentAccount()
	assert.Equal(t, accounts[1].ID, cur.ID)
	assert.Zero(t, s.SelectionCount())
	for _, m := range s.Visible() {
		assert.Equal(t, accounts[1].ID, m.AccountID)
	}
}

func TestReloadAdoptsSourceCopy(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()
	m := s.Visible()[0]

	s.ToggleStar([]string{m.ID})
	got, _ := s.Message(m.ID)
	require.Equal(t, !m.IsStarred, got.IsStarred)

	// An explicit reload shows what the source has, local edits and all.
	// The synthetic source is static, so the flag reverts.
	require.NoError(t, s.LoadMessages(context.Background(), cur.ID, model.FolderInbox))
	got, _ = s.Message(m.ID)
	assert.Equal(t, m.IsStarred, got.IsStarred)
}

func TestSyncRefreshKeepsLocalCopy(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()
	m := s.Visible()[0]

	s.ToggleStar([]string{m.ID})

	// Sync reconciles without losing local flag state.
	_, err := s.SyncRefresh(context.Background(), cur.ID)
	require.NoError(t, err)

	got, _ := s.Message(m.ID)
	assert.Equal(t, !m.IsStarred, got.IsStarred)
}

func TestSyncLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()

	s.BeginSync(cur.ID)
	st, ok := s.SyncStatus(cur.ID)
	require.True(t, ok)
	assert.True(t, st.IsSyncing)
	assert.True(t, s.IsAnySyncing())

	s.SetSyncProgress(cur.ID, 250)
	st, _ = s.SyncStatus(cur.ID)
	assert.Equal(t, 100, st.Progress, "progress is clamped")

	delta, err := s.SyncRefresh(context.Background(), cur.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, delta.New, 0)

	s.CompleteSync(cur.ID, delta)
	st, _ = s.SyncStatus(cur.ID)
	assert.False(t, st.IsSyncing)
	assert.Equal(t, 100, st.Progress)
	assert.False(t, s.LastSyncTime().IsZero())
}

func TestCancelSyncKeepsState(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()
	before := len(s.MessagesForAccount(cur.ID))

	s.BeginSync(cur.ID)
	s.CancelSync(cur.ID)

	st, _ := s.SyncStatus(cur.ID)
	assert.False(t, st.IsSyncing)
	assert.Empty(t, st.Error)
	assert.Len(t, s.MessagesForAccount(cur.ID), before, "cancel does not reload")
}

func TestProgressOnIdleAccountIsDropped(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()

	s.SetSyncProgress(cur.ID, 50)
	_, ok := s.SyncStatus(cur.ID)
	assert.False(t, ok)
}

func TestFolderCountsMatchMessages(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()

	inbox := 0
	for _, m := range s.MessagesForAccount(cur.ID) {
		if m.Folder == model.FolderInbox {
			inbox++
		}
	}
	for _, f := range s.Folders(cur.ID) {
		if f.Type == model.FolderInbox {
			assert.Equal(t, inbox, f.Count)
		}
	}
}

func TestCustomFolderLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	cur, _ := s.CurrentAccount()
	m := s.Visible()[0]

	f := s.CreateFolder(cur.ID, "receipts", "")
	s.MoveToFolder([]string{m.ID}, f.Type)

	got, _ := s.Message(m.ID)
	assert.Equal(t, f.Type, got.Folder)

	s.RenameFolder(cur.ID, f.ID, "paperwork")

	s.DeleteFolder(cur.ID, f.ID)
	got, _ = s.Message(m.ID)
	assert.Equal(t, model.FolderArchive, got.Folder, "orphaned messages move to archive")
}
