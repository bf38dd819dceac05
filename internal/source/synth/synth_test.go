package synth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postium/postium/internal/model"
)

func TestSameSeedSameMail(t *testing.T) {
	ctx := context.Background()
	a := New(7)
	b := New(7)

	accA, err := a.Accounts(ctx)
	require.NoError(t, err)
	accB, err := b.Accounts(ctx)
	require.NoError(t, err)
	require.Equal(t, len(accA), len(accB))

	for i := range accA {
		assert.Equal(t, accA[i].ID, accB[i].ID)
		assert.Equal(t, accA[i].Address, accB[i].Address)

		msgsA, err := a.Messages(ctx, accA[i].ID, model.FolderAll)
		require.NoError(t, err)
		msgsB, err := b.Messages(ctx, accB[i].ID, model.FolderAll)
		require.NoError(t, err)
		assert.Equal(t, msgsA, msgsB)
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	ctx := context.Background()
	accA, _ := New(1).Accounts(ctx)
	accB, _ := New(2).Accounts(ctx)
	assert.NotEqual(t, accA[0].ID, accB[0].ID)
}

func TestAccountShape(t *testing.T) {
	accounts, err := New(7).Accounts(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(accounts), 2)
	assert.LessOrEqual(t, len(accounts), 3)
	assert.True(t, accounts[0].IsDefault, "first account is the default")
	for i, a := range accounts {
		if i > 0 {
			assert.False(t, a.IsDefault)
		}
		assert.True(t, a.IsActive)
		assert.NotEmpty(t, a.Address)
	}
}

func TestFolderMix(t *testing.T) {
	ctx := context.Background()
	s := New(7)
	accounts, _ := s.Accounts(ctx)

	want := map[model.Folder]int{
		model.FolderInbox:  30,
		model.FolderSent:   20,
		model.FolderDrafts: 5,
		model.FolderTrash:  10,
		model.FolderSpam:   5,
	}

	for _, a := range accounts {
		for folder, count := range want {
			msgs, err := s.Messages(ctx, a.ID, folder)
			require.NoError(t, err)
			assert.Len(t, msgs, count, "folder %s", folder)
		}

		all, err := s.Messages(ctx, a.ID, model.FolderAll)
		require.NoError(t, err)
		assert.Len(t, all, 70, "all view includes trash")
	}
}

func TestMessageInvariants(t *testing.T) {
	ctx := context.Background()
	s := New(7)
	accounts, _ := s.Accounts(ctx)

	for _, a := range accounts {
		all, _ := s.Messages(ctx, a.ID, model.FolderAll)
		for _, m := range all {
			assert.Equal(t, a.ID, m.AccountID)
			assert.NotEmpty(t, m.ID)
			assert.NotEmpty(t, m.Subject)

			if m.Folder == model.FolderSent {
				assert.True(t, m.IsRead, "sent mail is always read")
			}
			assert.Equal(t, m.Folder == model.FolderDrafts, m.IsDraft)
			assert.Equal(t, m.Folder == model.FolderTrash, m.IsDeleted)
			assert.Equal(t, len(m.Attachments) > 0, m.HasAttachments)
		}
	}
}

func TestVirtualViewsSelectByFlag(t *testing.T) {
	ctx := context.Background()
	s := New(7)
	accounts, _ := s.Accounts(ctx)

	starred, err := s.Messages(ctx, accounts[0].ID, model.FolderStarred)
	require.NoError(t, err)
	for _, m := range starred {
		assert.True(t, m.IsStarred)
	}

	important, err := s.Messages(ctx, accounts[0].ID, model.FolderImportant)
	require.NoError(t, err)
	for _, m := range important {
		assert.True(t, m.IsImportant)
	}
}

func TestFolderCountsAreTrue(t *testing.T) {
	ctx := context.Background()
	s := New(7)
	accounts, _ := s.Accounts(ctx)

	folders, err := s.Folders(ctx, accounts[0].ID)
	require.NoError(t, err)
	require.Len(t, folders, 8)

	for _, f := range folders {
		msgs, _ := s.Messages(ctx, accounts[0].ID, f.Type)
		assert.Equal(t, len(msgs), f.Count, "folder %s", f.Name)

		unread := 0
		for _, m := range msgs {
			if !m.IsRead {
				unread++
			}
		}
		assert.Equal(t, unread, f.UnreadCount, "folder %s", f.Name)
		assert.True(t, f.IsSystem)
	}
}

func TestThreading(t *testing.T) {
	ctx := context.Background()

	// Chains are rolled per account, so sample a few seeds.
	multi := 0
	for seed := int64(1); seed <= 5 && multi == 0; seed++ {
		s := New(seed)
		accounts, _ := s.Accounts(ctx)

		threads := make(map[string]int)
		for _, a := range accounts {
			inbox, _ := s.Messages(ctx, a.ID, model.FolderInbox)
			for _, m := range inbox {
				threads[m.ThreadID]++
			}
		}
		for id, n := range threads {
			if n > 1 {
				multi++

				// Members after the head carry the reply chain headers.
				for _, a := range accounts {
					inbox, _ := s.Messages(ctx, a.ID, model.FolderInbox)
					for _, m := range inbox {
						if m.ThreadID == id && m.InReplyTo != "" {
							assert.NotEmpty(t, m.References)
						}
					}
				}
			}
		}
	}
	assert.Greater(t, multi, 0, "some inbox messages form reply chains")
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	s := New(7)
	accounts, _ := s.Accounts(ctx)
	id := accounts[0].ID

	before, _ := s.Messages(ctx, id, model.FolderInbox)

	require.NoError(t, s.Refresh(ctx, id))

	after, _ := s.Messages(ctx, id, model.FolderInbox)
	added := len(after) - len(before)
	assert.GreaterOrEqual(t, added, 0)
	assert.LessOrEqual(t, added, 9)

	for _, m := range after[len(before):] {
		assert.Equal(t, model.FolderInbox, m.Folder)
		assert.False(t, m.IsRead, "arriving mail is unread")
	}
}

func TestRefreshUnknownAccount(t *testing.T) {
	err := New(7).Refresh(context.Background(), "nope")
	assert.Error(t, err)
}
