package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/postium/postium/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func sampleMessages() []model.Message {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.Message{
		{
			ID: "m1", Folder: model.FolderInbox,
			From:    model.Contact{Name: "Alice Chen", Address: "alice.chen@example.com"},
			Subject: "Budget review", Body: "numbers for Q2",
			Date: base, Size: 500, IsRead: false, IsStarred: true,
		},
		{
			ID: "m2", Folder: model.FolderInbox,
			From:    model.Contact{Name: "Ben Diaz", Address: "ben.diaz@example.com"},
			Subject: "Project update", Body: "the budget looks fine",
			Date: base.Add(time.Hour), Size: 2000, IsRead: true, IsImportant: true,
			HasAttachments: true, LabelIDs: []string{"l1"},
		},
		{
			ID: "m3", Folder: model.FolderSent,
			From:    model.Contact{Name: "Carla Evans", Address: "carla.evans@example.com"},
			Subject: "Re: Budget review", Body: "looks good to me",
			Date: base.Add(2 * time.Hour), Size: 300, IsRead: true, IsStarred: true,
		},
		{
			ID: "m4", Folder: model.FolderTrash,
			From:    model.Contact{Name: "Daniel Garcia", Address: "daniel.garcia@example.com"},
			Subject: "Old invoice", Body: "archived",
			Date: base.Add(3 * time.Hour), Size: 100, IsRead: true, IsDeleted: true,
		},
	}
}

func TestVisibleFolderSelection(t *testing.T) {
	msgs := sampleMessages()

	t.Run("lifecycle folder matches exactly", func(t *testing.T) {
		out := Visible(msgs, model.FolderInbox, "", Filter{}, DefaultSort())
		assert.Len(t, out, 2)
		for _, m := range out {
			assert.Equal(t, model.FolderInbox, m.Folder)
		}
	})

	t.Run("starred view spans folders", func(t *testing.T) {
		out := Visible(msgs, model.FolderStarred, "", Filter{}, DefaultSort())
		assert.Len(t, out, 2)
		ids := []string{out[0].ID, out[1].ID}
		assert.ElementsMatch(t, []string{"m1", "m3"}, ids)
	})

	t.Run("all view includes trash", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{}, DefaultSort())
		assert.Len(t, out, 4)
	})
}

func TestVisibleSearch(t *testing.T) {
	msgs := sampleMessages()

	t.Run("matches subject case-insensitively", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "BUDGET", Filter{}, DefaultSort())
		assert.Len(t, out, 3) // m1 subject, m2 body, m3 subject
	})

	t.Run("matches sender name", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "carla", Filter{}, DefaultSort())
		assert.Len(t, out, 1)
		assert.Equal(t, "m3", out[0].ID)
	})

	t.Run("no match yields empty list", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "zzzzz", Filter{}, DefaultSort())
		assert.Empty(t, out)
	})
}

func TestVisibleFilters(t *testing.T) {
	msgs := sampleMessages()

	t.Run("unread only", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{Read: boolPtr(false)}, DefaultSort())
		assert.Len(t, out, 1)
		assert.Equal(t, "m1", out[0].ID)
	})

	t.Run("predicates combine as conjunction", func(t *testing.T) {
		f := Filter{Read: boolPtr(true), Starred: boolPtr(true)}
		out := Visible(msgs, model.FolderAll, "", f, DefaultSort())
		assert.Len(t, out, 1)
		assert.Equal(t, "m3", out[0].ID)
	})

	t.Run("size range", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{MinSize: 400, MaxSize: 1000}, DefaultSort())
		assert.Len(t, out, 1)
		assert.Equal(t, "m1", out[0].ID)
	})

	t.Run("date range", func(t *testing.T) {
		from := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
		to := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
		out := Visible(msgs, model.FolderAll, "", Filter{DateFrom: &from, DateTo: &to}, DefaultSort())
		assert.Len(t, out, 2)
	})

	t.Run("any label matches", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{LabelIDs: []string{"l1", "l9"}}, DefaultSort())
		assert.Len(t, out, 1)
		assert.Equal(t, "m2", out[0].ID)
	})

	t.Run("attachment filter", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{HasAttachment: boolPtr(true)}, DefaultSort())
		assert.Len(t, out, 1)
		assert.Equal(t, "m2", out[0].ID)
	})
}

func TestVisibleSort(t *testing.T) {
	msgs := sampleMessages()

	t.Run("default is date descending", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{}, DefaultSort())
		for i := 1; i < len(out); i++ {
			assert.False(t, out[i-1].Date.Before(out[i].Date))
		}
	})

	t.Run("sender ascending", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{}, Sort{By: SortBySender})
		assert.Equal(t, "m1", out[0].ID)
		assert.Equal(t, "m4", out[3].ID)
	})

	t.Run("size ascending", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{}, Sort{By: SortBySize})
		assert.Equal(t, "m4", out[0].ID)
		assert.Equal(t, "m2", out[3].ID)
	})

	t.Run("importance descending puts important first", func(t *testing.T) {
		out := Visible(msgs, model.FolderAll, "", Filter{}, Sort{By: SortByImportance, Desc: true})
		assert.Equal(t, "m2", out[0].ID)
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		dup := []model.Message{
			{ID: "a", Folder: model.FolderInbox, Size: 10},
			{ID: "b", Folder: model.FolderInbox, Size: 10},
			{ID: "c", Folder: model.FolderInbox, Size: 10},
		}
		out := Visible(dup, model.FolderInbox, "", Filter{}, Sort{By: SortBySize})
		assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].ID, out[1].ID, out[2].ID})
	})
}

func TestVisibleIdempotent(t *testing.T) {
	msgs := sampleMessages()
	f := Filter{Read: boolPtr(true)}
	s := Sort{By: SortBySubject}

	once := Visible(msgs, model.FolderAll, "budget", f, s)
	twice := Visible(once, model.FolderAll, "budget", f, s)
	assert.Equal(t, once, twice)
}

func TestVisibleDoesNotMutateInput(t *testing.T) {
	msgs := sampleMessages()
	before := make([]model.Message, len(msgs))
	copy(before, msgs)

	Visible(msgs, model.FolderAll, "", Filter{}, Sort{By: SortBySize})
	assert.Equal(t, before, msgs)
}

func TestFilterIsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Read: boolPtr(false)}.IsZero())
	assert.False(t, Filter{MinSize: 1}.IsZero())
	assert.False(t, Filter{LabelIDs: []string{"l1"}}.IsZero())
}
