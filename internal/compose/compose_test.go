package compose

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postium/postium/internal/model"
)

// fakeTransmitter records transmissions and fails on demand.
type fakeTransmitter struct {
	err  error
	sent []model.ComposeDraft
}

func (f *fakeTransmitter) Transmit(ctx context.Context, accountID string, d model.ComposeDraft) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, d)
	return nil
}

func newTestManager(tx *fakeTransmitter) *Manager {
	return NewManager(tx, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sourceMessage() model.Message {
	return model.Message{
		ID:        "msg-1",
		MessageID: "<orig-1@example.com>",
		AccountID: "acct-1",
		Subject:   "Budget",
		Body:      "please review the numbers",
		Date:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		From:      model.Contact{Name: "Alice Chen", Address: "alice@example.com"},
		To: []model.Contact{
			{Address: "me@example.com"},
			{Address: "ben@example.com"},
		},
		Cc:         []model.Contact{{Address: "carla@example.com"}},
		References: []string{"<root@example.com>"},
	}
}

func TestCompose(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})

	d := m.Compose("acct-1")

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "acct-1", d.AccountID)
	assert.Empty(t, d.To)
	assert.Empty(t, d.Subject)

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, d.ID, active.ID)
}

func TestReply(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})

	d := m.Reply("acct-1", sourceMessage())

	assert.Equal(t, []string{"alice@example.com"}, d.To)
	assert.Equal(t, "Re: Budget", d.Subject)
	assert.Equal(t, "<orig-1@example.com>", d.InReplyTo)
	assert.Equal(t, []string{"<root@example.com>", "<orig-1@example.com>"}, d.References)
}

func TestReplyPrefixesUnconditionally(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})
	src := sourceMessage()
	src.Subject = "Re: Budget"

	d := m.Reply("acct-1", src)
	assert.Equal(t, "Re: Re: Budget", d.Subject)
}

func TestReplyAll(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})

	d := m.ReplyAll("acct-1", sourceMessage())

	// Sender, To, and Cc fold into one recipient list in first-seen
	// order; the replying address is kept.
	assert.Equal(t, []string{
		"alice@example.com", "me@example.com", "ben@example.com", "carla@example.com",
	}, d.To)
	assert.Empty(t, d.Cc)
	assert.Equal(t, "Re: Budget", d.Subject)
	assert.Equal(t, "<orig-1@example.com>", d.InReplyTo)
}

func TestReplyAllDeduplicates(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})
	src := sourceMessage()
	src.To = append(src.To, model.Contact{Address: "alice@example.com"})
	src.Cc = append(src.Cc, model.Contact{Address: "ben@example.com"})

	d := m.ReplyAll("acct-1", src)

	assert.Equal(t, []string{
		"alice@example.com", "me@example.com", "ben@example.com", "carla@example.com",
	}, d.To)
	assert.Empty(t, d.Cc)
}

func TestForward(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})

	d := m.Forward("acct-1", sourceMessage())

	assert.Equal(t, "Fwd: Budget", d.Subject)
	assert.Empty(t, d.To)
	assert.Contains(t, d.Body, "---------- Forwarded message ----------")
	assert.Contains(t, d.Body, "From: Alice Chen")
	assert.Contains(t, d.Body, "Subject: Budget")
	assert.Contains(t, d.Body, "please review the numbers")
}

func TestUpdate(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})
	d := m.Compose("acct-1")

	subject := "hello"
	to := []string{"x@example.com"}
	err := m.Update(d.ID, DraftUpdate{Subject: &subject, To: &to})
	require.NoError(t, err)

	got, ok := m.Get(d.ID)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Subject)
	assert.Equal(t, to, got.To)
	// Fields without an edit keep their value.
	assert.Empty(t, got.Cc)

	err = m.Update("nope", DraftUpdate{Subject: &subject})
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestSave(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})
	d := m.Compose("acct-1")

	require.NoError(t, m.Save(d.ID))
	got, _ := m.Get(d.ID)
	assert.True(t, got.IsDraft)

	// Saving twice is harmless.
	require.NoError(t, m.Save(d.ID))

	assert.ErrorIs(t, m.Save("nope"), ErrDraftNotFound)
}

func TestSendRemovesDraftOnSuccess(t *testing.T) {
	tx := &fakeTransmitter{}
	m := newTestManager(tx)
	d := m.Compose("acct-1")
	to := []string{"x@example.com"}
	require.NoError(t, m.Update(d.ID, DraftUpdate{To: &to}))

	err := m.Send(context.Background(), d.ID)
	require.NoError(t, err)

	require.Len(t, tx.sent, 1)
	assert.Equal(t, to, tx.sent[0].To)
	_, ok := m.Get(d.ID)
	assert.False(t, ok)
	assert.Zero(t, m.Count())
}

func TestSendKeepsDraftOnFailure(t *testing.T) {
	tx := &fakeTransmitter{err: errors.New("connection refused")}
	m := newTestManager(tx)
	d := m.Compose("acct-1")
	body := "typed with care"
	require.NoError(t, m.Update(d.ID, DraftUpdate{Body: &body}))

	err := m.Send(context.Background(), d.ID)
	require.Error(t, err)

	got, ok := m.Get(d.ID)
	require.True(t, ok)
	assert.Equal(t, "typed with care", got.Body)
}

func TestDiscard(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})
	d := m.Compose("acct-1")

	m.Discard(d.ID)
	_, ok := m.Get(d.ID)
	assert.False(t, ok)
	_, ok = m.Active()
	assert.False(t, ok)

	// Discarding an unknown id is a no-op.
	m.Discard("nope")
}

func TestListKeepsCreationOrder(t *testing.T) {
	m := newTestManager(&fakeTransmitter{})
	d1 := m.Compose("acct-1")
	d2 := m.Compose("acct-1")
	d3 := m.Compose("acct-2")

	list := m.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{d1.ID, d2.ID, d3.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, m.SetActive(d2.ID))
	active, _ := m.Active()
	assert.Equal(t, d2.ID, active.ID)
}
