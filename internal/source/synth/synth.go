// Package synth is a deterministic in-process data source used for
// development and tests. A seed fully determines the generated
// accounts and mailboxes, so two runs with the same seed see the same
// mail.
package synth

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postium/postium/internal/model"
)

var (
	firstNames = []string{
		"Alice", "Ben", "Carla", "Daniel", "Elena", "Frank", "Grace",
		"Henry", "Iris", "Jonas", "Karen", "Leo", "Mona", "Nathan",
		"Olga", "Peter", "Quinn", "Rosa", "Sam", "Tara",
	}
	lastNames = []string{
		"Anderson", "Brooks", "Chen", "Diaz", "Evans", "Fischer",
		"Garcia", "Huang", "Ivanov", "Jensen", "Kim", "Lopez",
		"Miller", "Novak", "Olsen", "Park", "Reyes", "Schmidt",
		"Tanaka", "Weber",
	}
	domains = []string{
		"example.com", "mailbox.org", "fastmail.dev", "postbox.net",
		"inboxly.io",
	}
	subjectWords = []string{
		"meeting", "notes", "project", "update", "budget", "review",
		"schedule", "invoice", "proposal", "report", "followup",
		"quarterly", "draft", "agenda", "summary", "planning",
		"release", "feedback", "contract", "reminder",
	}
	bodyWords = []string{
		"the", "team", "will", "discuss", "next", "steps", "before",
		"our", "deadline", "and", "share", "results", "with", "every",
		"stakeholder", "please", "review", "attached", "document",
		"then", "reply", "by", "friday", "so", "we", "can", "finalize",
		"details", "for", "upcoming", "milestone", "thanks", "again",
		"looking", "forward", "to", "your", "thoughts", "on", "this",
	}
	attachmentKinds = []struct {
		ext  string
		mime string
	}{
		{"pdf", "application/pdf"},
		{"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"jpg", "image/jpeg"},
		{"png", "image/png"},
		{"zip", "application/zip"},
	}
	accountColors = []string{"#4285f4", "#ea4335", "#fbbc04", "#34a853", "#9334e6"}
)

// folder mix generated per account at startup.
var seedCounts = []struct {
	folder model.Folder
	count  int
}{
	{model.FolderInbox, 30},
	{model.FolderSent, 20},
	{model.FolderDrafts, 5},
	{model.FolderTrash, 10},
	{model.FolderSpam, 5},
}

// Source generates and serves synthetic mail. It implements the data
// source interface plus on-demand refresh.
type Source struct {
	mu       sync.Mutex
	rng      *rand.Rand
	accounts []model.Account
	msgs     map[string][]model.Message
	now      time.Time
}

// New builds a source seeded with seed: two to three accounts, each
// with a populated mailbox.
func New(seed int64) *Source {
	s := &Source{
		rng:  rand.New(rand.NewSource(seed)),
		msgs: make(map[string][]model.Message),
		now:  time.Now(),
	}
	s.populate()
	return s
}

func (s *Source) populate() {
	n := 2 + s.rng.Intn(2)
	for i := 0; i < n; i++ {
		a := s.genAccount()
		a.IsDefault = i == 0
		s.accounts = append(s.accounts, a)

		var msgs []model.Message
		for _, sc := range seedCounts {
			for j := 0; j < sc.count; j++ {
				msgs = append(msgs, s.genMessage(a.ID, sc.folder))
			}
		}
		s.threadSome(msgs)
		s.msgs[a.ID] = msgs
	}
}

// threadSome links a few inbox messages into reply chains so thread
// selection has something to find.
func (s *Source) threadSome(msgs []model.Message) {
	var inbox []int
	for i := range msgs {
		if msgs[i].Folder == model.FolderInbox {
			inbox = append(inbox, i)
		}
	}
	for len(inbox) >= 3 && s.rng.Float64() < 0.7 {
		size := 2 + s.rng.Intn(3)
		if size > len(inbox) {
			size = len(inbox)
		}
		threadID := s.uuid()
		var refs []string
		for k := 0; k < size; k++ {
			m := &msgs[inbox[k]]
			m.ThreadID = threadID
			if k > 0 {
				m.InReplyTo = refs[len(refs)-1]
				m.References = append([]string(nil), refs...)
			}
			refs = append(refs, m.MessageID)
		}
		inbox = inbox[size:]
	}
}

func (s *Source) uuid() string {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (s *Source) pick(list []string) string {
	return list[s.rng.Intn(len(list))]
}

func (s *Source) genContact() model.Contact {
	first := s.pick(firstNames)
	last := s.pick(lastNames)
	return model.Contact{
		Name:    first + " " + last,
		Address: strings.ToLower(first) + "." + strings.ToLower(last) + "@" + s.pick(domains),
	}
}

func (s *Source) genAccount() model.Account {
	c := s.genContact()
	providers := []model.Provider{model.ProviderGmail, model.ProviderOutlook, model.ProviderYahoo}
	return model.Account{
		ID:              s.uuid(),
		Address:         c.Address,
		Name:            c.Name,
		Provider:        providers[s.rng.Intn(len(providers))],
		IsActive:        true,
		Color:           accountColors[s.rng.Intn(len(accountColors))],
		SyncIntervalSec: 300,
	}
}

func (s *Source) genSubject() string {
	n := 3 + s.rng.Intn(4)
	words := make([]string, n)
	for i := range words {
		words[i] = s.pick(subjectWords)
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

func (s *Source) genSentence(min, max int) string {
	n := min + s.rng.Intn(max-min+1)
	words := make([]string, n)
	for i := range words {
		words[i] = s.pick(bodyWords)
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ") + "."
}

func (s *Source) genBody() string {
	paragraphs := 1 + s.rng.Intn(5)
	parts := make([]string, paragraphs)
	for i := range parts {
		parts[i] = s.genSentence(8, 20)
	}
	return strings.Join(parts, "\n\n")
}

func (s *Source) genAttachment() model.Attachment {
	kind := attachmentKinds[s.rng.Intn(len(attachmentKinds))]
	return model.Attachment{
		ID:       s.uuid(),
		Filename: fmt.Sprintf("%s-%s.%s", s.pick(subjectWords), s.pick(subjectWords), kind.ext),
		Size:     int64(1024 + s.rng.Intn(10*1024*1024)),
		MIMEType: kind.mime,
	}
}

func (s *Source) genMessage(accountID string, folder model.Folder) model.Message {
	hasAttachments := s.rng.Float64() < 0.3
	isRead := folder == model.FolderSent || s.rng.Float64() < 0.6
	body := s.genBody()

	nTo := 1 + s.rng.Intn(3)
	to := make([]model.Contact, nTo)
	for i := range to {
		to[i] = s.genContact()
	}
	var cc []model.Contact
	if s.rng.Float64() < 0.2 {
		cc = make([]model.Contact, 1+s.rng.Intn(2))
		for i := range cc {
			cc[i] = s.genContact()
		}
	}

	var attachments []model.Attachment
	if hasAttachments {
		attachments = make([]model.Attachment, 1+s.rng.Intn(3))
		for i := range attachments {
			attachments[i] = s.genAttachment()
		}
	}

	m := model.Message{
		ID:             s.uuid(),
		MessageID:      fmt.Sprintf("<%s@%s>", s.uuid(), s.pick(domains)),
		AccountID:      accountID,
		Folder:         folder,
		From:           s.genContact(),
		To:             to,
		Cc:             cc,
		Subject:        s.genSubject(),
		Body:           body,
		Preview:        s.genSentence(10, 20),
		Date:           s.now.Add(-time.Duration(s.rng.Intn(30*24*3600)) * time.Second),
		Size:           int64(len(body)),
		IsRead:         isRead,
		IsStarred:      s.rng.Float64() < 0.1,
		IsFlagged:      s.rng.Float64() < 0.05,
		IsImportant:    s.rng.Float64() < 0.15,
		IsDraft:        folder == model.FolderDrafts,
		IsDeleted:      folder == model.FolderTrash,
		HasAttachments: hasAttachments,
		Attachments:    attachments,
		ThreadID:       s.uuid(),
	}
	for _, a := range attachments {
		m.Size += a.Size
	}
	return m
}

// Accounts returns the generated accounts.
func (s *Source) Accounts(ctx context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out, nil
}

// Messages returns an account's messages for one folder. Virtual views
// select across folders by flag; "all" includes everything, trash too.
func (s *Source) Messages(ctx context.Context, accountID string, folder model.Folder) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Message
	for _, m := range s.msgs[accountID] {
		switch folder {
		case model.FolderAll:
			out = append(out, m)
		case model.FolderStarred:
			if m.IsStarred {
				out = append(out, m)
			}
		case model.FolderImportant:
			if m.IsImportant {
				out = append(out, m)
			}
		default:
			if m.Folder == folder {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// Folders returns the system folder set with counts computed from the
// actual generated messages.
func (s *Source) Folders(ctx context.Context, accountID string) ([]model.FolderInfo, error) {
	types := []struct {
		folder model.Folder
		name   string
	}{
		{model.FolderInbox, "Inbox"},
		{model.FolderSent, "Sent"},
		{model.FolderDrafts, "Drafts"},
		{model.FolderStarred, "Starred"},
		{model.FolderImportant, "Important"},
		{model.FolderSpam, "Spam"},
		{model.FolderTrash, "Trash"},
		{model.FolderAll, "All Mail"},
	}

	out := make([]model.FolderInfo, 0, len(types))
	for _, t := range types {
		msgs, _ := s.Messages(ctx, accountID, t.folder)
		unread := 0
		for _, m := range msgs {
			if !m.IsRead {
				unread++
			}
		}
		out = append(out, model.FolderInfo{
			ID:          string(t.folder),
			AccountID:   accountID,
			Name:        t.name,
			Type:        t.folder,
			IsSystem:    true,
			Count:       len(msgs),
			UnreadCount: unread,
		})
	}
	return out, nil
}

// Refresh drops up to nine new unread messages into the account's
// inbox, simulating mail arriving between syncs.
func (s *Source) Refresh(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.msgs[accountID]; !ok {
		return fmt.Errorf("refresh: unknown account %s", accountID)
	}

	n := s.rng.Intn(10)
	for i := 0; i < n; i++ {
		m := s.genMessage(accountID, model.FolderInbox)
		m.IsRead = false
		m.Date = time.Now()
		s.msgs[accountID] = append(s.msgs[accountID], m)
	}
	return nil
}
