// Package imap backs the store with real mailboxes over IMAP. Each
// query opens a short-lived connection, mirroring how webmail clients
// poll rather than hold sessions open across a TUI's lifetime.
package imap

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/postium/postium/internal/credential"
	"github.com/postium/postium/internal/model"
)

// fetchWindow bounds how far back envelope fetches reach.
const fetchWindow = 30 * 24 * time.Hour

// mailboxLimit caps envelopes fetched per mailbox per load.
const mailboxLimit = 100

// mailboxFor maps lifecycle folders to conventional IMAP mailbox
// names. Virtual views have no mailbox; they are filtered client-side.
var mailboxFor = map[model.Folder]string{
	model.FolderInbox:   "INBOX",
	model.FolderSent:    "Sent",
	model.FolderDrafts:  "Drafts",
	model.FolderTrash:   "Trash",
	model.FolderSpam:    "Junk",
	model.FolderArchive: "Archive",
}

// fetchOrder lists the mailboxes walked for an all-mail load.
var fetchOrder = []model.Folder{
	model.FolderInbox, model.FolderSent, model.FolderDrafts,
	model.FolderTrash, model.FolderSpam, model.FolderArchive,
}

// Source serves mail for the configured accounts over IMAP.
type Source struct {
	cfgs map[string]model.AccountConfig // keyed by account id
	ids  []string
	log  *slog.Logger
}

// New builds a source from account configs. The account id is the
// mailbox address; it is stable across runs so cached state and
// keyring entries line up.
func New(cfgs []model.AccountConfig, log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	s := &Source{
		cfgs: make(map[string]model.AccountConfig, len(cfgs)),
		log:  log,
	}
	for _, c := range cfgs {
		s.cfgs[c.Address] = c
		s.ids = append(s.ids, c.Address)
	}
	return s
}

// Accounts returns the configured accounts.
func (s *Source) Accounts(ctx context.Context) ([]model.Account, error) {
	out := make([]model.Account, 0, len(s.ids))
	for _, id := range s.ids {
		c := s.cfgs[id]
		out = append(out, model.Account{
			ID:              c.Address,
			Address:         c.Address,
			Name:            c.Name,
			Provider:        model.Provider(c.Provider),
			IsDefault:       c.IsDefault,
			IsActive:        true,
			SyncIntervalSec: c.SyncIntervalSec,
		})
	}
	return out, nil
}

// connect dials and authenticates a session for one account. The
// password comes from the system keyring, never from the config file.
func (s *Source) connect(accountID string) (*imapclient.Client, error) {
	cfg, ok := s.cfgs[accountID]
	if !ok {
		return nil, fmt.Errorf("unknown account %s", accountID)
	}

	password, err := credential.Get(credential.IMAPKey(cfg.Address))
	if err != nil {
		return nil, fmt.Errorf("loading password for %s: %w", cfg.Address, err)
	}

	addr := cfg.IMAPHost + ":" + strconv.Itoa(cfg.IMAPPort)

	var client *imapclient.Client
	if cfg.IMAPSecurity == "starttls" {
		client, err = imapclient.DialStartTLS(addr, nil)
	} else {
		client, err = imapclient.DialTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	username := cfg.Username
	if username == "" {
		username = cfg.Address
	}
	if err := client.Login(username, password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authenticating %s: %w", cfg.Address, err)
	}
	return client, nil
}

// Messages returns an account's messages for one folder. Lifecycle
// folders fetch their mailbox; "all" walks every mapped mailbox;
// starred and important fetch everything and filter by flag.
func (s *Source) Messages(ctx context.Context, accountID string, folder model.Folder) ([]model.Message, error) {
	client, err := s.connect(accountID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	switch folder {
	case model.FolderAll, model.FolderStarred, model.FolderImportant:
		var all []model.Message
		for _, f := range fetchOrder {
			msgs, err := s.fetchMailbox(client, accountID, f)
			if err != nil {
				s.log.Warn("skipping mailbox", "account_id", accountID, "folder", f, "error", err)
				continue
			}
			all = append(all, msgs...)
		}
		switch folder {
		case model.FolderStarred:
			return filterFlag(all, func(m model.Message) bool { return m.IsStarred }), nil
		case model.FolderImportant:
			return filterFlag(all, func(m model.Message) bool { return m.IsImportant }), nil
		}
		return all, nil
	default:
		return s.fetchMailbox(client, accountID, folder)
	}
}

func filterFlag(msgs []model.Message, keep func(model.Message) bool) []model.Message {
	var out []model.Message
	for _, m := range msgs {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// fetchMailbox pulls recent envelopes from one mailbox.
func (s *Source) fetchMailbox(client *imapclient.Client, accountID string, folder model.Folder) ([]model.Message, error) {
	mailbox, ok := mailboxFor[folder]
	if !ok {
		return nil, fmt.Errorf("no mailbox for folder %s", folder)
	}

	if _, err := client.Select(mailbox, nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", mailbox, err)
	}

	criteria := &imap.SearchCriteria{
		Since: time.Now().Add(-fetchWindow),
	}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", mailbox, err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > mailboxLimit {
		uids = uids[len(uids)-mailboxLimit:]
	}

	fetchOpts := &imap.FetchOptions{
		Envelope:   true,
		Flags:      true,
		UID:        true,
		RFC822Size: true,
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var out []model.Message
	for {
		raw := fetchCmd.Next()
		if raw == nil {
			break
		}
		buf, err := raw.Collect()
		if err != nil {
			continue
		}
		out = append(out, messageFromBuffer(buf, accountID, folder))
	}

	if err := fetchCmd.Close(); err != nil {
		return out, fmt.Errorf("fetching %s: %w", mailbox, err)
	}
	return out, nil
}

// Folders reports the system mailboxes with message counts taken from
// a STATUS round per mailbox.
func (s *Source) Folders(ctx context.Context, accountID string) ([]model.FolderInfo, error) {
	client, err := s.connect(accountID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	statusOpts := &imap.StatusOptions{NumMessages: true, NumUnseen: true}

	var out []model.FolderInfo
	for _, f := range model.SystemFolders() {
		info := model.FolderInfo{
			ID:        string(f),
			AccountID: accountID,
			Name:      displayName(f),
			Type:      f,
			IsSystem:  true,
		}
		// Virtual views have no mailbox; the store recomputes their
		// counts from the cached message set.
		if mailbox, ok := mailboxFor[f]; ok {
			if data, err := client.Status(mailbox, statusOpts).Wait(); err == nil {
				if data.NumMessages != nil {
					info.Count = int(*data.NumMessages)
				}
				if data.NumUnseen != nil {
					info.UnreadCount = int(*data.NumUnseen)
				}
			}
		}
		out = append(out, info)
	}
	return out, nil
}

func displayName(f model.Folder) string {
	switch f {
	case model.FolderInbox:
		return "Inbox"
	case model.FolderSent:
		return "Sent"
	case model.FolderDrafts:
		return "Drafts"
	case model.FolderTrash:
		return "Trash"
	case model.FolderSpam:
		return "Spam"
	case model.FolderArchive:
		return "Archive"
	case model.FolderStarred:
		return "Starred"
	case model.FolderImportant:
		return "Important"
	case model.FolderAll:
		return "All Mail"
	}
	return string(f)
}

// messageFromBuffer maps a fetched envelope onto the message model.
// Bodies are not fetched on list loads; the detail view shows the
// preview until a full fetch lands.
func messageFromBuffer(buf *imapclient.FetchMessageBuffer, accountID string, folder model.Folder) model.Message {
	m := model.Message{
		ID:        fmt.Sprintf("%s/%s/%d", accountID, folder, buf.UID),
		AccountID: accountID,
		Folder:    folder,
		IsDraft:   folder == model.FolderDrafts,
		IsDeleted: folder == model.FolderTrash,
	}

	if buf.Envelope != nil {
		m.MessageID = buf.Envelope.MessageID
		m.Subject = buf.Envelope.Subject
		m.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			m.From = contactFromAddress(buf.Envelope.From[0])
		}
		for _, a := range buf.Envelope.To {
			m.To = append(m.To, contactFromAddress(a))
		}
		for _, a := range buf.Envelope.Cc {
			m.Cc = append(m.Cc, contactFromAddress(a))
		}
	}

	m.Size = buf.RFC822Size

	for _, flag := range buf.Flags {
		switch flag {
		case imap.FlagSeen:
			m.IsRead = true
		case imap.FlagFlagged:
			m.IsStarred = true
		case imap.FlagDraft:
			m.IsDraft = true
		case imap.FlagDeleted:
			m.IsDeleted = true
		case imap.FlagImportant:
			m.IsImportant = true
		}
	}
	return m
}

func contactFromAddress(a imap.Address) model.Contact {
	return model.Contact{
		Name:    a.Name,
		Address: a.Addr(),
	}
}
