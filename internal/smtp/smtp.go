// Package smtp delivers finished drafts over SMTP. Port 465 gets an
// implicit TLS connection; anything else dials plain and upgrades with
// STARTTLS before authenticating.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/postium/postium/internal/credential"
	"github.com/postium/postium/internal/model"
)

// Client sends mail for the configured accounts. It implements the
// compose transmitter interface.
type Client struct {
	cfgs map[string]model.AccountConfig // keyed by account id
	log  *slog.Logger
}

// New builds a client from account configs keyed by address.
func New(cfgs []model.AccountConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		cfgs: make(map[string]model.AccountConfig, len(cfgs)),
		log:  log,
	}
	for _, cfg := range cfgs {
		c.cfgs[cfg.Address] = cfg
	}
	return c
}

// Transmit assembles the draft into an RFC 5322 message and submits it
// through the account's SMTP server.
func (c *Client) Transmit(ctx context.Context, accountID string, draft model.ComposeDraft) error {
	cfg, ok := c.cfgs[accountID]
	if !ok {
		return fmt.Errorf("unknown account %s", accountID)
	}
	if len(draft.To) == 0 {
		return fmt.Errorf("draft %s has no recipients", draft.ID)
	}

	password, err := credential.Get(credential.SMTPKey(cfg.Address))
	if err != nil {
		// Most providers share one password for IMAP and SMTP.
		password, err = credential.Get(credential.IMAPKey(cfg.Address))
		if err != nil {
			return fmt.Errorf("loading password for %s: %w", cfg.Address, err)
		}
	}

	raw, err := buildMessage(cfg, draft)
	if err != nil {
		return fmt.Errorf("assembling message: %w", err)
	}

	username := cfg.Username
	if username == "" {
		username = cfg.Address
	}

	recipients := make([]string, 0, len(draft.To)+len(draft.Cc)+len(draft.Bcc))
	recipients = append(recipients, draft.To...)
	recipients = append(recipients, draft.Cc...)
	recipients = append(recipients, draft.Bcc...)

	c.log.Info("sending message", "account_id", accountID,
		"recipients", len(recipients), "subject", draft.Subject)

	if err := c.submit(cfg, username, password, recipients, raw); err != nil {
		return err
	}
	return nil
}

// submit runs the SMTP session: connect, authenticate, MAIL/RCPT/DATA.
func (c *Client) submit(cfg model.AccountConfig, username, password string, recipients []string, raw []byte) error {
	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	tlsCfg := &tls.Config{ServerName: cfg.SMTPHost}

	var client *smtp.Client
	if cfg.SMTPPort == 465 {
		conn, err := tls.Dial("tcp", addr, tlsCfg)
		if err != nil {
			return fmt.Errorf("connecting to SMTP %s: %w", addr, err)
		}
		client, err = smtp.NewClient(conn, cfg.SMTPHost)
		if err != nil {
			conn.Close()
			return fmt.Errorf("starting SMTP session: %w", err)
		}
	} else {
		var err error
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("connecting to SMTP %s: %w", addr, err)
		}
		if err := client.StartTLS(tlsCfg); err != nil {
			client.Close()
			return fmt.Errorf("starting TLS: %w", err)
		}
	}
	defer client.Close()

	auth := smtp.PlainAuth("", username, password, cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authenticating %s: %w", cfg.Address, err)
	}

	if err := client.Mail(cfg.Address); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("setting recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("opening data stream: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data stream: %w", err)
	}

	return client.Quit()
}

// buildMessage renders the draft as a single-part RFC 5322 message.
func buildMessage(cfg model.AccountConfig, draft model.ComposeDraft) ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetSubject(draft.Subject)
	h.SetAddressList("From", []*mail.Address{{Name: cfg.Name, Address: cfg.Address}})
	h.SetAddressList("To", addressList(draft.To))
	if len(draft.Cc) > 0 {
		h.SetAddressList("Cc", addressList(draft.Cc))
	}
	if draft.InReplyTo != "" {
		h.Set("In-Reply-To", draft.InReplyTo)
	}
	if len(draft.References) > 0 {
		var refs string
		for i, r := range draft.References {
			if i > 0 {
				refs += " "
			}
			refs += r
		}
		h.Set("References", refs)
	}

	h.Set("Content-Type", "text/plain; charset=utf-8")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(draft.Body)); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addressList(addrs []string) []*mail.Address {
	out := make([]*mail.Address, len(addrs))
	for i, a := range addrs {
		out[i] = &mail.Address{Address: a}
	}
	return out
}
