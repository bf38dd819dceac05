// Command postium is a terminal mail client. It runs entirely against
// a data source (a seeded synthetic mailbox by default, or IMAP when
// configured) and keeps all state in memory apart from layout
// preferences and credentials.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/postium/postium/internal/app"
	"github.com/postium/postium/internal/compose"
	"github.com/postium/postium/internal/logging"
	"github.com/postium/postium/internal/model"
	"github.com/postium/postium/internal/prefs"
	"github.com/postium/postium/internal/smtp"
	"github.com/postium/postium/internal/source"
	imapsource "github.com/postium/postium/internal/source/imap"
	"github.com/postium/postium/internal/source/synth"
	"github.com/postium/postium/internal/store"
	"github.com/postium/postium/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	log, closer, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closer.Close()

	var src source.DataSource
	switch cfg.Source {
	case "imap":
		if len(cfg.Accounts) == 0 {
			return fmt.Errorf("imap source configured but no accounts in %s", model.DefaultConfigPath())
		}
		src = imapsource.New(cfg.Accounts, logging.Module(log, "imap"))
	default:
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		src = synth.New(seed)
	}

	s := store.New(src, logging.Module(log, "store"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	err = s.Initialize(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	transmitter := smtp.New(cfg.Accounts, logging.Module(log, "smtp"))
	drafts := compose.NewManager(transmitter, logging.Module(log, "compose"))
	coordinator := syncer.New(s, logging.Module(log, "syncer"))

	prefsDB, err := prefs.Open(model.DefaultPrefsPath())
	if err != nil {
		// The client works without persisted layout; log and continue.
		log.Warn("opening preferences database", "error", err)
		prefsDB = nil
	} else {
		defer prefsDB.Close()
	}

	p := tea.NewProgram(
		app.New(s, drafts, coordinator, prefsDB, cfg, log),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
