// Package source defines the boundary between the email state layer and
// whatever actually supplies mail. The core only consumes the query
// shapes below; it does not care whether they are backed by a protocol
// client, a file, or synthetic data.
package source

import (
	"context"

	"github.com/postium/postium/internal/model"
)

// DataSource supplies accounts, the ordered raw message set for an
// account+folder, and folder metadata for an account.
type DataSource interface {
	// Accounts returns the configured accounts, used once at startup.
	Accounts(ctx context.Context) ([]model.Account, error)

	// Messages returns the raw messages for an account and folder.
	// Virtual folders (starred/important/all) select across folders.
	Messages(ctx context.Context, accountID string, folder model.Folder) ([]model.Message, error)

	// Folders returns folder metadata for an account.
	Folders(ctx context.Context, accountID string) ([]model.FolderInfo, error)
}

// Refresher is implemented by sources that can pull new mail from their
// backing service on demand. The sync coordinator calls Refresh before
// diffing the message set; sources without it are treated as static.
type Refresher interface {
	Refresh(ctx context.Context, accountID string) error
}
