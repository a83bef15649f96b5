package db

import (
	"context"
	"io/fs"
	"time"

	"github.com/marcus-crane/premiumize-addon/models"
)

// Store keeps a record of streams the addon handed out. It's optional, the addon
// itself never reads from it.
type Store interface {
	ApplyMigrations(migrations fs.FS) error
	Insert(ctx context.Context, entry models.HistoryEntry) error
	GetRecent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}
