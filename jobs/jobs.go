package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/marcus-crane/premiumize-addon/db"
)

const pruneTimeout = 30 * time.Second

func SetupInBackground(store db.Store, retentionDays int) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	s.Every(1).Day().Do(pruneHistory, store, retentionDays)

	slog.Info("Jobs scheduled. Scheduler not running yet.",
		slog.Int("retention_days", retentionDays),
	)

	return s
}

func pruneHistory(store db.Store, retentionDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()
	if _, err := PruneHistory(ctx, store, retentionDays, time.Now()); err != nil {
		slog.Error("Failed to prune stream history", slog.String("error", err.Error()))
	}
}

// PruneHistory drops history entries older than retentionDays before now.
// A retention of zero or less keeps everything.
func PruneHistory(ctx context.Context, store db.Store, retentionDays int, now time.Time) (int64, error) {
	if retentionDays <= 0 {
		slog.Debug("History retention disabled, skipping prune")
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	pruned, err := store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	slog.Info("Pruned stream history",
		slog.Int64("pruned", pruned),
		slog.Time("cutoff", cutoff),
	)
	return pruned, nil
}
