package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus-crane/premiumize-addon/models"
	"github.com/marcus-crane/premiumize-addon/utils"
)

// Recorder writes every resolved stream into a Store.
type Recorder struct {
	Store Store
	Now   func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{
		Store: store,
		Now:   time.Now,
	}
}

func (r *Recorder) StreamResolved(ctx context.Context, stream models.ResolvedStream) error {
	entry := NewHistoryEntry(stream, utils.RequestIDFromContext(ctx), r.Now())
	if err := r.Store.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to save stream history: %w", err)
	}
	return nil
}

func NewHistoryEntry(stream models.ResolvedStream, requestID string, at time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		ID:          GenerateHistoryID(stream, requestID, at),
		CreatedAt:   at.Unix(),
		RequestID:   requestID,
		RequestedID: stream.RequestedID,
		ItemID:      stream.ItemID,
		Title:       stream.Title,
		Extension:   stream.Extension,
		Size:        stream.Size,
		URL:         stream.URL,
	}
}

// GenerateHistoryID is stable for a given lookup so a retried insert doesn't double up.
func GenerateHistoryID(stream models.ResolvedStream, requestID string, at time.Time) string {
	hashString := fmt.Sprintf("%s-%s-%s-%d",
		requestID,
		stream.RequestedID,
		stream.ItemID,
		at.Unix(),
	)
	return fmt.Sprintf(
		"%s:%d",
		stream.ItemID,
		xxhash.Sum64String(hashString),
	)
}
