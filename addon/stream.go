package addon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/marcus-crane/premiumize-addon/filename"
	"github.com/marcus-crane/premiumize-addon/models"
	"github.com/marcus-crane/premiumize-addon/premiumize"
	"github.com/marcus-crane/premiumize-addon/utils"
)

const notFoundDescription = "[NOT FOUND]"

// imdb:season:episode, as sent by Stremio for series episodes
var episodeID = regexp.MustCompile(`^tt\d+:\d+:\d+$`)

// SearchQuery turns a Stremio id into the Premiumize search query used to find it.
// Native ids aren't searched for and return ok == false.
func SearchQuery(id string) (query string, ok bool) {
	switch {
	case strings.HasPrefix(id, NativeIDPrefix):
		return "", false
	case episodeID.MatchString(id):
		parts := strings.Split(id, ":")
		return fmt.Sprintf("S%sE%s [%s", padTwo(parts[1]), padTwo(parts[2]), parts[0]), true
	case strings.HasPrefix(id, "tt"):
		// Names carry [tt<imdb>-<tmdb>] so the open bracket anchors the match
		return "[" + id, true
	default:
		return id, true
	}
}

func padTwo(digits string) string {
	if len(digits) >= 2 {
		return digits
	}
	return strings.Repeat("0", 2-len(digits)) + digits
}

// Streams resolves id to at most one playable stream. Not finding anything is not an error,
// the client gets a single [NOT FOUND] entry instead.
func (s *Service) Streams(ctx context.Context, id string) ([]models.Stream, error) {
	item, err := s.findStreamItem(ctx, id)
	if errors.Is(err, premiumize.ErrNotFound) {
		item, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stream %s: %w", id, err)
	}
	if item == nil {
		slog.Info("No stream found", slog.String("id", id))
		return []models.Stream{s.errorStream(notFoundDescription)}, nil
	}

	ext := filename.Extension(item.Name)
	size := ""
	if item.Size > 0 {
		size = utils.FormatSize(item.Size)
	}
	stream := models.Stream{
		Name:  s.cfg.Addon.Name,
		Title: fmt.Sprintf("▶️ PLAY [%s|%s]", ext, size),
		URL:   item.PlayableURL(),
	}

	resolved := models.ResolvedStream{
		RequestedID: id,
		ItemID:      item.ID,
		Title:       item.Name,
		Extension:   ext,
		Size:        item.Size,
		URL:         stream.URL,
	}
	for _, o := range s.observers {
		if err := o.StreamResolved(ctx, resolved); err != nil {
			slog.Error("Failed to record resolved stream",
				slog.String("error", err.Error()),
				slog.String("id", id),
			)
		}
	}

	return []models.Stream{stream}, nil
}

func (s *Service) findStreamItem(ctx context.Context, id string) (*premiumize.Item, error) {
	query, ok := SearchQuery(id)
	if !ok {
		item, err := s.upstream.ItemDetails(ctx, strings.TrimPrefix(id, NativeIDPrefix))
		if err != nil {
			return nil, err
		}
		return &item, nil
	}
	slog.Debug("Searching Premiumize for stream", slog.String("id", id), slog.String("query", query))
	return s.upstream.SearchFolder(ctx, query)
}

func (s *Service) errorStream(description string) models.Stream {
	empty := ""
	return models.Stream{
		Name:        "⚠️ " + s.cfg.Addon.Name,
		Description: description,
		ExternalURL: &empty,
	}
}
