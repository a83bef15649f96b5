package addon

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/marcus-crane/premiumize-addon/filename"
	"github.com/marcus-crane/premiumize-addon/models"
	"github.com/marcus-crane/premiumize-addon/premiumize"
)

const (
	fallbackMovieName = "Movie"
	fallbackShowName  = "TV Show"
)

func (s *Service) MovieMeta(ctx context.Context, itemID string) (models.Meta, error) {
	item, err := s.upstream.ItemDetails(ctx, itemID)
	if errors.Is(err, premiumize.ErrNotFound) {
		return models.Meta{}, fmt.Errorf("%w: movie %s", ErrNotFound, itemID)
	}
	if err != nil {
		return models.Meta{}, fmt.Errorf("failed to fetch movie %s: %w", itemID, err)
	}
	name := filename.CleanName(filename.StripExtension(item.Name))
	if name == "" {
		name = fallbackMovieName
	}
	return models.Meta{
		ID:   NativeIDPrefix + item.ID,
		Type: models.TypeMovie,
		Name: name,
	}, nil
}

// SeriesMeta builds a show from the episode files sitting directly inside folderID.
// Files without an SxxEyy marker are skipped. A folder with no episodes still produces a
// meta, just with no videos.
func (s *Service) SeriesMeta(ctx context.Context, folderID string) (models.SeriesMeta, error) {
	contents, err := s.upstream.ListFolder(ctx, folderID)
	if errors.Is(err, premiumize.ErrNotFound) {
		return models.SeriesMeta{}, fmt.Errorf("%w: series %s", ErrNotFound, folderID)
	}
	if err != nil {
		return models.SeriesMeta{}, fmt.Errorf("failed to list series folder %s: %w", folderID, err)
	}

	name := ""
	var seasons []int
	bySeason := map[int][]models.Video{}
	for _, item := range contents {
		if !isPlayableFile(item) {
			continue
		}
		ep, ok := filename.ParseEpisode(item.Name)
		if !ok {
			continue
		}
		if name == "" {
			name = filename.CleanName(filename.StripEpisodeMarker(filename.StripExtension(item.Name)))
		}
		if _, seen := bySeason[ep.Season]; !seen {
			seasons = append(seasons, ep.Season)
		}
		bySeason[ep.Season] = append(bySeason[ep.Season], models.Video{
			ID:       NativeIDPrefix + item.ID,
			Title:    fmt.Sprintf("S%d:E%d", ep.Season, ep.Episode),
			Season:   ep.Season,
			Episode:  ep.Episode,
			Released: placeholderReleased,
		})
	}

	videos := []models.Video{}
	for _, season := range seasons {
		videos = append(videos, bySeason[season]...)
	}
	if s.cfg.Addon.SortEpisodes {
		SortVideos(videos)
	}

	if name == "" {
		name = fallbackShowName
	}
	return models.SeriesMeta{
		Meta: models.Meta{
			ID:   NativeIDPrefix + folderID,
			Type: models.TypeSeries,
			Name: name,
		},
		Genres:   []string{},
		Cast:     []string{},
		Director: []string{},
		Videos:   videos,
	}, nil
}

// SortVideos orders episodes by season then episode number, keeping listing order for duplicates.
func SortVideos(videos []models.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		if videos[i].Season != videos[j].Season {
			return videos[i].Season < videos[j].Season
		}
		return videos[i].Episode < videos[j].Episode
	})
}
