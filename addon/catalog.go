package addon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcus-crane/premiumize-addon/filename"
	"github.com/marcus-crane/premiumize-addon/models"
	"github.com/marcus-crane/premiumize-addon/premiumize"
)

// ClassifyFolder guesses whether a folder is a movie collection or a collection of shows
// by comparing playable files against subfolders. Ties go to movies.
func ClassifyFolder(contents []premiumize.Item) string {
	files, folders := 0, 0
	for _, item := range contents {
		if isPlayableFile(item) {
			files++
		} else if item.IsFolder() {
			folders++
		}
	}
	if files >= folders {
		return models.TypeMovie
	}
	return models.TypeSeries
}

// CatalogID is the id a top level folder is advertised under in the manifest.
func CatalogID(folderName string) string {
	return NativeIDPrefix + strings.ToLower(folderName)
}

func isPlayableFile(item premiumize.Item) bool {
	return item.IsFile() && filename.IsPlayable(item.Name)
}

// BuildMovieCatalog lists every playable file in contents.
func (s *Service) BuildMovieCatalog(contents []premiumize.Item) []models.MetaPreview {
	metas := []models.MetaPreview{}
	for _, item := range contents {
		if isPlayableFile(item) {
			metas = append(metas, s.catalogEntry(item, models.TypeMovie))
		}
	}
	return metas
}

// BuildSeriesCatalog lists every subfolder in contents. Ids and posters come from the
// folder name, the episodes inside aren't looked at.
func (s *Service) BuildSeriesCatalog(contents []premiumize.Item) []models.MetaPreview {
	metas := []models.MetaPreview{}
	for _, item := range contents {
		if item.IsFolder() {
			metas = append(metas, s.catalogEntry(item, models.TypeSeries))
		}
	}
	return metas
}

func (s *Service) catalogEntry(item premiumize.Item, kind string) models.MetaPreview {
	ids := filename.ExtractIDs(item.Name)
	id := ids.TMDB
	if id == "" {
		id = NativeIDPrefix + item.ID
	}
	return models.MetaPreview{
		ID:     id,
		Type:   kind,
		Name:   filename.CleanName(filename.StripExtension(item.Name)),
		Poster: s.posters.PosterURL(ids.IMDB),
	}
}

// Catalog resolves a catalog id from the manifest back to its folder and lists it.
// A failing root listing is always an upstream failure, the root is configuration.
func (s *Service) Catalog(ctx context.Context, catalogID string) ([]models.MetaPreview, error) {
	root, err := s.upstream.ListFolder(ctx, s.cfg.Premiumize.FolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list root folder: %w", err)
	}
	var match *premiumize.Item
	for idx := range root {
		if root[idx].IsFolder() && CatalogID(root[idx].Name) == catalogID {
			match = &root[idx]
			break
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: catalog %s", ErrNotFound, catalogID)
	}
	contents, err := s.upstream.ListFolder(ctx, match.ID)
	if errors.Is(err, premiumize.ErrNotFound) {
		return nil, fmt.Errorf("%w: catalog folder %s", ErrNotFound, match.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog folder %s: %w", match.ID, err)
	}
	kind := ClassifyFolder(contents)
	slog.Debug("Classified catalog folder",
		slog.String("catalog_id", catalogID),
		slog.String("folder_id", match.ID),
		slog.String("type", kind),
	)
	if kind == models.TypeMovie {
		return s.BuildMovieCatalog(contents), nil
	}
	return s.BuildSeriesCatalog(contents), nil
}
