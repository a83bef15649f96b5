package addon

import (
	"context"
	"fmt"

	"github.com/marcus-crane/premiumize-addon/models"
)

const (
	ManifestID      = "stremio.premiumize.folders"
	ManifestVersion = "1.0.0"
)

// Manifest describes the addon to Stremio. Each folder at the top of the configured root
// becomes its own catalog so the listing is fetched fresh every time.
func (s *Service) Manifest(ctx context.Context) (models.Manifest, error) {
	root, err := s.upstream.ListFolder(ctx, s.cfg.Premiumize.FolderID)
	if err != nil {
		return models.Manifest{}, fmt.Errorf("failed to list root folder: %w", err)
	}
	catalogs := []models.ManifestCatalog{}
	for _, item := range root {
		if !item.IsFolder() {
			continue
		}
		catalogs = append(catalogs, models.ManifestCatalog{
			Type: s.cfg.Addon.Name,
			ID:   CatalogID(item.Name),
			Name: item.Name,
		})
	}
	types := []string{models.TypeMovie, models.TypeSeries}
	return models.Manifest{
		ID:          ManifestID,
		Version:     ManifestVersion,
		Name:        s.cfg.Addon.Name,
		Description: "Stream your files from Premiumize within Stremio!",
		Catalogs:    catalogs,
		Resources: []models.Resource{
			{Name: "catalog", Types: types},
			{Name: "meta", Types: types, IDPrefixes: []string{NativeIDPrefix}},
			{Name: "stream", Types: types, IDPrefixes: []string{NativeIDPrefix, "tt"}},
		},
		Types: types,
	}, nil
}
