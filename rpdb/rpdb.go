package rpdb

import (
	"github.com/marcus-crane/premiumize-addon/utils"
)

const (
	posterEndpoint = "/{apiKey}/{source}/poster-default/{id}.jpg"

	SourceIMDB = "imdb"
)

// Posters builds RatingPosterDB artwork links. It never talks to RPDB itself,
// the Stremio client fetches whatever URL we hand back.
type Posters struct {
	APIKey  string
	BaseURL string
}

func NewPosters(apiKey string) Posters {
	return Posters{
		APIKey:  apiKey,
		BaseURL: "https://api.ratingposterdb.com",
	}
}

// PosterURL returns nil when there's no IMDB id to look the poster up by.
func (p Posters) PosterURL(imdbID string) *string {
	if imdbID == "" {
		return nil
	}
	url := p.BaseURL + utils.FillTemplate(posterEndpoint, map[string]string{
		"apiKey": p.APIKey,
		"source": SourceIMDB,
		"id":     imdbID,
	})
	return &url
}
