package models

// Types Stremio understands for catalogs, metas and streams
const (
	TypeMovie  = "movie"
	TypeSeries = "series"
)

type Manifest struct {
	ID          string            `json:"id"`
	Version     string            `json:"version"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Catalogs    []ManifestCatalog `json:"catalogs"`
	Resources   []Resource        `json:"resources"`
	Types       []string          `json:"types"`
}

type ManifestCatalog struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Resource struct {
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	IDPrefixes []string `json:"idPrefixes,omitempty"`
}

// MetaPreview is a single entry in a catalog listing
type MetaPreview struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Poster      *string `json:"poster"`
	Description *string `json:"description"`
}

type Meta struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Poster      *string `json:"poster"`
	Description *string `json:"description"`
}

// SeriesMeta is a Meta plus the episode listing. The descriptive fields are always
// present, even if empty, as some clients choke when they're missing.
type SeriesMeta struct {
	Meta
	Background *string  `json:"background"`
	Genres     []string `json:"genres"`
	Cast       []string `json:"cast"`
	Director   []string `json:"director"`
	Runtime    *string  `json:"runtime"`
	Videos     []Video  `json:"videos"`
}

type Video struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	Released string `json:"released"`
}

// Stream is either a playable link (Title + URL) or an in-band error (Description + ExternalURL).
type Stream struct {
	Name        string  `json:"name"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
	ExternalURL *string `json:"externalUrl,omitempty"`
}

type CatalogResponse struct {
	Metas []MetaPreview `json:"metas"`
}

type MetaResponse struct {
	Meta any `json:"meta"`
}

type StreamResponse struct {
	Streams []Stream `json:"streams"`
}

// ResolvedStream describes a stream lookup that found something to play.
type ResolvedStream struct {
	RequestedID string `json:"requested_id"`
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	Extension   string `json:"extension"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}
