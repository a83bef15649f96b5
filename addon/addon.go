package addon

import (
	"context"
	"errors"

	"github.com/marcus-crane/premiumize-addon/config"
	"github.com/marcus-crane/premiumize-addon/models"
	"github.com/marcus-crane/premiumize-addon/premiumize"
	"github.com/marcus-crane/premiumize-addon/rpdb"
)

const (
	// NativeIDPrefix marks ids that point straight at a Premiumize item or folder
	NativeIDPrefix = "premiumize-"

	// Premiumize has no release dates so every episode gets the same placeholder
	placeholderReleased = "2000-01-01T00:00:00.000Z"
)

// ErrNotFound means the catalog, meta or stream target doesn't exist
var ErrNotFound = errors.New("not found")

// Premiumize is the subset of the storage API the addon reads from.
type Premiumize interface {
	ListFolder(ctx context.Context, folderID string) ([]premiumize.Item, error)
	ItemDetails(ctx context.Context, itemID string) (premiumize.Item, error)
	SearchFolder(ctx context.Context, query string) (*premiumize.Item, error)
}

var _ Premiumize = (*premiumize.Client)(nil)

// StreamObserver is told about every stream lookup that found something.
type StreamObserver interface {
	StreamResolved(ctx context.Context, stream models.ResolvedStream) error
}

type Service struct {
	cfg       config.Config
	upstream  Premiumize
	posters   rpdb.Posters
	observers []StreamObserver
}

func NewService(cfg config.Config, upstream Premiumize, posters rpdb.Posters, observers ...StreamObserver) *Service {
	return &Service{
		cfg:       cfg,
		upstream:  upstream,
		posters:   posters,
		observers: observers,
	}
}
