package lookup

import (
	"context"

	"github.com/mrlokans/pharmastudy/internal/logging"
)

// Searcher resolves a compound name.
type Searcher interface {
	Search(ctx context.Context, name string) (*Compound, error)
}

// Service puts a cache in front of a Searcher. Cache failures are logged
// and the lookup goes to the source.
type Service struct {
	source Searcher
	cache  Cache
	logger *logging.Logger
}

func NewService(source Searcher, cache Cache, logger *logging.Logger) *Service {
	return &Service{source: source, cache: cache, logger: logging.OrNop(logger)}
}

func (s *Service) Search(ctx context.Context, name string) (*Compound, error) {
	if s.cache != nil {
		compound, ok, err := s.cache.Get(ctx, name)
		if err != nil {
			s.logger.Warn("compound cache read failed", "name", name, "error", err)
		}
		if ok {
			return compound, nil
		}
	}

	compound, err := s.source.Search(ctx, name)
	if err != nil || compound == nil {
		return compound, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, name, compound); err != nil {
			s.logger.Warn("compound cache write failed", "name", name, "error", err)
		}
	}
	return compound, nil
}
