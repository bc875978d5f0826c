package media

import (
	"context"
	"errors"

	"github.com/mrlokans/pharmastudy/internal/logging"
)

// Remover deletes images that belonged to deleted items. Removal never
// fails the operation that triggered it.
type Remover interface {
	RemoveImages(ctx context.Context, urls ...string)
}

// InlineRemover deletes images synchronously, logging failures.
type InlineRemover struct {
	store  Store
	logger *logging.Logger
}

func NewInlineRemover(store Store, logger *logging.Logger) *InlineRemover {
	return &InlineRemover{store: store, logger: logging.OrNop(logger)}
}

func (r *InlineRemover) RemoveImages(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		err := r.store.Delete(ctx, url)
		switch {
		case err == nil:
			r.logger.Debug("removed image", "url", url)
		case errors.Is(err, ErrUnmanagedURL):
			r.logger.Debug("skipping image not held by the media store", "url", url)
		default:
			r.logger.Warn("failed to remove image", "url", url, "error", err)
		}
	}
}
