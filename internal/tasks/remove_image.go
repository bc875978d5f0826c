package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/pharmastudy/internal/logging"
	"github.com/mrlokans/pharmastudy/internal/media"
)

// RemoveImageTask deletes one stored image that no item references anymore.
type RemoveImageTask struct {
	URL string `json:"url"`
}

// Config returns the queue configuration for image removal tasks.
func (t RemoveImageTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "remove_image",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RemoveImageProcessor creates a processor function for RemoveImageTask.
func RemoveImageProcessor(store media.Store, logger *logging.Logger) backlite.QueueProcessor[RemoveImageTask] {
	logger = logging.OrNop(logger)
	return func(ctx context.Context, task RemoveImageTask) error {
		if store == nil {
			return fmt.Errorf("media store not configured")
		}

		err := store.Delete(ctx, task.URL)
		if errors.Is(err, media.ErrUnmanagedURL) {
			logger.Debug("skipping image not held by the media store", "url", task.URL)
			return nil
		}
		if err != nil {
			return fmt.Errorf("remove image: %w", err)
		}

		logger.Info("removed image", "url", task.URL)
		return nil
	}
}

// NewRemoveImageQueue creates a backlite queue for image removal tasks.
func NewRemoveImageQueue(store media.Store, logger *logging.Logger) backlite.Queue {
	return backlite.NewQueue(RemoveImageProcessor(store, logger))
}

// Enqueuer is the part of Client the queued remover needs.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// QueuedRemover hands image removal to the task queue so deleting an item
// never waits on the media backend. Failing to enqueue is logged only.
type QueuedRemover struct {
	client Enqueuer
	logger *logging.Logger
}

func NewQueuedRemover(client Enqueuer, logger *logging.Logger) *QueuedRemover {
	return &QueuedRemover{client: client, logger: logging.OrNop(logger)}
}

func (r *QueuedRemover) RemoveImages(_ context.Context, urls ...string) {
	var batch []backlite.Task
	for _, url := range urls {
		if url != "" {
			batch = append(batch, RemoveImageTask{URL: url})
		}
	}
	if len(batch) == 0 {
		return
	}

	if _, err := r.client.Add(batch...).Save(); err != nil {
		r.logger.Warn("failed to enqueue image removal", "count", len(batch), "error", err)
	}
}
