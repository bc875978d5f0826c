package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/pharmastudy/internal/logging"
)

// Client runs the background queue that removes orphaned images. It keeps
// its own sqlite file next to the study database, or in the working
// directory when the study data lives in Postgres.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config
	logger *logging.Logger

	mu      sync.RWMutex
	started bool
}

// queuePath derives the queue database from the study database path:
// "data/study.db" becomes "data/study-tasks.db".
func queuePath(studyDBPath string) string {
	if studyDBPath == "" {
		return "pharmastudy-tasks.db"
	}
	ext := filepath.Ext(studyDBPath)
	return strings.TrimSuffix(studyDBPath, ext) + "-tasks" + ext
}

func NewClient(studyDBPath string, cfg Config, logger *logging.Logger) (*Client, error) {
	logger = logging.OrNop(logger)

	db, err := sql.Open("sqlite3", queuePath(studyDBPath)+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open task database: %w", err)
	}
	// One connection per worker plus headroom for enqueues from handlers.
	db.SetMaxOpenConns(cfg.Workers + 4)
	db.SetMaxIdleConns(cfg.Workers + 1)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &queueLogger{logger: logger},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create task client: %w", err)
	}
	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install task schema: %w", err)
	}

	return &Client{client: client, db: db, config: cfg, logger: logger}, nil
}

// Register adds queues. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start runs the workers. A second call is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.logger.Info("Image removal queue started", "workers", c.config.Workers)
	c.client.Start(ctx)
}

// Stop waits for running removals until ctx expires and reports whether
// every worker finished.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if !started {
		return true
	}

	if !c.client.Stop(ctx) {
		c.logger.Warn("Image removal queue stopped before pending removals finished")
		return false
	}
	c.logger.Info("Image removal queue stopped")
	return true
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Add enqueues tasks; the returned op is committed with Save.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.client.Add(tasks...)
}

// queueLogger routes backlite's logging through zap.
type queueLogger struct {
	logger *logging.Logger
}

func (l *queueLogger) Info(message string, params ...any) {
	l.logger.Debug("task queue: "+message, params...)
}

func (l *queueLogger) Error(message string, params ...any) {
	l.logger.Error("task queue: "+message, params...)
}
