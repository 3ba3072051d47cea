// Package lgpkit persists, lists, compares and exports named training results.
package lgpkit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lgpkit/internal/compress"
	"lgpkit/internal/logging"
	"lgpkit/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "lgpkit.db"

	// Fixed-width so stored timestamps sort lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrNotFound reports a missing solution id.
var ErrNotFound = errors.New("solution not found")

type Options struct {
	StoreKind   string
	DBPath      string
	ExportsDir  string
	Compression string
	Logger      *slog.Logger
}

type Client struct {
	store      storage.Store
	exportsDir string
	logger     *slog.Logger
	now        func() time.Time
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Logger
	}

	codec, err := compress.Parse(opts.Compression)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(storeKind, dbPath, codec)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		exportsDir: exportsDir,
		logger:     logger.With("store", storeKind),
		now:        time.Now,
	}, nil
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(timestampLayout)
}
