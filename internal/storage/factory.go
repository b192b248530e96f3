package storage

import (
	"context"
	"fmt"

	"github.com/iliyamo/pdfsum/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on cfg.Backend and
// wraps it in age encryption when an identity is configured.
func NewStoreFromConfig(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case "memory":
		s = NewMemoryStore()
	case "s3":
		s, err = NewS3Store(ctx, cfg)
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem backend requires dir to be set")
		}
		s, err = NewFileSystemStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown blob backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AgeIdentity != "" {
		return NewAgeStore(s, cfg.AgeIdentity)
	}
	return s, nil
}
