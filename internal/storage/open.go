package storage

import (
	"cardmatch/internal/config"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Dir)
	case "redis":
		return NewRedisStore(ctx, cfg.RedisURL, cfg.Prefix, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
