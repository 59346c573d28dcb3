package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vendopos/api/internal/store"
)

// POSConfigTTL bounds how stale a cached tenant config may get. Gate checks
// on read paths tolerate this; sale creation always reads the DB row.
const POSConfigTTL = 5 * time.Minute

type POSConfigCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*store.POSConfig, bool, error)
	Set(ctx context.Context, tenantID uuid.UUID, cfg *store.POSConfig, ttl time.Duration) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

type NoopPOSConfigCache struct{}

func (NoopPOSConfigCache) Get(_ context.Context, _ uuid.UUID) (*store.POSConfig, bool, error) {
	return nil, false, nil
}

func (NoopPOSConfigCache) Set(_ context.Context, _ uuid.UUID, _ *store.POSConfig, _ time.Duration) error {
	return nil
}

func (NoopPOSConfigCache) Invalidate(_ context.Context, _ uuid.UUID) error {
	return nil
}
