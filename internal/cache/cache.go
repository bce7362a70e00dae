package cache

import (
	"context"
	"time"

	"lekhajokha/backend/internal/domain"
)

// CustomerViewCache holds the derived customer listing between mutations.
// Every write path through the engine must invalidate it, otherwise the
// derived due amounts go stale.
type CustomerViewCache interface {
	Get(ctx context.Context) ([]domain.CustomerView, bool, error)
	Set(ctx context.Context, views []domain.CustomerView, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopCustomerViewCache struct{}

func (NoopCustomerViewCache) Get(_ context.Context) ([]domain.CustomerView, bool, error) {
	return nil, false, nil
}

func (NoopCustomerViewCache) Set(_ context.Context, _ []domain.CustomerView, _ time.Duration) error {
	return nil
}

func (NoopCustomerViewCache) Invalidate(_ context.Context) error {
	return nil
}
