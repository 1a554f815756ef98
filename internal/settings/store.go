package settings

import "context"

// Store is a flat key-value mapping with upsert semantics. Get returns
// sentinel.ErrNotFound for keys never written; defaults are applied by the
// service, not the store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}
