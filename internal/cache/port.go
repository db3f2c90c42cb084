package cache

import "context"

// Store is a string-keyed, string-valued map partitioned by session.
type Store interface {
	Get(ctx context.Context, session, key string) (string, bool, error)
	Set(ctx context.Context, session, key, value string) error
	DeleteSession(ctx context.Context, session string) error
}

// Lister is implemented by stores that can enumerate their rows.
type Lister interface {
	List(ctx context.Context) ([]Record, error)
	DeleteAll(ctx context.Context) (int64, error)
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*GormStore)(nil)
var _ Lister = (*GormStore)(nil)
