package storage

import "context"

// BlobStore is durable byte storage addressed by slash-separated keys rooted
// under the public media namespace. Keys never start with a slash.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// List returns every key under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Pinger exposes the health check surface of a blob store.
type Pinger interface {
	Ping(ctx context.Context) error
}
