package snapshot

import "context"

// ObjectStorage is the write-only blob store snapshots are archived to.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
}
