package core

import (
	"context"
	"io"
)

// FileStorage is any service that can persist uploaded files and resolve them
// to client-consumable URLs. The write must complete before the record
// referencing the key is committed.
type FileStorage interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) error
	// Delete is best-effort cleanup; callers must not block record changes on it.
	Delete(ctx context.Context, key string) error
	// URL returns a full URL for client consumption: a same-origin static path
	// for local storage or an absolute remote-storage URL.
	URL(key string) string
}
