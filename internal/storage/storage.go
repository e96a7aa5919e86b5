package storage

import (
	"context"
	"io"
	"time"
)

// Service stores uploaded photos in an object store. Locations returned by
// UploadObject are opaque to callers and fed back into the other methods.
type Service interface {
	UploadObject(ctx context.Context, r io.Reader, name, contentType string) (string, error)
	DeleteObject(ctx context.Context, location string) error
	ObjectURL(ctx context.Context, location string, expires time.Duration) (string, error)
}
