package policies

import (
	"context"
	"io"
)

// ImageStore persists listing photos and returns a public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}
