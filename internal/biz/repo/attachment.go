package repo

import (
	"context"
	"io"
)

// AttachmentStore stores uploaded bytes and returns a retrievable reference
type AttachmentStore interface {
	Store(ctx context.Context, filename string, r io.Reader) (ref string, err error)
}
