package data

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
)

// diskAttachmentStore keeps uploads in a directory served under urlPrefix
type diskAttachmentStore struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	now       func() time.Time
}

// NewDiskAttachmentStore creates the upload directory and returns the store.
// maxBytes <= 0 disables the size limit.
func NewDiskAttachmentStore(dir, urlPrefix string, maxBytes int64) (repo.AttachmentStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &diskAttachmentStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		maxBytes:  maxBytes,
		now:       time.Now,
	}, nil
}

// Store writes r to a new file and returns its URL path
func (s *diskAttachmentStore) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d_%s_%s", s.now().UnixMilli(), uuid.NewString()[:8], sanitizeFilename(filename))

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		tmp.Close()
		return "", domain.InvalidPayload(fmt.Sprintf("attachment exceeds %d bytes", s.maxBytes))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to sync attachment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close attachment: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to move attachment: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// sanitizeFilename keeps the base name and replaces anything that could
// escape the upload directory or break a URL
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '?' || r == '#' || r == '%' || r < 0x20:
			return '_'
		case r == ' ':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}
