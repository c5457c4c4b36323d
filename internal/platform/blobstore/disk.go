package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskBlobStore stores documents on the local filesystem. Each document is
// kept as <id>.pdf with an <id>.json metadata sidecar.
type DiskBlobStore struct {
	root string
}

// NewDiskBlobStore creates the storage directory if needed and returns a
// DiskBlobStore rooted at it.
func NewDiskBlobStore(root string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", root, err)
	}
	return &DiskBlobStore{root: root}, nil
}

func (s *DiskBlobStore) contentPath(id string) string {
	return filepath.Join(s.root, id+".pdf")
}

func (s *DiskBlobStore) metaPath(id string) string {
	return filepath.Join(s.root, id+".json")
}

func (s *DiskBlobStore) Upload(_ context.Context, meta BlobMetadata, content io.Reader) (*BlobMetadata, error) {
	meta, data, err := validateAndRead(meta, content)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(s.contentPath(meta.ID), data, 0644); err != nil {
		return nil, fmt.Errorf("write document %s: %w", meta.ID, err)
	}

	sidecar, err := json.Marshal(meta)
	if err != nil {
		os.Remove(s.contentPath(meta.ID))
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(meta.ID), sidecar, 0644); err != nil {
		os.Remove(s.contentPath(meta.ID))
		return nil, fmt.Errorf("write metadata %s: %w", meta.ID, err)
	}

	out := meta
	return &out, nil
}

func (s *DiskBlobStore) Download(ctx context.Context, id string) (io.ReadCloser, *BlobMetadata, error) {
	meta, err := s.GetMetadata(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.contentPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrBlobNotFound
		}
		return nil, nil, fmt.Errorf("open document %s: %w", id, err)
	}

	return f, meta, nil
}

func (s *DiskBlobStore) Delete(_ context.Context, id string) error {
	if _, err := os.Stat(s.metaPath(id)); errors.Is(err, fs.ErrNotExist) {
		return ErrBlobNotFound
	}

	if err := os.Remove(s.contentPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove document %s: %w", id, err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		return fmt.Errorf("remove metadata %s: %w", id, err)
	}
	return nil
}

func (s *DiskBlobStore) GetMetadata(_ context.Context, id string) (*BlobMetadata, error) {
	raw, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read metadata %s: %w", id, err)
	}

	var meta BlobMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal metadata %s: %w", id, err)
	}
	return &meta, nil
}
