package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yeremiapane/digital-menu/utils"
)

// Blob is a stored file. PublicID is what Delete needs later.
type Blob struct {
	URL      string
	PublicID string
}

// Upload is a file handed over by a client.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type BlobStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*Blob, error)
	Delete(ctx context.Context, publicID string) error
}

// LocalBlobStore keeps blobs in a directory that the router serves under
// /uploads.
type LocalBlobStore struct {
	Dir     string
	BaseURL string
}

func NewLocalBlobStore(dir, baseURL string) *LocalBlobStore {
	return &LocalBlobStore{
		Dir:     dir,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *LocalBlobStore) Upload(ctx context.Context, filename string, r io.Reader) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	publicID := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.Dir, publicID)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &Blob{
		URL:      fmt.Sprintf("%s/uploads/%s", s.BaseURL, publicID),
		PublicID: publicID,
	}, nil
}

func (s *LocalBlobStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	// never leave the upload dir
	path := filepath.Join(s.Dir, filepath.Base(publicID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// uploadBlob stores a client file, turning storage failures into external
// service errors.
func uploadBlob(ctx context.Context, store BlobStore, up *Upload) (*Blob, error) {
	blob, err := store.Upload(ctx, up.Filename, up.Reader)
	if err != nil {
		return nil, External("failed to upload image", err)
	}
	return blob, nil
}

// discardBlob deletes a blob that is no longer referenced. Failures are only
// logged; the database is already consistent without the blob.
func discardBlob(ctx context.Context, store BlobStore, publicID string) {
	if publicID == "" {
		return
	}
	if err := store.Delete(ctx, publicID); err != nil {
		utils.ErrorLogger.Printf("Failed to delete blob %s: %v", publicID, err)
	}
}
