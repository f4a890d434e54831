package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/timmy/sentencebot/internal/storage"
)

// Opener resolves an ImageEntry location into its content.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// DirOpener opens locations as local file paths.
type DirOpener struct{}

// Open opens the file at location.
func (DirOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open background: %w", err)
	}
	return f, nil
}

// StorageOpener opens locations as object keys.
type StorageOpener struct {
	Store storage.ObjectStorage
}

// Open downloads the object stored at location.
func (o StorageOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return o.Store.Download(ctx, location)
}
