package storage

import (
	"context"
	"io"
)

// PreviewOptions control the derived preview rendition of an uploaded image.
type PreviewOptions struct {
	Width   int
	Height  int
	Anchor  string // "top" or "center"
	Quality int    // jpeg quality, 1-100
}

// FileStore is the blob-store collaborator of the post lifecycle. Uploads
// return an opaque file id; PreviewURL is a pure derivation from that id and
// makes no network call.
type FileStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	PreviewURL(fileID string, opts PreviewOptions) (string, error)
	Delete(ctx context.Context, fileID string) error
}
