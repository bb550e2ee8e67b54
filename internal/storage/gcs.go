package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/snapgram-app/backend/internal/models"
	"google.golang.org/api/option"
)

// GCSStorage stores uploads in a Google Cloud Storage bucket. Objects are
// assumed publicly readable; PreviewURL builds the public object URL with the
// rendition parameters as a query string for the image-serving frontend.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

func NewGCSStorage(ctx context.Context, bucket, credentialsFile string) (*GCSStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fileID := uuid.NewString() + ext

	w := s.client.Bucket(s.bucket).Object(fileID).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fileID, nil
}

func (s *GCSStorage) PreviewURL(fileID string, opts PreviewOptions) (string, error) {
	if fileID == "" {
		return "", models.ErrNotFound
	}
	q := url.Values{}
	q.Set("w", fmt.Sprint(opts.Width))
	q.Set("h", fmt.Sprint(opts.Height))
	q.Set("anchor", opts.Anchor)
	q.Set("q", fmt.Sprint(opts.Quality))
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s?%s", s.bucket, fileID, q.Encode()), nil
}

func (s *GCSStorage) Delete(ctx context.Context, fileID string) error {
	err := s.client.Bucket(s.bucket).Object(fileID).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return models.ErrNotFound
	}
	return err
}
