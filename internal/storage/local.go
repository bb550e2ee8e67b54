package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/pkg/logger"
	"go.uber.org/zap"
)

// LocalStorage keeps uploads on the local filesystem. File ids are generated
// uuids carrying the original extension, e.g. "3f1c...d2.jpg". Previews are
// rendered on demand by the files handler via RenderPreview.
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fileID := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.basePath, fileID))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	logger.Log.Info("File uploaded", zap.String("file_id", fileID))
	return fileID, nil
}

func (s *LocalStorage) PreviewURL(fileID string, opts PreviewOptions) (string, error) {
	if fileID == "" {
		return "", models.ErrNotFound
	}
	q := url.Values{}
	q.Set("w", fmt.Sprint(opts.Width))
	q.Set("h", fmt.Sprint(opts.Height))
	q.Set("anchor", opts.Anchor)
	q.Set("q", fmt.Sprint(opts.Quality))
	return fmt.Sprintf("%s/files/%s/preview?%s", s.baseURL, url.PathEscape(fileID), q.Encode()), nil
}

func (s *LocalStorage) Delete(ctx context.Context, fileID string) error {
	err := os.Remove(filepath.Join(s.basePath, filepath.Base(fileID)))
	if os.IsNotExist(err) {
		return models.ErrNotFound
	}
	return err
}

// Exists reports whether the file is still retrievable.
func (s *LocalStorage) Exists(fileID string) bool {
	_, err := os.Stat(filepath.Join(s.basePath, filepath.Base(fileID)))
	return err == nil
}

// RenderPreview decodes the stored image and writes a jpeg rendition cropped
// to fill the requested bounding box.
func (s *LocalStorage) RenderPreview(fileID string, opts PreviewOptions, w io.Writer) error {
	src, err := os.Open(filepath.Join(s.basePath, filepath.Base(fileID)))
	if err != nil {
		if os.IsNotExist(err) {
			return models.ErrNotFound
		}
		return err
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	anchor := imaging.Center
	if opts.Anchor == "top" {
		anchor = imaging.Top
	}
	preview := imaging.Fill(img, opts.Width, opts.Height, anchor, imaging.Lanczos)

	return imaging.Encode(w, preview, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
}
