package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/")
	require.NoError(t, err)
	return s
}

func TestLocalStorage_UploadDeleteRoundtrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	fileID, err := s.Upload(ctx, "Photo.JPG", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(fileID, ".jpg"), "file id keeps a lowercased extension: %s", fileID)
	assert.True(t, s.Exists(fileID))

	require.NoError(t, s.Delete(ctx, fileID))
	assert.False(t, s.Exists(fileID))

	// Deleting an already-deleted file reports not found.
	assert.ErrorIs(t, s.Delete(ctx, fileID), models.ErrNotFound)
}

func TestLocalStorage_PreviewURL(t *testing.T) {
	s := newTestStorage(t)

	url, err := s.PreviewURL("abc.jpg", PreviewOptions{Width: 2000, Height: 2000, Anchor: "top", Quality: 100})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/abc.jpg/preview?anchor=top&h=2000&q=100&w=2000", url)
}

func TestLocalStorage_PreviewURL_EmptyID(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.PreviewURL("", PreviewOptions{Width: 100, Height: 100})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLocalStorage_RenderPreview(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	src := image.NewNRGBA(image.Rect(0, 0, 100, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 100; x++ {
			src.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.PNG))

	fileID, err := s.Upload(ctx, "src.png", &buf)
	require.NoError(t, err)

	var out bytes.Buffer
	opts := PreviewOptions{Width: 50, Height: 50, Anchor: "top", Quality: 80}
	require.NoError(t, s.RenderPreview(fileID, opts, &out))

	rendered, err := imaging.Decode(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 50, rendered.Bounds().Dx())
	assert.Equal(t, 50, rendered.Bounds().Dy())
}

func TestLocalStorage_RenderPreview_MissingFile(t *testing.T) {
	s := newTestStorage(t)

	var out bytes.Buffer
	err := s.RenderPreview("nope.jpg", PreviewOptions{Width: 10, Height: 10, Quality: 80}, &out)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLocalStorage_RenderPreview_NotAnImage(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	fileID, err := s.Upload(ctx, "junk.jpg", strings.NewReader("not an image"))
	require.NoError(t, err)

	var out bytes.Buffer
	err = s.RenderPreview(fileID, PreviewOptions{Width: 10, Height: 10, Quality: 80}, &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}
