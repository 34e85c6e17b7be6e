package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 128})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	wide := encodePNG(t, 600, 300)
	small := encodePNG(t, 40, 30)
	mux := http.NewServeMux()
	mux.HandleFunc("/wide.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(wide)
	})
	mux.HandleFunc("/small.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(small)
	})
	mux.HandleFunc("/text.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an image</html>"))
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newResolver(t *testing.T, timeout time.Duration) *HTTPResolver {
	r := NewHTTPResolver(timeout, 256, zaptest.NewLogger(t))
	t.Cleanup(r.Close)
	return r
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestResolveShrinksToBox(t *testing.T) {
	srv := newImageServer(t)
	r := newResolver(t, time.Second)
	dest := filepath.Join(t.TempDir(), "images", "a_0.png")

	got, err := r.Resolve(context.Background(), srv.URL+"/wide.png", dest)
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	img := readPNG(t, dest)
	assert.Equal(t, image.Rect(0, 0, 256, 128), img.Bounds())
	_, _, _, a := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), a, "thumbnail should be opaque")
}

func TestResolveKeepsSmallImages(t *testing.T) {
	srv := newImageServer(t)
	r := newResolver(t, time.Second)
	dest := filepath.Join(t.TempDir(), "b_0.png")

	_, err := r.Resolve(context.Background(), srv.URL+"/small.png", dest)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), readPNG(t, dest).Bounds())
}

func TestResolveFailures(t *testing.T) {
	srv := newImageServer(t)
	r := newResolver(t, 100*time.Millisecond)

	for _, path := range []string{"/missing.png", "/text.png", "/slow.png"} {
		t.Run(path, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "x.png")
			_, err := r.Resolve(context.Background(), srv.URL+path, dest)
			require.Error(t, err)
			_, statErr := os.Stat(dest)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestThumbnailTall(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 1000))
	assert.Equal(t, image.Rect(0, 0, 25, 256), Thumbnail(src, 256).Bounds())

	sliver := image.NewRGBA(image.Rect(0, 0, 1, 5000))
	assert.Equal(t, image.Rect(0, 0, 1, 256), Thumbnail(sliver, 256).Bounds())
}
