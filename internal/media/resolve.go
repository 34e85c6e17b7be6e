package media

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultMaxDim  = 256

	maxImageBytes = 20 << 20
)

// HTTPResolver downloads an image, shrinks it to fit a square box and
// stores it as an opaque PNG.
type HTTPResolver struct {
	http   *http.Client
	maxDim int
	log    *zap.Logger
}

// NewHTTPResolver creates a resolver. Zero values select the defaults.
func NewHTTPResolver(timeout time.Duration, maxDim int, log *zap.Logger) *HTTPResolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPResolver{
		http:   &http.Client{Timeout: timeout},
		maxDim: maxDim,
		log:    log,
	}
}

// Close releases idle connections held by the resolver.
func (r *HTTPResolver) Close() {
	r.http.CloseIdleConnections()
}

// Resolve fetches url and writes the normalized image to dest, returning
// dest on success. Nothing is left at dest on failure.
func (r *HTTPResolver) Resolve(ctx context.Context, url, dest string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "threadprep/1.0")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	src, format, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", url, err)
	}

	thumb := Thumbnail(src, r.maxDim)
	if err := writePNG(dest, thumb); err != nil {
		return "", err
	}
	r.log.Debug("stored image",
		zap.String("url", url),
		zap.String("format", format),
		zap.String("path", dest),
		zap.Int("width", thumb.Bounds().Dx()),
		zap.Int("height", thumb.Bounds().Dy()))
	return dest, nil
}

// Thumbnail scales src down to fit within maxDim x maxDim, keeping its
// aspect ratio, and flattens it onto white. Smaller images keep their size.
func Thumbnail(src image.Image, maxDim int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func writePNG(dest string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating image dir: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(dest)
		return fmt.Errorf("encoding %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	return nil
}
