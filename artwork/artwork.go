// Package artwork loads cover images for now-playing metadata with a
// bounded output size, so artwork handed to the session layer stays
// within cross-process payload limits.
package artwork

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/url"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// Default bounds: the decoded long edge never exceeds
// DefaultMaxDimension+DefaultSlack.
const (
	DefaultMaxDimension = 320
	DefaultSlack        = 20
)

// Loader decodes and bounds cover images. The zero value uses the
// default bounds and no cache directory.
type Loader struct {
	MaxDimension int
	Slack        int

	// CacheDir receives bounded PNG re-encodes for CacheURL. Empty
	// means caching is unavailable.
	CacheDir string
}

func (l *Loader) maxDimension() int {
	if l.MaxDimension > 0 {
		return l.MaxDimension
	}
	return DefaultMaxDimension
}

func (l *Loader) slack() int {
	if l.Slack > 0 {
		return l.Slack
	}
	return DefaultSlack
}

// Decode decodes raw or base64-encoded image bytes.
func Decode(data []byte) (image.Image, error) {
	// Try base64 first; artwork arriving over the channel is encoded.
	imageData := data
	if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		imageData = decoded
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("artwork: empty image data")
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("artwork: decode failed: %w", err)
	}

	return img, nil
}

// Bound scales img so its long edge is at most MaxDimension+Slack. A
// coarse nearest-neighbor pass halves very large inputs before the
// final quality scale, keeping peak memory low.
func (l *Loader) Bound(img image.Image) image.Image {
	max := l.maxDimension()
	slack := l.slack()

	long := longEdge(img)
	if long > 2*max {
		img = resizeLongEdge(img, 2*max, resize.NearestNeighbor)
		long = longEdge(img)
	}

	if long > max+slack {
		img = resizeLongEdge(img, max, resize.Lanczos3)
	}

	return img
}

// Load resolves uri (a file path, a file:// URL, or a data blob),
// decodes it and bounds the result.
func (l *Loader) Load(uri string) (image.Image, error) {
	data, err := readSource(uri)
	if err != nil {
		return nil, err
	}

	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return l.Bound(img), nil
}

// CacheURL loads and bounds the artwork at uri, re-encodes it as PNG
// into the cache directory and returns a file:// URL for it. The
// cache file name is derived from the source URI, so repeated calls
// for the same source are idempotent.
func (l *Loader) CacheURL(uri string) (string, error) {
	if l.CacheDir == "" {
		return "", fmt.Errorf("artwork: no cache directory configured")
	}

	sum := md5.Sum([]byte(uri))
	name := hex.EncodeToString(sum[:]) + ".png"
	path := filepath.Join(l.CacheDir, name)

	if _, err := os.Stat(path); err == nil {
		return fileURL(path), nil
	}

	img, err := l.Load(uri)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(l.CacheDir, 0o755); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("artwork: encode failed: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}

	return fileURL(path), nil
}

// readSource fetches the raw bytes behind a file path or file:// URL.
// Anything else is treated as inline data.
func readSource(uri string) ([]byte, error) {
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		return os.ReadFile(u.Path)
	}

	if filepath.IsAbs(uri) {
		return os.ReadFile(uri)
	}

	return []byte(uri), nil
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

func longEdge(img image.Image) int {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > h {
		return w
	}
	return h
}

func resizeLongEdge(img image.Image, target int, filter resize.InterpolationFunction) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w >= h {
		return resize.Resize(uint(target), 0, img, filter)
	}
	return resize.Resize(0, uint(target), img, filter)
}
