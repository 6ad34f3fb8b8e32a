package artwork

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}

	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := testImage(t, 10, 10)

	t.Run("raw bytes", func(t *testing.T) {
		img, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		if img == nil {
			t.Error("expected non-nil image")
		}
	})

	t.Run("base64", func(t *testing.T) {
		img, err := Decode([]byte(base64.StdEncoding.EncodeToString(data)))
		if err != nil {
			t.Fatal(err)
		}
		if img == nil {
			t.Error("expected non-nil image")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := Decode(nil); err == nil {
			t.Error("expected error for empty data")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := Decode([]byte("not an image")); err == nil {
			t.Error("expected error for garbage data")
		}
	})
}

func TestBound(t *testing.T) {
	loader := &Loader{MaxDimension: 320, Slack: 20}

	cases := []struct {
		name string
		w, h int
	}{
		{"small stays untouched", 100, 80},
		{"within slack stays untouched", 330, 200},
		{"wide over bound", 1200, 400},
		{"tall over bound", 400, 1200},
		{"huge", 4000, 3000},
		{"square at bound", 320, 320},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img, err := Decode(testImage(t, c.w, c.h))
			if err != nil {
				t.Fatal(err)
			}

			bounded := loader.Bound(img)
			long := longEdge(bounded)

			if long > 340 {
				t.Errorf("long edge %d exceeds 340", long)
			}

			srcLong := c.w
			if c.h > c.w {
				srcLong = c.h
			}
			if srcLong <= 340 && long != srcLong {
				t.Errorf("image within bound was resized: %d -> %d", srcLong, long)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cover.png")
	if err := os.WriteFile(path, testImage(t, 800, 600), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{}

	t.Run("plain path", func(t *testing.T) {
		img, err := loader.Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if longEdge(img) > DefaultMaxDimension+DefaultSlack {
			t.Errorf("long edge %d exceeds bound", longEdge(img))
		}
	})

	t.Run("file url", func(t *testing.T) {
		img, err := loader.Load("file://" + path)
		if err != nil {
			t.Fatal(err)
		}
		if img == nil {
			t.Error("expected image")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := loader.Load(filepath.Join(dir, "nope.png")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestCacheURL(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.png")
	if err := os.WriteFile(src, testImage(t, 1000, 1000), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{CacheDir: filepath.Join(dir, "cache")}

	u, err := loader.CacheURL(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u, "file://") {
		t.Errorf("expected file URL, got %q", u)
	}

	// Second call hits the cache and yields the same URL.
	u2, err := loader.CacheURL(src)
	if err != nil {
		t.Fatal(err)
	}
	if u2 != u {
		t.Errorf("cache miss on second call: %q != %q", u2, u)
	}

	// The cached file must respect the bound.
	data, err := os.ReadFile(strings.TrimPrefix(u, "file://"))
	if err != nil {
		t.Fatal(err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if longEdge(img) > DefaultMaxDimension+DefaultSlack {
		t.Errorf("cached long edge %d exceeds bound", longEdge(img))
	}
}

func TestCacheURLWithoutCacheDir(t *testing.T) {
	loader := &Loader{}
	if _, err := loader.CacheURL("/tmp/whatever.png"); err == nil {
		t.Error("expected error without cache dir")
	}
}
