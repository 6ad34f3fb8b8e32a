package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"
)

func TestScan(t *testing.T) {
	fsys := fstest.MapFS{
		"willows/chapter01.mp3":        {},
		"willows/chapter02.mp3":        {},
		"willows/cover.jpg":            {},
		"pooh/part1/chapter01.m4b":     {},
		"pooh/part2/chapter01.m4b":     {},
		"notes/readme.txt":             {},
		"mixed/track.opus":             {},
		"mixed/not-audio.pdf":          {},
		"empty-extension/strangefile":  {},
		"deep/a/b/c/d/chapter.flac":    {},
		"uppercase/CHAPTER01.MP3":      {},
		"skipped/video/trailer.mp4":    {},
		"skipped/images/thumbnail.png": {},
	}

	dirs, err := Scan(fsys, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"deep/a/b/c/d",
		"mixed",
		"pooh/part1",
		"pooh/part2",
		"uppercase",
		"willows",
	}
	if !reflect.DeepEqual(dirs, want) {
		t.Errorf("got %v; want %v", dirs, want)
	}
}

func TestScanCustomAllowlist(t *testing.T) {
	fsys := fstest.MapFS{
		"a/track.mp3": {},
		"b/track.ogg": {},
	}

	dirs, err := Scan(fsys, []string{".ogg"})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(dirs, []string{"b"}) {
		t.Errorf("got %v; want [b]", dirs)
	}
}

func TestIsAudio(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"chapter.mp3", true},
		{"CHAPTER.MP3", true},
		{"book.m4b", true},
		{"track.flac", true},
		{"cover.jpg", false},
		{"readme.txt", false},
		{"noextension", false},
		{"archive.tar.gz", false},
	}

	for _, c := range cases {
		if got := isAudio(c.name, DefaultExtensions); got != c.want {
			t.Errorf("isAudio(%q): got %v; want %v", c.name, got, c.want)
		}
	}
}

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	bookDir := filepath.Join(root, "willows")
	if err := os.MkdirAll(bookDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bookDir, "ch1.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "ch0.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dirs, err := ScanRoot(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{filepath.Clean(root), bookDir}
	if !reflect.DeepEqual(dirs, want) {
		t.Errorf("got %v; want %v", dirs, want)
	}
}

func TestScanAsync(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "ch1.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := <-ScanAsync(root, nil)
	if result.Err != nil {
		t.Fatal(result.Err)
	}
	if len(result.Dirs) != 1 {
		t.Errorf("got %v; want one directory", result.Dirs)
	}
}

func TestScanMissingRoot(t *testing.T) {
	result := <-ScanAsync(filepath.Join(t.TempDir(), "nope"), nil)
	if result.Err == nil {
		t.Error("expected error for missing root")
	}
}
