// Package scanner walks a filesystem tree and collects the
// directories that contain playable audio files.
package scanner

import (
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions is the audio file allowlist.
var DefaultExtensions = []string{
	".mp3", ".m4a", ".m4b", ".aac", ".ogg", ".opus", ".wav", ".flac",
}

// isAudio reports whether name matches the allowlist, either by
// extension or by the registered MIME type.
func isAudio(name string, exts []string) bool {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return false
	}

	for _, allowed := range exts {
		if ext == allowed {
			return true
		}
	}

	return strings.HasPrefix(mime.TypeByExtension(ext), "audio/")
}

// Scan walks fsys depth-first and returns the directories containing
// at least one audio file, sorted. Filesystem trees are assumed
// acyclic; a walk runs to completion or fails as a whole.
func Scan(fsys fs.FS, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	found := make(map[string]struct{})

	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isAudio(d.Name(), exts) {
			// fs.FS paths are always slash-separated.
			found[path.Dir(name)] = struct{}{}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(found))
	for dir := range found {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	return dirs, nil
}

// ScanRoot scans the native filesystem tree rooted at root and
// returns absolute directory paths.
func ScanRoot(root string, exts []string) ([]string, error) {
	dirs, err := Scan(os.DirFS(root), exts)
	if err != nil {
		return nil, err
	}

	abs := make([]string, len(dirs))
	for i, dir := range dirs {
		if dir == "." {
			abs[i] = filepath.Clean(root)
		} else {
			abs[i] = filepath.Join(root, dir)
		}
	}

	return abs, nil
}

// Result carries the outcome of an asynchronous scan.
type Result struct {
	Dirs []string
	Err  error
}

// ScanAsync runs ScanRoot on its own goroutine and delivers a single
// Result. In-flight scans cannot be aborted.
func ScanAsync(root string, exts []string) <-chan Result {
	ch := make(chan Result, 1)

	go func() {
		dirs, err := ScanRoot(root, exts)
		ch <- Result{Dirs: dirs, Err: err}
		close(ch)
	}()

	return ch
}
