// ABOUTME: Local file system capability for attachment bytes
// ABOUTME: Copies source URIs into private storage, stats and unlinks files
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// Info describes a path on disk
type Info struct {
	Exists bool
	Size   int64
}

// Local implements file operations on the host file system
type Local struct {
	// DirMode is used by MakeDir; 0o700 when zero.
	DirMode os.FileMode
}

// PathFromURI converts a file:// URI into a path. Plain paths are returned as-is.
func PathFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return u.Path
}

// Stat reports whether path exists and its size. A missing path is not an error.
func (l Local) Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, nil
	}
	if err != nil {
		return Info{}, err
	}
	return Info{Exists: true, Size: fi.Size()}, nil
}

// MakeDir creates path and any missing parents
func (l Local) MakeDir(path string) error {
	mode := l.DirMode
	if mode == 0 {
		mode = 0o700
	}
	return os.MkdirAll(path, mode)
}

// Copy copies the file at sourceURI to dest, creating dest's directory
func (l Local) Copy(ctx context.Context, sourceURI, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(PathFromURI(sourceURI))
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	if err := l.MakeDir(filepath.Dir(dest)); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

// Remove unlinks path
func (l Local) Remove(path string) error {
	return os.Remove(path)
}
