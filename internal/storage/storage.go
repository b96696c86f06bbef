package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Store keeps uploaded files on the local disk below root. Paths handed
// out by Save are slash-separated and relative to root.
type Store struct {
	root    string
	baseURL string
}

type Stored struct {
	Path        string
	Size        int64
	ContentType string
}

func New(root, baseURL string) *Store {
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Store) Root() string { return s.root }

// DatedDir returns prefix/YYYY/MM/DD for t.
func DatedDir(prefix string, t time.Time) string {
	return path.Join(prefix, t.Format("2006"), t.Format("01"), t.Format("02"))
}

// Save copies r into dir under a unique name derived from filename.
func (s *Store) Save(ctx context.Context, dir, filename string, r io.Reader) (*Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := path.Join(dir, uuid.NewString()+"_"+cleanName(filename))
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return nil, fmt.Errorf("write file: %w", err)
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(full); err == nil {
		contentType = mt.String()
	}
	return &Stored{Path: rel, Size: n, ContentType: contentType}, nil
}

// URL maps a stored path to where the server exposes it.
func (s *Store) URL(p string) string {
	if p == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(p, "/")
}

// Delete removes a stored file; a missing file is not an error.
func (s *Store) Delete(p string) error {
	if p == "" {
		return nil
	}
	if err := os.Remove(s.fullPath(p)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

func (s *Store) fullPath(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+p)))
}

// cleanName keeps only the base name and replaces characters that are
// awkward in URLs.
func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20, strings.ContainsRune(`/\?%*:|"<>#&`, r):
			return -1
		}
		return r
	}, name)
}

// BaseName strips the uuid prefix Save adds, giving back the upload name.
func BaseName(p string) string {
	base := path.Base(p)
	if i := strings.IndexByte(base, '_'); i == 36 {
		return base[i+1:]
	}
	return base
}
