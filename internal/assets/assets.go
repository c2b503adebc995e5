// Package assets resolves the local content windows load.
package assets

import (
	"encoding/hex"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// Assets resolves a request path to file content.
type Assets interface {
	Get(path string) ([]byte, bool)
}

// FS serves assets from an fs.FS, typically an embed.FS sub tree.
type FS struct {
	fsys fs.FS
}

// NewFS wraps fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Get returns the content at p. Directories resolve to their index.html.
func (a *FS) Get(p string) ([]byte, bool) {
	name := Normalize(p)
	info, err := fs.Stat(a.fsys, name)
	if err != nil {
		return nil, false
	}
	if info.IsDir() {
		name = path.Join(name, "index.html")
	}
	b, err := fs.ReadFile(a.fsys, name)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Dir serves assets from a directory on disk.
func Dir(root string) *FS {
	return NewFS(os.DirFS(filepath.Clean(root)))
}

// Normalize turns a URL path into an fs.FS name. Empty and root paths map
// to index.html; traversal outside the root collapses to the root.
func Normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "index.html"
	}
	return p
}

// MimeType guesses the content type of p from its extension.
func MimeType(p string) string {
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// IsHTML reports whether p names an HTML document.
func IsHTML(p string) bool {
	ext := strings.ToLower(path.Ext(Normalize(p)))
	return ext == ".html" || ext == ".htm"
}

// ETag returns a strong entity tag for b.
func ETag(b []byte) string {
	sum := blake3.Sum256(b)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
